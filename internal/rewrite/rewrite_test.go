package rewrite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/tennews/internal/claude"
	"github.com/deusflow/tennews/internal/model"
)

type fakeCompleter struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt, purpose string, m claude.Model) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("unscripted call")
}

func pick(title, url string) model.SelectionCandidate {
	return model.SelectionCandidate{
		Title:    title,
		URL:      url,
		Category: "World News",
	}
}

func TestRewriteAllHappyPath(t *testing.T) {
	ai := &fakeCompleter{responses: []string{
		`{"title": "Rewritten headline", "summary": "One. Two. Three.", "emoji": "🌍"}`,
	}}
	picks := []model.SelectionCandidate{pick("Original headline", "https://www.reuters.com/a")}
	enriched := []model.Enriched{{
		Candidate: model.Candidate{Title: "Original headline", URL: "https://www.reuters.com/a"},
		Content:   "Some scraped article text.",
	}}

	articles := RewriteAll(context.Background(), ai, enriched, picks)

	require.Len(t, articles, 1)
	a := articles[0]
	assert.Equal(t, 1, a.Rank)
	assert.Equal(t, "Rewritten headline", a.Title)
	assert.Equal(t, "One. Two. Three.", a.Summary)
	assert.Equal(t, "🌍", a.Emoji)
	assert.Equal(t, "reuters.com", a.Source)
	assert.Equal(t, "https://www.reuters.com/a", a.URL)
}

func TestRewriteFallsBackOnError(t *testing.T) {
	ai := &fakeCompleter{errs: []error{errors.New("exhausted")}}
	picks := []model.SelectionCandidate{pick("Headline", "https://bbc.co.uk/x")}
	enriched := []model.Enriched{{
		Content: "First long enough sentence of the article body. Second long enough sentence here. Third one.",
	}}

	articles := RewriteAll(context.Background(), ai, enriched, picks)

	require.Len(t, articles, 1)
	assert.Equal(t, "Headline", articles[0].Title)
	assert.Contains(t, articles[0].Summary, "First long enough sentence")
	assert.Equal(t, "📰", articles[0].Emoji)
}

func TestRewriteFallsBackOnUnparseableResponse(t *testing.T) {
	ai := &fakeCompleter{responses: []string{"Sorry, I cannot do that."}}
	picks := []model.SelectionCandidate{pick("Headline only", "https://bbc.co.uk/x")}

	articles := RewriteAll(context.Background(), ai, []model.Enriched{{}}, picks)

	require.Len(t, articles, 1)
	assert.Equal(t, "Headline only.", articles[0].Summary)
}

func TestRewriteRanksFollowPickOrder(t *testing.T) {
	ai := &fakeCompleter{errs: []error{
		errors.New("x"), errors.New("x"), errors.New("x"),
	}}
	picks := []model.SelectionCandidate{
		pick("A", "https://reuters.com/a"),
		pick("B", "https://reuters.com/b"),
		pick("C", "https://reuters.com/c"),
	}

	articles := RewriteAll(context.Background(), ai, make([]model.Enriched, 3), picks)

	require.Len(t, articles, 3)
	for i, a := range articles {
		assert.Equal(t, i+1, a.Rank)
	}
}

func TestGreeting(t *testing.T) {
	ai := &fakeCompleter{responses: []string{`"Good morning, markets are moving"`}}
	articles := []Article{{Title: "Markets rally"}}

	assert.Equal(t, "Good morning, markets are moving",
		Greeting(context.Background(), ai, articles))
}

func TestGreetingFallsBack(t *testing.T) {
	const fallback = "Good morning, here are today's ten stories that matter"

	ai := &fakeCompleter{errs: []error{errors.New("down")}}
	assert.Equal(t, fallback, Greeting(context.Background(), ai, []Article{{Title: "X"}}))

	// Empty article list never calls the service.
	quiet := &fakeCompleter{}
	assert.Equal(t, fallback, Greeting(context.Background(), quiet, nil))
	assert.Equal(t, 0, quiet.calls)

	// Multi-line output is rejected.
	multi := &fakeCompleter{responses: []string{"Good morning\nand here is an essay"}}
	assert.Equal(t, fallback, Greeting(context.Background(), multi, []Article{{Title: "X"}}))
}

func TestFallbackSummaryClipsLongContent(t *testing.T) {
	content := "Short. Tiny. This single sentence runs on without a proper terminator and is quite long indeed"
	got := fallbackSummary(content, "Title")
	assert.Contains(t, got, "This single sentence")
	assert.Equal(t, byte('.'), got[len(got)-1])
}
