// Package rewrite turns selected stories into digest articles: a
// punchy title, a three-sentence summary and an emoji per story, plus
// the daily greeting. Every call fails soft to a deterministic
// rendition built from the scraped content.
package rewrite

import (
	"context"
	"fmt"
	"strings"

	"github.com/deusflow/tennews/internal/claude"
	"github.com/deusflow/tennews/internal/jsonx"
	"github.com/deusflow/tennews/internal/logger"
	"github.com/deusflow/tennews/internal/model"
)

// Completer is the completion-service dependency.
type Completer interface {
	Complete(ctx context.Context, prompt, purpose string, model claude.Model) (string, error)
}

// Article is one digest entry, ranked 1..N.
type Article struct {
	Rank     int    `json:"rank"`
	Emoji    string `json:"emoji"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Category string `json:"category"`
	Source   string `json:"source"`
	URL      string `json:"url"`
}

type rewriteResponse struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Emoji   string `json:"emoji"`
}

// RewriteAll produces one article per pick, in pick order. enriched
// must be parallel to picks (the app builds it that way).
func RewriteAll(ctx context.Context, ai Completer, enriched []model.Enriched, picks []model.SelectionCandidate) []Article {
	out := make([]Article, 0, len(picks))
	for i, p := range picks {
		var content string
		if i < len(enriched) {
			content = enriched[i].Content
		}
		out = append(out, rewriteOne(ctx, ai, p, content, i+1))
	}
	return out
}

func rewriteOne(ctx context.Context, ai Completer, pick model.SelectionCandidate, content string, rank int) Article {
	art := Article{
		Rank:     rank,
		Emoji:    "📰",
		Title:    pick.Title,
		Category: pick.Category,
		Source:   sourceOf(pick.URL),
		URL:      pick.URL,
	}

	prompt := buildPrompt(pick, content)
	raw, err := ai.Complete(ctx, prompt, "article rewriting generation", claude.ModelCapable)
	if err != nil {
		logger.Warn("rewrite call failed, using fallback summary", "title", pick.Title, "err", err)
		art.Summary = fallbackSummary(content, pick.Title)
		return art
	}

	var r rewriteResponse
	if !jsonx.Decode(raw, &r) || strings.TrimSpace(r.Summary) == "" {
		logger.Warn("rewrite response unparseable, using fallback summary", "title", pick.Title)
		art.Summary = fallbackSummary(content, pick.Title)
		return art
	}

	if t := strings.TrimSpace(r.Title); t != "" {
		art.Title = t
	}
	art.Summary = strings.TrimSpace(r.Summary)
	if e := strings.TrimSpace(r.Emoji); e != "" {
		art.Emoji = e
	}
	return art
}

func buildPrompt(pick model.SelectionCandidate, content string) string {
	var b strings.Builder
	b.WriteString("Rewrite this news story for a morning digest read by a general audience.\n\n")
	fmt.Fprintf(&b, "Original title: %s\n", pick.Title)
	if pick.SelectionReason != "" {
		fmt.Fprintf(&b, "Why it was selected: %s\n", pick.SelectionReason)
	}
	if content != "" {
		fmt.Fprintf(&b, "\nArticle text:\n%s\n", content)
	}
	b.WriteString(`
Respond with ONLY this JSON, no other text:
{
  "title": "<clear, factual headline, max 10 words>",
  "summary": "<exactly 3 short sentences: what happened, why it matters, what comes next>",
  "emoji": "<one emoji that fits the story>"
}`)
	return b.String()
}

// fallbackSummary builds two sentences from the scraped content, or
// falls back to the title.
func fallbackSummary(content, title string) string {
	c := strings.TrimSpace(content)
	if c == "" {
		return title + "."
	}
	sentences := strings.Split(c, ". ")
	var picked []string
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if len(s) < 25 {
			continue
		}
		picked = append(picked, s)
		if len(picked) >= 2 {
			break
		}
	}
	if len(picked) == 0 {
		if len(c) > 160 {
			return c[:160] + "..."
		}
		return c
	}
	return strings.TrimSuffix(strings.Join(picked, ". "), ".") + "."
}

// Greeting asks the fast model for a one-line greeting riffing on the
// day's top story.
func Greeting(ctx context.Context, ai Completer, articles []Article) string {
	const fallback = "Good morning, here are today's ten stories that matter"
	if len(articles) == 0 {
		return fallback
	}

	prompt := fmt.Sprintf(`Write a single greeting line for a morning news digest, in the form "Good morning, <short hook about the top story>". Top story: %s
Respond with ONLY the greeting line, no quotes, no other text.`, articles[0].Title)

	raw, err := ai.Complete(ctx, prompt, "greeting generation", claude.ModelFast)
	if err != nil {
		return fallback
	}
	greeting := strings.Trim(strings.TrimSpace(raw), `"'`)
	if greeting == "" || len(greeting) > 140 || strings.ContainsRune(greeting, '\n') {
		return fallback
	}
	return greeting
}

func sourceOf(url string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(url), "http://"), "https://")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimPrefix(s, "www.")
}
