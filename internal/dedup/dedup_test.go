package dedup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/tennews/internal/claude"
	"github.com/deusflow/tennews/internal/model"
)

// fakeCompleter scripts one response (or error) per call.
type fakeCompleter struct {
	responses  []string
	errs       []error
	calls      int
	batchSizes []int
	prompts    []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt, purpose string, m claude.Model) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("unscripted call")
}

func makeCandidates(n int) []model.Candidate {
	out := make([]model.Candidate, n)
	for i := range out {
		out[i] = model.Candidate{
			Title:  fmt.Sprintf("Story %d", i),
			URL:    fmt.Sprintf("https://reuters.com/story-%d", i),
			Domain: "reuters.com",
		}
	}
	return out
}

func decisionJSON(t *testing.T, d Decision) string {
	t.Helper()
	b, err := json.Marshal(d)
	require.NoError(t, err)
	return string(b)
}

func TestDeduplicateCollapsesGroups(t *testing.T) {
	candidates := makeCandidates(5)
	ai := &fakeCompleter{responses: []string{decisionJSON(t, Decision{
		UniqueStories: []int{0, 3},
		DuplicateGroups: []Group{
			{Kept: 1, Duplicates: []int{2, 4}, Reason: "same event"},
		},
	})}}

	out := Deduplicate(context.Background(), ai, candidates)

	require.Len(t, out, 3)
	assert.Equal(t, "Story 0", out[0].Title)
	assert.Equal(t, "Story 1", out[1].Title)
	assert.Equal(t, "Story 3", out[2].Title)
	assert.Equal(t, 1, ai.calls)
}

func TestDeduplicateBatchPartitioning(t *testing.T) {
	candidates := makeCandidates(250)
	// Each batch keeps everything it was given.
	keepAll := func(n int) string {
		ids := make([]int, n)
		for i := range ids {
			ids[i] = i
		}
		return decisionJSON(t, Decision{UniqueStories: ids})
	}
	ai := &fakeCompleter{responses: []string{keepAll(100), keepAll(100), keepAll(50)}}

	out := Deduplicate(context.Background(), ai, candidates)

	assert.Equal(t, 3, ai.calls)
	assert.Len(t, out, 250)
	// Batches are consecutive slices in input order.
	assert.Equal(t, candidates, out)
}

func TestDeduplicateFailsOpenPerBatch(t *testing.T) {
	candidates := makeCandidates(250)
	keepFirst := decisionJSON(t, Decision{UniqueStories: []int{0}})

	ai := &fakeCompleter{
		responses: []string{keepFirst, "", keepFirst},
		errs:      []error{nil, errors.New("service down"), nil},
	}

	out := Deduplicate(context.Background(), ai, candidates)

	// Batch 1 and 3 collapsed to one story each, batch 2 kept whole.
	require.Len(t, out, 102)
	assert.Equal(t, "Story 0", out[0].Title)
	assert.Equal(t, "Story 100", out[1].Title)
	assert.Equal(t, "Story 199", out[100].Title)
	assert.Equal(t, "Story 200", out[101].Title)
}

func TestDeduplicateUnparseableBatchKept(t *testing.T) {
	candidates := makeCandidates(3)
	ai := &fakeCompleter{responses: []string{"I could not decide, sorry!"}}

	out := Deduplicate(context.Background(), ai, candidates)
	assert.Equal(t, candidates, out)
}

func TestDeduplicateNoKeepersKeepsBatch(t *testing.T) {
	candidates := makeCandidates(3)
	// All ids out of range: the decision is unusable.
	ai := &fakeCompleter{responses: []string{decisionJSON(t, Decision{
		UniqueStories: []int{7, 8, 9},
	})}}

	out := Deduplicate(context.Background(), ai, candidates)
	assert.Equal(t, candidates, out)
}

func TestDeduplicateEmptyInput(t *testing.T) {
	ai := &fakeCompleter{}
	out := Deduplicate(context.Background(), ai, nil)
	assert.Empty(t, out)
	assert.Equal(t, 0, ai.calls)
}

func TestKeepersBoundsAndOrder(t *testing.T) {
	d := Decision{
		UniqueStories: []int{4, 0, 4, -1, 99},
		DuplicateGroups: []Group{
			{Kept: 2, Duplicates: []int{3}},
		},
	}
	assert.Equal(t, []int{0, 2, 4}, d.Keepers(5))
}

func TestPromptListsEveryCandidate(t *testing.T) {
	candidates := makeCandidates(4)
	ai := &fakeCompleter{responses: []string{decisionJSON(t, Decision{
		UniqueStories: []int{0, 1, 2, 3},
	})}}

	Deduplicate(context.Background(), ai, candidates)

	require.Len(t, ai.prompts, 1)
	for _, c := range candidates {
		assert.Contains(t, ai.prompts[0], c.Title)
	}
}
