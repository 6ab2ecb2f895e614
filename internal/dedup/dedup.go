// Package dedup collapses candidates that cover the same real-world
// event. Batches are scored independently by the fast model; any batch
// whose call or parse fails is kept unmodified. Dedup is best-effort
// by contract — downstream stages never depend on it having run.
package dedup

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/deusflow/tennews/internal/claude"
	"github.com/deusflow/tennews/internal/jsonx"
	"github.com/deusflow/tennews/internal/logger"
	"github.com/deusflow/tennews/internal/metrics"
	"github.com/deusflow/tennews/internal/model"
)

// BatchSize is the fixed partition width. Groups are never formed
// across batch boundaries; an event split across two batches keeps one
// representative per batch, which is accepted imprecision.
const BatchSize = 100

// Completer is the completion-service dependency.
type Completer interface {
	Complete(ctx context.Context, prompt, purpose string, model claude.Model) (string, error)
}

// Decision is the per-batch verdict returned by the service: the ids
// of unique stories plus, per duplicate group, the one id to keep and
// a human-readable justification. Decisions are never merged across
// batches.
type Decision struct {
	UniqueStories   []int   `json:"unique_stories"`
	DuplicateGroups []Group `json:"duplicate_groups"`
}

type Group struct {
	Kept       int    `json:"kept"`
	Duplicates []int  `json:"duplicates"`
	Reason     string `json:"reason"`
}

// Keepers returns the sorted set of batch-local ids to keep, bounded
// by n. Empty when the decision names no keeper at all.
func (d Decision) Keepers(n int) []int {
	set := make(map[int]struct{})
	for _, id := range d.UniqueStories {
		if id >= 0 && id < n {
			set[id] = struct{}{}
		}
	}
	for _, g := range d.DuplicateGroups {
		if g.Kept >= 0 && g.Kept < n {
			set[g.Kept] = struct{}{}
		}
	}
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Deduplicate partitions candidates into consecutive batches and keeps
// one representative per detected event group. Never returns an error:
// failures keep the affected batch whole.
func Deduplicate(ctx context.Context, ai Completer, candidates []model.Candidate) []model.Candidate {
	if len(candidates) == 0 {
		return candidates
	}

	out := make([]model.Candidate, 0, len(candidates))
	batches := 0
	for start := 0; start < len(candidates); start += BatchSize {
		end := start + BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batches++
		out = append(out, deduplicateBatch(ctx, ai, candidates[start:end], batches)...)
	}

	collapsed := len(candidates) - len(out)
	metrics.Global.AddDuplicatesCollapsed(collapsed)
	logger.Info("event dedup complete",
		"in", len(candidates), "out", len(out), "collapsed", collapsed, "batches", batches)
	return out
}

func deduplicateBatch(ctx context.Context, ai Completer, batch []model.Candidate, batchNum int) []model.Candidate {
	prompt := buildPrompt(batch)

	metrics.Global.IncrementCompletionCalls()
	raw, err := ai.Complete(ctx, prompt, "event deduplication scoring", claude.ModelFast)
	if err != nil {
		metrics.Global.IncrementCompletionFailures()
		metrics.Global.IncrementBatchesFailedOpen()
		logger.Warn("dedup batch failed open", "batch", batchNum, "size", len(batch), "err", err)
		return batch
	}

	var decision Decision
	if !jsonx.Decode(raw, &decision) {
		metrics.Global.IncrementBatchesFailedOpen()
		logger.Warn("dedup response unparseable, batch kept", "batch", batchNum, "size", len(batch))
		return batch
	}

	keepers := decision.Keepers(len(batch))
	if len(keepers) == 0 {
		metrics.Global.IncrementBatchesFailedOpen()
		logger.Warn("dedup decision names no keepers, batch kept", "batch", batchNum)
		return batch
	}

	kept := make([]model.Candidate, 0, len(keepers))
	for _, id := range keepers {
		kept = append(kept, batch[id])
	}
	return kept
}

func buildPrompt(batch []model.Candidate) string {
	var b strings.Builder
	b.WriteString("You are deduplicating a batch of news article references. ")
	b.WriteString("Group articles that report the IDENTICAL real-world news event and pick the one with the most compelling title per group.\n\n")
	b.WriteString("Articles:\n")
	for i, c := range batch {
		fmt.Fprintf(&b, "%d. %s | %s | %s\n", i, c.Title, c.Domain, c.URL)
	}
	b.WriteString(`
Respond with ONLY this JSON, no other text:
{
  "unique_stories": [ids of articles that are the only report of their event],
  "duplicate_groups": [
    {"kept": id, "duplicates": [other ids of the same event], "reason": "one line why this title wins"}
  ]
}
Every article id must appear exactly once, either in unique_stories or in one group.`)
	return b.String()
}
