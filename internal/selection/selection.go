// Package selection reduces the deduplicated candidate pool to the
// ten globally most important stories. Large pools go through a
// two-stage batch/reduce; any subset of batch calls may fail without
// aborting the run. Total failure yields a nil result and the caller
// must fall back to the deterministic selector.
package selection

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deusflow/tennews/internal/claude"
	"github.com/deusflow/tennews/internal/jsonx"
	"github.com/deusflow/tennews/internal/logger"
	"github.com/deusflow/tennews/internal/metrics"
	"github.com/deusflow/tennews/internal/model"
)

const (
	// Target is the digest size.
	Target = 10
	// BatchSize is the stage-1 partition width.
	BatchSize = 100
	// SingleStageLimit is the largest pool handled with one call.
	SingleStageLimit = 150
)

// Completer is the completion-service dependency.
type Completer interface {
	Complete(ctx context.Context, prompt, purpose string, model claude.Model) (string, error)
}

// ErrSelectionFailed reports total selector failure; the caller must
// invoke FallbackSelect.
var ErrSelectionFailed = errors.New("selection failed entirely")

// response accepts both the requested key and the key the tolerant
// parser uses when it has to wrap a bare array.
type response struct {
	Selected []model.SelectionCandidate `json:"selected_articles"`
	Scored   []model.SelectionCandidate `json:"scored_articles"`
}

func (r response) entries() []model.SelectionCandidate {
	if len(r.Selected) > 0 {
		return r.Selected
	}
	return r.Scored
}

// SelectTop picks up to target stories. previousTitles is the recency
// window of already-published titles; a continuation of one of those
// stories is selectable only on major escalation. Output order is
// whatever the service returns.
func SelectTop(ctx context.Context, ai Completer, candidates []model.Candidate, previousTitles []string, target int) ([]model.SelectionCandidate, error) {
	if target <= 0 {
		target = Target
	}
	if len(candidates) == 0 {
		return nil, ErrSelectionFailed
	}

	if len(candidates) <= SingleStageLimit {
		picks, ok := selectBatch(ctx, ai, candidates, previousTitles, target, "final selection")
		if !ok {
			return nil, ErrSelectionFailed
		}
		return capTarget(picks, target), nil
	}

	return selectTwoStage(ctx, ai, candidates, previousTitles, target)
}

func selectTwoStage(ctx context.Context, ai Completer, candidates []model.Candidate, previousTitles []string, target int) ([]model.SelectionCandidate, error) {
	// Stage 1: every batch contributes its picks to the pool; a failed
	// batch contributes nothing.
	var pool []model.SelectionCandidate
	batches := 0
	for start := 0; start < len(candidates); start += BatchSize {
		end := start + BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batches++
		picks, ok := selectBatch(ctx, ai, candidates[start:end], previousTitles, target,
			fmt.Sprintf("stage-1 selection batch %d", batches))
		if !ok {
			continue
		}
		pool = append(pool, picks...)
	}

	if len(pool) == 0 {
		return nil, ErrSelectionFailed
	}
	if len(pool) <= target {
		return pool, nil
	}

	// Stage 2: re-resolve the pooled picks to their source records and
	// run one reducing call over exactly that set.
	resolved := Resolve(pool, candidates)
	final, ok := selectBatch(ctx, ai, resolved, previousTitles, target, "stage-2 final selection")
	if !ok {
		logger.Warn("stage-2 selection failed, truncating stage-1 pool", "pool", len(pool), "target", target)
		return pool[:target], nil
	}
	return capTarget(final, target), nil
}

// Resolve maps selector output back to source candidates by exact
// title match, first match wins. Entries without a match keep their
// reported URL so downstream enrichment still has something to fetch.
func Resolve(picks []model.SelectionCandidate, candidates []model.Candidate) []model.Candidate {
	out := make([]model.Candidate, 0, len(picks))
	for _, p := range picks {
		found := false
		for _, c := range candidates {
			if c.Title == p.Title {
				out = append(out, c)
				found = true
				break
			}
		}
		if !found {
			out = append(out, model.Candidate{Title: p.Title, URL: p.URL})
		}
	}
	return out
}

// selectBatch runs one selection call. ok=false means the call or the
// parse failed entirely.
func selectBatch(ctx context.Context, ai Completer, batch []model.Candidate, previousTitles []string, target int, purpose string) ([]model.SelectionCandidate, bool) {
	prompt := buildPrompt(batch, previousTitles, target)

	metrics.Global.IncrementCompletionCalls()
	raw, err := ai.Complete(ctx, prompt, purpose, claude.ModelCapable)
	if err != nil {
		metrics.Global.IncrementCompletionFailures()
		logger.Warn("selection call failed", "purpose", purpose, "size", len(batch), "err", err)
		return nil, false
	}

	var r response
	if !jsonx.Decode(raw, &r) {
		logger.Warn("selection response unparseable", "purpose", purpose)
		return nil, false
	}
	entries := r.entries()
	if len(entries) == 0 {
		return nil, false
	}

	// Identity preservation: the batch-local id is authoritative when it
	// agrees with the reported title; otherwise fall back to a title
	// lookup. Entries matching no input record are dropped, they cannot
	// be re-resolved.
	titles := make(map[string]model.Candidate, len(batch))
	for _, c := range batch {
		if _, dup := titles[c.Title]; !dup {
			titles[c.Title] = c
		}
	}
	kept := entries[:0]
	for _, e := range entries {
		var src model.Candidate
		if e.ID >= 0 && e.ID < len(batch) && batch[e.ID].Title == e.Title {
			src = batch[e.ID]
		} else {
			byTitle, ok := titles[e.Title]
			if !ok {
				logger.Warn("selection entry has no matching source title, dropped", "title", e.Title)
				continue
			}
			src = byTitle
		}
		if e.URL == "" {
			e.URL = src.URL
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		return nil, false
	}
	if len(kept) < target {
		logger.Info("selection shortfall accepted", "purpose", purpose, "got", len(kept), "want", target)
	}
	return kept, true
}

func capTarget(picks []model.SelectionCandidate, target int) []model.SelectionCandidate {
	if len(picks) > target {
		return picks[:target]
	}
	return picks
}

func buildPrompt(batch []model.Candidate, previousTitles []string, target int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the editor of a global daily digest. From the article manifest below, select EXACTLY %d stories by global importance: wide impact, consequence, and novelty beat regional interest.\n\n", target)

	if len(previousTitles) > 0 {
		b.WriteString("Already published in the last 14 days (do NOT select continuations of these stories unless there is a MAJOR escalation or development):\n")
		for _, t := range previousTitles {
			b.WriteString("- ")
			b.WriteString(t)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	b.WriteString("Articles:\n")
	for i, c := range batch {
		fmt.Fprintf(&b, "%d. %s | %s | %s\n", i, c.Title, c.Domain, c.URL)
	}

	fmt.Fprintf(&b, `
Respond with ONLY this JSON, no other text:
{
  "selected_articles": [
    {
      "id": <article id from the manifest>,
      "title": "<the article title, copied EXACTLY>",
      "url": "<the article url, copied EXACTLY>",
      "category": "<World News|Politics|Business|Technology|Science|Health|Climate|Sports|Culture>",
      "selection_reason": "<one line>",
      "is_update": <true if this continues a previously published story>,
      "previous_context": "<the previous title it continues, or empty>"
    }
  ]
}
Return exactly %d entries.`, target)
	return b.String()
}
