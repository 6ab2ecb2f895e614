// Package app wires the pipeline together: fetch, filter, dedup,
// select, enrich, rewrite, publish. One Run is one digest.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deusflow/tennews/internal/archive"
	"github.com/deusflow/tennews/internal/claude"
	"github.com/deusflow/tennews/internal/config"
	"github.com/deusflow/tennews/internal/dedup"
	"github.com/deusflow/tennews/internal/digest"
	"github.com/deusflow/tennews/internal/domains"
	"github.com/deusflow/tennews/internal/history"
	"github.com/deusflow/tennews/internal/logger"
	"github.com/deusflow/tennews/internal/metrics"
	"github.com/deusflow/tennews/internal/model"
	"github.com/deusflow/tennews/internal/ratelimit"
	"github.com/deusflow/tennews/internal/rewrite"
	"github.com/deusflow/tennews/internal/rss"
	"github.com/deusflow/tennews/internal/scraper"
	"github.com/deusflow/tennews/internal/search"
	"github.com/deusflow/tennews/internal/selection"
)

// ErrNoCandidates means no source produced anything usable; there is
// nothing to publish and the run aborts.
var ErrNoCandidates = errors.New("no candidates survived fetching and filtering")

// Run executes one full digest run.
func Run(ctx context.Context, cfg *config.Config) error {
	start := time.Now()
	runID := uuid.New().String()
	log := logger.With("run_id", runID)
	log.Info("digest run starting")

	limiter := ratelimit.New(cfg.MinRequestSpacing)
	limiter.SetLimit("claude", cfg.MaxClaudeRequests)
	limiter.SetLimit("brave", cfg.MaxSearchRequests)
	defer limiter.PrintStats()

	ai := claude.New(claude.Options{
		APIKey:       cfg.ClaudeAPIKey,
		FastModel:    cfg.FastModel,
		CapableModel: cfg.CapableModel,
		Pacer:        limiter.For("claude"),
	})

	store, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// 1. Fetch from all sources.
	candidates := fetchCandidates(ctx, cfg, limiter)
	metrics.Global.AddCandidatesFetched(len(candidates))

	// 2. Trusted-source filter plus URL dedup.
	filtered, stats := domains.FilterAndDeduplicateByURL(candidates)
	metrics.Global.AddCandidatesAccepted(len(filtered))
	logger.Info("domain filter complete",
		"total", stats.Total, "accepted", stats.Accepted, "rejected", stats.Rejected)
	if len(filtered) == 0 {
		return ErrNoCandidates
	}

	// 3. Collapse same-event coverage.
	deduped := dedup.Deduplicate(ctx, ai, filtered)

	// 4. Select against the recent publication window.
	previous, err := store.Recent(ctx, cfg.ArchiveWindowDays)
	if err != nil {
		logger.Warn("archive read failed, selecting without history", "err", err)
	}

	picks, err := selection.SelectTop(ctx, ai, deduped, archive.Titles(previous), cfg.TargetArticles)
	if err != nil {
		logger.Warn("selection failed entirely, using deterministic fallback", "err", err)
		metrics.Global.IncrementFallbackSelections()
		picks = selection.FallbackSelect(deduped, cfg.TargetArticles)
	}
	if len(picks) == 0 {
		return ErrNoCandidates
	}

	// 5. Enrich the picks with scraped content.
	resolved := selection.Resolve(picks, deduped)
	enriched := scraper.New(cfg.ScrapeDelay).EnrichAll(ctx, resolved, cfg.ScrapeMaxArticles)

	// 6. Rewrite for the digest.
	articles := rewrite.RewriteAll(ctx, ai, enriched, picks)
	greeting := rewrite.Greeting(ctx, ai, articles)
	events := history.Events(ctx, ai, start)

	// 7. Publish and record.
	doc := digest.Build(runID, start, greeting, articles, events)
	if err := digest.WriteFile(doc, cfg.OutputPath); err != nil {
		return fmt.Errorf("failed to publish digest: %w", err)
	}
	if err := store.Append(ctx, archiveEntries(articles, start, runID)); err != nil {
		logger.Error("failed to record run in archive", "err", err)
	}

	metrics.Global.AddArticlesPublished(len(articles))
	metrics.Global.RecordRunDuration(time.Since(start))
	metrics.Global.SetLastRun()
	log.Info("digest run complete",
		"articles", len(articles), "took", time.Since(start).Round(time.Second))
	return nil
}

// fetchCandidates merges the search service and the optional RSS
// feeds. Either source may fail; only both failing leaves the list
// empty.
func fetchCandidates(ctx context.Context, cfg *config.Config, limiter *ratelimit.Limiter) []model.Candidate {
	var out []model.Candidate

	if cfg.BraveAPIKey != "" {
		sc := search.New(search.Options{
			APIKey: cfg.BraveAPIKey,
			Pacer:  limiter.For("brave"),
		})
		results, err := sc.FetchCandidates(ctx)
		if err != nil {
			logger.Error("search source failed", "err", err)
		} else {
			out = append(out, results...)
		}
	}

	if cfg.FeedsConfigPath != "" {
		feeds, err := rss.LoadFeeds(cfg.FeedsConfigPath)
		if err != nil {
			logger.Error("feeds config unreadable", "path", cfg.FeedsConfigPath, "err", err)
		} else {
			out = append(out, rss.FetchCandidates(ctx, feeds)...)
		}
	}
	return out
}

func openArchive(cfg *config.Config) (archive.Archive, error) {
	if cfg.DatabaseURL != "" {
		store, err := archive.NewPostgresArchive(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres archive: %w", err)
		}
		logger.Info("using postgres archive")
		return store, nil
	}
	logger.Info("using file archive", "path", cfg.ArchivePath)
	return archive.NewFileArchive(cfg.ArchivePath, cfg.ArchiveWindowDays*2), nil
}

func archiveEntries(articles []rewrite.Article, runDate time.Time, runID string) []archive.Entry {
	entries := make([]archive.Entry, 0, len(articles))
	for _, a := range articles {
		entries = append(entries, archive.Entry{
			Title:     a.Title,
			Summary:   a.Summary,
			Source:    a.Source,
			SourceURL: a.URL,
			RunDate:   runDate,
			RunID:     runID,
		})
	}
	return entries
}
