// Package rss is the optional supplemental candidate source: a YAML
// list of feeds fetched with gofeed and mapped to candidates.
package rss

import (
	"context"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/tennews/internal/logger"
	"github.com/deusflow/tennews/internal/model"
)

// FeedsConfig is YAML config structure
// feeds:
//   - https://...
type FeedsConfig struct {
	Feeds []string `yaml:"feeds"`
}

// LoadFeeds reads the RSS feeds list from a YAML file.
func LoadFeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg.Feeds, nil
}

// FetchCandidates downloads all feeds and maps fresh items (last 24
// hours) to candidates. Per-feed errors are logged, never fatal.
func FetchCandidates(ctx context.Context, urls []string) []model.Candidate {
	parser := gofeed.NewParser()
	cutoff := time.Now().Add(-24 * time.Hour)

	var out []model.Candidate
	successCount := 0

	for _, feedURL := range urls {
		feed, err := parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			logger.Warn("rss feed failed", "url", feedURL, "err", err)
			continue
		}
		for _, item := range feed.Items {
			if item.Link == "" || item.Title == "" {
				continue
			}
			if item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
				continue
			}
			out = append(out, model.Candidate{Title: item.Title, URL: item.Link})
		}
		successCount++
	}

	logger.Info("rss fetch complete", "feeds_ok", successCount, "feeds_total", len(urls), "candidates", len(out))
	return out
}
