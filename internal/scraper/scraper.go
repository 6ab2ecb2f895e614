// Package scraper fetches full article text for the selected stories.
// Enrichment is best-effort: a failed fetch leaves the candidate with
// an empty content body and the rewriter works from the title alone.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/tennews/internal/logger"
	"github.com/deusflow/tennews/internal/model"
)

const (
	fetchTimeout = 15 * time.Second
	maxContent   = 1800
	minParagraph = 30
)

// Selector cascade, most specific first.
var contentSelectors = []string{
	"article p",
	".article-body p",
	".article-content p",
	".post-content p",
	".entry-content p",
	".content p",
	"main p",
	"p",
}

var junkIndicators = []string{
	"cookie", "gdpr", "subscribe", "newsletter", "sign up", "log in",
	"advertisement", "read more", "click here", "follow us", "share this",
	"all rights reserved",
}

type Client struct {
	httpClient *http.Client
	delay      time.Duration
}

func New(delay time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: fetchTimeout},
		delay:      delay,
	}
}

// EnrichAll fetches content for up to max candidates, pausing between
// fetches so source sites are not hammered. Always returns one derived
// record per input candidate.
func (c *Client) EnrichAll(ctx context.Context, candidates []model.Candidate, max int) []model.Enriched {
	out := make([]model.Enriched, 0, len(candidates))

	fetched := 0
	for _, cand := range candidates {
		enriched := model.Enriched{Candidate: cand}
		if fetched < max && ctx.Err() == nil {
			content, err := c.extract(ctx, cand.URL)
			if err != nil {
				logger.Warn("content fetch failed", "url", cand.URL, "err", err)
			} else {
				enriched.Content = content
			}
			fetched++
			if c.delay > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(c.delay):
				}
			}
		}
		out = append(out, enriched)
	}
	return out
}

func (c *Client) extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; tennews/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}

	content := extractContent(doc)
	if content == "" {
		return "", fmt.Errorf("no content found")
	}
	return content, nil
}

func extractContent(doc *goquery.Document) string {
	var paragraphs []string

	for _, selector := range contentSelectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) >= minParagraph && !isJunk(text) {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			break
		}
		paragraphs = paragraphs[:0]
	}
	if len(paragraphs) == 0 {
		return ""
	}

	return clipParagraphs(paragraphs, maxContent)
}

func isJunk(line string) bool {
	lower := strings.ToLower(line)
	for _, indicator := range junkIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// clipParagraphs keeps whole paragraphs up to the length budget.
func clipParagraphs(paragraphs []string, budget int) string {
	var kept []string
	total := 0
	for _, p := range paragraphs {
		if total+len(p) > budget && len(kept) > 0 {
			break
		}
		kept = append(kept, p)
		total += len(p) + 2
	}
	return strings.Join(kept, "\n\n")
}
