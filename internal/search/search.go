// Package search queries the news-search aggregation service with a
// bounded vocabulary of keyword-OR queries over a 24-hour window and
// maps the results to candidates. The service occasionally returns
// malformed bodies, so decoding falls back to the tolerant JSON
// recovery chain and finally to pattern extraction of url/title pairs.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/deusflow/tennews/internal/jsonx"
	"github.com/deusflow/tennews/internal/logger"
	"github.com/deusflow/tennews/internal/model"
	"github.com/deusflow/tennews/internal/retry"
)

const (
	defaultEndpoint = "https://api.search.brave.com/res/v1/news/search"
	perQueryCap     = 250
	freshness       = "pd" // past day
)

// Query vocabulary. Broad OR groups so a single pass covers the major
// news verticals; the domain filter narrows the noise afterwards.
var defaultQueries = []string{
	"breaking OR crisis OR emergency OR disaster",
	"election OR government OR parliament OR sanctions",
	"war OR conflict OR ceasefire OR treaty",
	"economy OR markets OR inflation OR trade",
	"technology OR science OR health OR climate",
}

// Pacer is consulted before each outbound request.
type Pacer interface {
	Wait(ctx context.Context) error
}

type Client struct {
	apiKey     string
	endpoint   string
	queries    []string
	pacer      Pacer
	httpClient *http.Client
	sleep      func(ctx context.Context, d time.Duration) error
}

type Options struct {
	APIKey     string
	Endpoint   string
	Queries    []string
	Pacer      Pacer
	HTTPClient *http.Client

	// Sleep overrides the inter-attempt wait; tests inject a recorder.
	Sleep func(ctx context.Context, d time.Duration) error
}

func New(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	queries := opts.Queries
	if len(queries) == 0 {
		queries = defaultQueries
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiKey:     opts.APIKey,
		endpoint:   endpoint,
		queries:    queries,
		pacer:      opts.Pacer,
		httpClient: hc,
		sleep:      opts.Sleep,
	}
}

// FetchCandidates runs the full query vocabulary and returns the
// merged candidate list, deduplicated by exact URL. Per-query failures
// are logged and skipped; an error is returned only when every query
// fails.
func (c *Client) FetchCandidates(ctx context.Context) ([]model.Candidate, error) {
	seen := make(map[string]struct{})
	var out []model.Candidate
	failures := 0

	for _, q := range c.queries {
		results, err := c.fetchQuery(ctx, q)
		if err != nil {
			logger.Warn("search query failed", "query", q, "err", err)
			failures++
			continue
		}
		for _, r := range results {
			key := strings.ToLower(r.URL)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, r)
		}
	}

	if failures == len(c.queries) {
		return nil, errors.New("all search queries failed")
	}
	logger.Info("search fetch complete", "queries", len(c.queries), "failed", failures, "candidates", len(out))
	return out, nil
}

func (c *Client) fetchQuery(ctx context.Context, query string) ([]model.Candidate, error) {
	var body []byte

	attempt := func(ctx context.Context) error {
		if c.pacer != nil {
			if err := c.pacer.Wait(ctx); err != nil {
				return err
			}
		}

		params := url.Values{}
		params.Set("q", query)
		params.Set("count", fmt.Sprint(perQueryCap))
		params.Set("freshness", freshness)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Subscription-Token", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retryableError{err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return retryableError{fmt.Errorf("search status %d", resp.StatusCode)}
		default:
			return fmt.Errorf("search status %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return retryableError{err}
		}
		return nil
	}

	err := retry.Do(ctx, retry.Policy{
		MaxAttempts: 3,
		Backoff: func(attempt int, err error) (time.Duration, bool) {
			var re retryableError
			if !errors.As(err, &re) {
				return 0, false
			}
			return time.Duration(attempt) * 2 * time.Second, true
		},
		Sleep: c.sleep,
	}, attempt)
	if err != nil {
		return nil, err
	}

	return parseResults(string(body)), nil
}

type retryableError struct{ err error }

func (e retryableError) Error() string { return e.err.Error() }
func (e retryableError) Unwrap() error { return e.err }

type searchResponse struct {
	Results []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"results"`
}

// parseResults decodes the response body, falling back to tolerant
// JSON recovery and finally to regex extraction of url/title pairs.
func parseResults(body string) []model.Candidate {
	var sr searchResponse
	if err := json.Unmarshal([]byte(body), &sr); err != nil || len(sr.Results) == 0 {
		if !jsonx.Decode(body, &sr) || len(sr.Results) == 0 {
			return extractPairs(body)
		}
	}

	out := make([]model.Candidate, 0, len(sr.Results))
	for _, r := range sr.Results {
		if r.URL == "" || r.Title == "" {
			continue
		}
		out = append(out, model.Candidate{Title: r.Title, URL: r.URL})
	}
	return out
}

var (
	urlField   = regexp.MustCompile(`"url"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	titleField = regexp.MustCompile(`"title"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// extractPairs is the last-resort recovery: pair up url and title
// fields in document order.
func extractPairs(body string) []model.Candidate {
	urls := urlField.FindAllStringSubmatch(body, -1)
	titles := titleField.FindAllStringSubmatch(body, -1)

	n := len(urls)
	if len(titles) < n {
		n = len(titles)
	}
	out := make([]model.Candidate, 0, n)
	for i := 0; i < n; i++ {
		u := unescapeField(urls[i][1])
		t := unescapeField(titles[i][1])
		if u == "" || t == "" {
			continue
		}
		out = append(out, model.Candidate{Title: t, URL: u})
	}
	if len(out) > 0 {
		logger.Warn("search body malformed, recovered via pattern extraction", "pairs", len(out))
	}
	return out
}

func unescapeField(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return strings.ReplaceAll(s, `\"`, `"`)
	}
	return out
}
