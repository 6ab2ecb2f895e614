// Package claude is the completion-service client. It issues one
// prompt per call against the Anthropic Messages API and resolves to
// either the generated text or a typed Failure; the retry policy is
// driven entirely by HTTP status classes.
package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/tennews/internal/logger"
	"github.com/deusflow/tennews/internal/retry"
)

// Model selects the backend profile for a call.
type Model int

const (
	// ModelFast is used for scoring-style tasks: deduplication and
	// other cheap judgments over manifests.
	ModelFast Model = iota
	// ModelCapable is used for selection and generation tasks.
	ModelCapable
)

// FailureKind classifies a completion failure for the caller.
type FailureKind int

const (
	KindAuth FailureKind = iota
	KindUnknownModel
	KindRateLimited
	KindOverloaded
	KindTransient
	KindNetwork
	KindMalformed
	KindExhausted
)

func (k FailureKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindUnknownModel:
		return "unknown-model"
	case KindRateLimited:
		return "rate-limited"
	case KindOverloaded:
		return "overloaded"
	case KindTransient:
		return "transient"
	case KindNetwork:
		return "network"
	case KindMalformed:
		return "malformed-response"
	case KindExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Failure is the typed error for a completion call.
type Failure struct {
	Kind   FailureKind
	Status int
	Err    error
}

func (f *Failure) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("completion %s (http %d): %v", f.Kind, f.Status, f.Err)
	}
	return fmt.Sprintf("completion %s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Fatal reports whether the failure must not be retried.
func (f *Failure) Fatal() bool {
	return f.Kind == KindAuth || f.Kind == KindUnknownModel
}

// Pacer is consulted before each outbound attempt; the rate limiter
// implements it.
type Pacer interface {
	Wait(ctx context.Context) error
}

const (
	defaultEndpoint  = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"

	maxAttempts = 5

	normalTimeout  = 90 * time.Second
	scoringTimeout = 120 * time.Second

	scoringTokens    = 4096
	generationTokens = 8192

	backoffBase = 3 * time.Second
	backoffCap  = 30 * time.Second

	overloadedBase = 30 * time.Second
	overloadedStep = 10 * time.Second
)

// Options configures a Client.
type Options struct {
	APIKey       string
	FastModel    string
	CapableModel string
	Endpoint     string // defaults to the Anthropic API
	Pacer        Pacer  // optional
	HTTPClient   *http.Client

	// Sleep overrides the inter-attempt wait; tests inject a recorder.
	Sleep func(ctx context.Context, d time.Duration) error
}

type Client struct {
	apiKey       string
	fastModel    string
	capableModel string
	endpoint     string
	pacer        Pacer
	httpClient   *http.Client
	sleep        func(ctx context.Context, d time.Duration) error
}

func New(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	hc := opts.HTTPClient
	if hc == nil {
		// Per-call deadlines come from the request context.
		hc = &http.Client{}
	}
	return &Client{
		apiKey:       opts.APIKey,
		fastModel:    opts.FastModel,
		capableModel: opts.CapableModel,
		endpoint:     endpoint,
		pacer:        opts.Pacer,
		httpClient:   hc,
		sleep:        opts.Sleep,
	}
}

type messageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends prompt to the selected backend profile and returns
// the generated text. purpose labels the call for logging and selects
// the token budget and timeout: generation tasks get the larger
// budget, scoring tasks the longer timeout. No partial results are
// cached between attempts.
func (c *Client) Complete(ctx context.Context, prompt, purpose string, model Model) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &Failure{Kind: KindMalformed, Err: errors.New("empty prompt")}
	}

	modelID := c.fastModel
	if model == ModelCapable {
		modelID = c.capableModel
	}

	maxTokens := scoringTokens
	if isGeneration(purpose) {
		maxTokens = generationTokens
	}
	timeout := normalTimeout
	if isScoring(purpose) {
		timeout = scoringTimeout
	}

	var text string
	attempt := func(ctx context.Context) error {
		if c.pacer != nil {
			if err := c.pacer.Wait(ctx); err != nil {
				return err
			}
		}
		out, err := c.once(ctx, modelID, prompt, maxTokens, timeout)
		if err != nil {
			logger.Warn("completion attempt failed", "purpose", purpose, "model", modelID, "err", err)
			return err
		}
		text = out
		return nil
	}

	err := retry.Do(ctx, retry.Policy{
		MaxAttempts: maxAttempts,
		Backoff:     backoff,
		Sleep:       c.sleep,
	}, attempt)
	if err == nil {
		return text, nil
	}

	var ex *retry.ExhaustedError
	if errors.As(err, &ex) {
		return "", &Failure{Kind: KindExhausted, Err: ex}
	}
	return "", err
}

// once performs a single fresh request.
func (c *Client) once(ctx context.Context, modelID, prompt string, maxTokens int, timeout time.Duration) (string, error) {
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(messageRequest{
		Model:       modelID,
		MaxTokens:   maxTokens,
		Temperature: 0.1,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", &Failure{Kind: KindMalformed, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(rctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Failure{Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Failure{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decoding
	case http.StatusUnauthorized:
		return "", &Failure{Kind: KindAuth, Status: 401, Err: errors.New("invalid API credential")}
	case http.StatusNotFound:
		return "", &Failure{Kind: KindUnknownModel, Status: 404, Err: fmt.Errorf("unknown model %q", modelID)}
	case http.StatusTooManyRequests:
		return "", &Failure{Kind: KindRateLimited, Status: 429, Err: errors.New("rate limited")}
	case http.StatusInternalServerError:
		return "", &Failure{Kind: KindTransient, Status: 500, Err: errors.New("server error")}
	case 529:
		return "", &Failure{Kind: KindOverloaded, Status: 529, Err: errors.New("service overloaded")}
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &Failure{
			Kind:   KindMalformed,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(snippet))),
		}
	}

	var mr messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", &Failure{Kind: KindMalformed, Status: 200, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(mr.Content) == 0 || strings.TrimSpace(mr.Content[0].Text) == "" {
		return "", &Failure{Kind: KindMalformed, Status: 200, Err: errors.New("empty generated text")}
	}
	return mr.Content[0].Text, nil
}

// backoff is the per-status policy: 429/500 capped exponential, 529
// linear, network short linear, 401/404 and everything else fatal.
func backoff(attempt int, err error) (time.Duration, bool) {
	var f *Failure
	if !errors.As(err, &f) {
		return 0, false
	}
	switch f.Kind {
	case KindRateLimited, KindTransient:
		d := backoffBase << (attempt - 1) // 3s, 6s, 12s, 24s, 30s (capped)
		if d > backoffCap {
			d = backoffCap
		}
		return d, true
	case KindOverloaded:
		// No wait after the final overloaded attempt.
		if attempt >= maxAttempts {
			return 0, true
		}
		return overloadedBase + overloadedStep*time.Duration(attempt-1), true
	case KindNetwork:
		return 2 * time.Second * time.Duration(attempt), true
	default:
		return 0, false
	}
}

func isGeneration(purpose string) bool {
	return strings.Contains(strings.ToLower(purpose), "generat") ||
		strings.Contains(strings.ToLower(purpose), "rewrit")
}

func isScoring(purpose string) bool {
	return strings.Contains(strings.ToLower(purpose), "scor")
}
