// Package history produces the "on this day" block of the digest.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deusflow/tennews/internal/claude"
	"github.com/deusflow/tennews/internal/jsonx"
	"github.com/deusflow/tennews/internal/logger"
)

const eventCount = 4

// Completer is the completion-service dependency.
type Completer interface {
	Complete(ctx context.Context, prompt, purpose string, model claude.Model) (string, error)
}

// Event is one historical anniversary shown under the digest.
type Event struct {
	Year        int    `json:"year"`
	Description string `json:"description"`
}

type historyResponse struct {
	Events []Event `json:"events"`
}

// Events returns exactly four events for the given date. The call
// fails soft to a fixed generic set so the digest never ships without
// the block.
func Events(ctx context.Context, ai Completer, date time.Time) []Event {
	prompt := buildPrompt(date)

	raw, err := ai.Complete(ctx, prompt, "history generation", claude.ModelFast)
	if err != nil {
		logger.Warn("history call failed, using defaults", "err", err)
		return defaultEvents()
	}

	var r historyResponse
	if !jsonx.Decode(raw, &r) {
		logger.Warn("history response unparseable, using defaults")
		return defaultEvents()
	}

	events := make([]Event, 0, eventCount)
	for _, e := range r.Events {
		if e.Year == 0 || strings.TrimSpace(e.Description) == "" {
			continue
		}
		events = append(events, e)
		if len(events) == eventCount {
			break
		}
	}
	if len(events) < eventCount {
		return defaultEvents()
	}
	return events
}

func buildPrompt(date time.Time) string {
	return fmt.Sprintf(`List 4 significant historical events that happened on %s (any year). Prefer events with global impact; one sentence each.

Respond with ONLY this JSON, no other text:
{
  "events": [
    {"year": <year>, "description": "<one sentence>"}
  ]
}
Return exactly 4 events.`, date.Format("January 2"))
}

func defaultEvents() []Event {
	return []Event{
		{Year: 1945, Description: "The United Nations Charter was signed, establishing the framework for postwar international cooperation."},
		{Year: 1969, Description: "ARPANET delivered its first message, the seed of what became the internet."},
		{Year: 1989, Description: "The Berlin Wall fell, marking the beginning of the end of the Cold War."},
		{Year: 2004, Description: "The first privately funded spacecraft reached space, opening the commercial spaceflight era."},
	}
}
