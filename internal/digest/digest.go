// Package digest assembles and writes the final daily digest document.
package digest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/deusflow/tennews/internal/history"
	"github.com/deusflow/tennews/internal/rewrite"
)

// Digest is the published document.
type Digest struct {
	RunID            string            `json:"runId"`
	Date             string            `json:"date"`
	DisplayDate      string            `json:"displayDate"`
	DailyGreeting    string            `json:"dailyGreeting"`
	Articles         []rewrite.Article `json:"articles"`
	HistoricalEvents []history.Event   `json:"historicalEvents"`
	ReadingTime      string            `json:"readingTime"`
	LastUpdate       time.Time         `json:"lastUpdate"`
}

// Build assembles the digest for the given run date.
func Build(runID string, date time.Time, greeting string, articles []rewrite.Article, events []history.Event) Digest {
	return Digest{
		RunID:            runID,
		Date:             date.Format("2006-01-02"),
		DisplayDate:      strings.ToUpper(date.Format("Monday, January 2, 2006")),
		DailyGreeting:    greeting,
		Articles:         articles,
		HistoricalEvents: events,
		ReadingTime:      readingTime(articles),
		LastUpdate:       time.Now(),
	}
}

// readingTime estimates minutes at roughly 200 words per minute,
// always at least one.
func readingTime(articles []rewrite.Article) string {
	words := 0
	for _, a := range articles {
		words += len(strings.Fields(a.Title)) + len(strings.Fields(a.Summary))
	}
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

// WriteFile writes the digest as indented JSON.
func WriteFile(d Digest, path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal digest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write digest: %w", err)
	}
	return nil
}
