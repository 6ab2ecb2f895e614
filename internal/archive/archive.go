// Package archive persists what each run published so the next runs
// can avoid re-selecting the same stories. Two backends: a JSON file
// for simple deployments and Postgres when DATABASE_URL is set.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/deusflow/tennews/internal/logger"
)

// Entry is one published story.
type Entry struct {
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Source    string    `json:"source"`
	SourceURL string    `json:"source_url"`
	RunDate   time.Time `json:"run_date"`
	RunID     string    `json:"run_id"`
}

// Archive is the publication-history store.
type Archive interface {
	// Recent returns entries published within the last windowDays.
	Recent(ctx context.Context, windowDays int) ([]Entry, error)
	// Append records the entries of a finished run.
	Append(ctx context.Context, entries []Entry) error
	Close() error
}

// Titles extracts the title list selection prompts need.
func Titles(entries []Entry) []string {
	titles := make([]string, 0, len(entries))
	for _, e := range entries {
		titles = append(titles, e.Title)
	}
	return titles
}

// FileArchive keeps the whole history in one JSON file. Entries older
// than the retention window are dropped on write.
type FileArchive struct {
	mu            sync.Mutex
	path          string
	retentionDays int
}

func NewFileArchive(path string, retentionDays int) *FileArchive {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &FileArchive{path: path, retentionDays: retentionDays}
}

func (f *FileArchive) Recent(ctx context.Context, windowDays int) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.load()
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().AddDate(0, 0, -windowDays)
	var recent []Entry
	for _, e := range all {
		if e.RunDate.After(cutoff) {
			recent = append(recent, e)
		}
	}
	return recent, nil
}

func (f *FileArchive) Append(ctx context.Context, entries []Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.load()
	if err != nil {
		logger.Warn("archive unreadable, starting fresh", "path", f.path, "err", err)
		all = nil
	}
	all = append(all, entries...)

	cutoff := time.Now().AddDate(0, 0, -f.retentionDays)
	kept := all[:0]
	for _, e := range all {
		if e.RunDate.After(cutoff) {
			kept = append(kept, e)
		}
	}

	data, err := json.MarshalIndent(kept, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal archive: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	return nil
}

func (f *FileArchive) Close() error { return nil }

func (f *FileArchive) load() ([]Entry, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse archive: %w", err)
	}
	return entries, nil
}
