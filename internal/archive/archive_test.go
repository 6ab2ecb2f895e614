package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func testEntry(title string, age time.Duration) Entry {
	return Entry{
		Title:     title,
		Summary:   "summary of " + title,
		Source:    "reuters.com",
		SourceURL: "https://reuters.com/x",
		RunDate:   time.Now().Add(-age),
		RunID:     "run-1",
	}
}

func TestFileArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	a := NewFileArchive(path, 30)

	require.NoError(t, a.Append(ctx, []Entry{
		testEntry("fresh story", 24*time.Hour),
		testEntry("old story", 20*24*time.Hour),
	}))

	recent, err := a.Recent(ctx, 14)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "fresh story", recent[0].Title)
}

func TestFileArchiveMissingFileIsEmpty(t *testing.T) {
	a := NewFileArchive(filepath.Join(t.TempDir(), "nope.json"), 30)
	recent, err := a.Recent(ctx, 14)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestFileArchiveRetentionPrunesOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	a := NewFileArchive(path, 28)

	require.NoError(t, a.Append(ctx, []Entry{testEntry("ancient", 40*24*time.Hour)}))
	require.NoError(t, a.Append(ctx, []Entry{testEntry("current", time.Hour)}))

	// The ancient entry is outside the retention window and was dropped
	// during the second write.
	all, err := a.Recent(ctx, 365)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "current", all[0].Title)
}

func TestFileArchiveAccumulatesRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	a := NewFileArchive(path, 30)

	require.NoError(t, a.Append(ctx, []Entry{testEntry("day one", 48*time.Hour)}))
	require.NoError(t, a.Append(ctx, []Entry{testEntry("day two", time.Hour)}))

	recent, err := a.Recent(ctx, 14)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestTitles(t *testing.T) {
	entries := []Entry{
		testEntry("first", time.Hour),
		testEntry("second", time.Hour),
	}
	assert.Equal(t, []string{"first", "second"}, Titles(entries))
	assert.Empty(t, Titles(nil))
}
