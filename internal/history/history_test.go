package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/tennews/internal/claude"
)

type fakeCompleter struct {
	response string
	err      error
	prompt   string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt, purpose string, m claude.Model) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

var testDate = time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)

func TestEventsHappyPath(t *testing.T) {
	ai := &fakeCompleter{response: `{"events": [
		{"year": 30, "description": "Cleopatra died."},
		{"year": 1791, "description": "The Haitian Revolution began."},
		{"year": 1963, "description": "The Moscow-Washington hotline opened."},
		{"year": 1991, "description": "Azerbaijan declared independence."},
		{"year": 2021, "description": "A fifth event that should be cut."}
	]}`}

	events := Events(context.Background(), ai, testDate)

	require.Len(t, events, 4)
	assert.Equal(t, 1791, events[1].Year)
	assert.Contains(t, ai.prompt, "August 30")
}

func TestEventsFallsBackOnError(t *testing.T) {
	ai := &fakeCompleter{err: errors.New("exhausted")}
	events := Events(context.Background(), ai, testDate)
	assert.Len(t, events, 4)
	assert.Equal(t, defaultEvents(), events)
}

func TestEventsFallsBackOnShortResponse(t *testing.T) {
	ai := &fakeCompleter{response: `{"events": [
		{"year": 1963, "description": "Only one event."}
	]}`}
	events := Events(context.Background(), ai, testDate)
	assert.Equal(t, defaultEvents(), events)
}

func TestEventsSkipsBlankEntries(t *testing.T) {
	ai := &fakeCompleter{response: `{"events": [
		{"year": 0, "description": "No year."},
		{"year": 1900, "description": ""},
		{"year": 1901, "description": "One."},
		{"year": 1902, "description": "Two."},
		{"year": 1903, "description": "Three."},
		{"year": 1904, "description": "Four."}
	]}`}

	events := Events(context.Background(), ai, testDate)

	require.Len(t, events, 4)
	assert.Equal(t, 1901, events[0].Year)
	assert.Equal(t, 1904, events[3].Year)
}
