package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDirect(t *testing.T) {
	out, ok := Extract(`{"a": 1}`)
	require.True(t, ok)
	assert.JSONEq(t, `{"a": 1}`, out)
}

func TestExtractFencedWithBOM(t *testing.T) {
	raw := "\uFEFF```json\n{\"selected_articles\": []}\n```"
	out, ok := Extract(raw)
	require.True(t, ok)
	assert.JSONEq(t, `{"selected_articles": []}`, out)
}

func TestExtractTrailingProse(t *testing.T) {
	raw := `{"unique_stories": [0, 1]}
I hope this helps! Let me know if you need anything else.`
	out, ok := Extract(raw)
	require.True(t, ok)
	assert.JSONEq(t, `{"unique_stories": [0, 1]}`, out)
}

func TestExtractLeadingProse(t *testing.T) {
	raw := `Here is the JSON you asked for: {"a": {"b": 2}} done`
	out, ok := Extract(raw)
	require.True(t, ok)
	assert.JSONEq(t, `{"a": {"b": 2}}`, out)
}

func TestExtractBracesInsideStrings(t *testing.T) {
	raw := `{"title": "a {weird} title with \" escapes"} trailing text`
	out, ok := Extract(raw)
	require.True(t, ok)

	var v struct {
		Title string `json:"title"`
	}
	require.True(t, Decode(raw, &v))
	assert.Equal(t, `a {weird} title with " escapes`, v.Title)
	assert.Contains(t, out, "weird")
}

func TestExtractTypographicQuotes(t *testing.T) {
	raw := `{“reason”: “it’s the bigger story”}`
	out, ok := Extract(raw)
	require.True(t, ok)
	assert.Contains(t, out, `"reason"`)
}

func TestExtractBareArrayIsWrapped(t *testing.T) {
	raw := `[{"id": 0, "title": "x"}]`
	out, ok := Extract(raw)
	require.True(t, ok)
	assert.JSONEq(t, `{"scored_articles": [{"id": 0, "title": "x"}]}`, out)
}

func TestDecodeBareArrayIntoKeyedStruct(t *testing.T) {
	// A clean bare array must decode through the wrapping key; only the
	// object strategies are allowed to return unwrapped values.
	var v struct {
		Scored []struct {
			ID    int    `json:"id"`
			Title string `json:"title"`
		} `json:"scored_articles"`
	}
	raw := `[{"id": 0, "title": "First"}, {"id": 1, "title": "Second"}]`
	require.True(t, Decode(raw, &v))
	require.Len(t, v.Scored, 2)
	assert.Equal(t, "Second", v.Scored[1].Title)
}

func TestExtractFailures(t *testing.T) {
	for _, raw := range []string{
		"",
		"   \n  ",
		"no structure here at all",
		`"just a string"`,
		"42",
	} {
		_, ok := Extract(raw)
		assert.False(t, ok, "input %q should not extract", raw)
	}
}

func TestDecodeIntoStruct(t *testing.T) {
	var v struct {
		Unique []int `json:"unique_stories"`
	}
	raw := "```\n{\"unique_stories\": [3, 1, 2]}\n```"
	require.True(t, Decode(raw, &v))
	assert.Equal(t, []int{3, 1, 2}, v.Unique)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	var v map[string]any
	assert.False(t, Decode("total garbage", &v))
}
