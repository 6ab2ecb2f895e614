// Package jsonx recovers structured JSON from model output. The
// completion service is instructed to return one JSON value but often
// wraps it in a code fence, prepends a BOM, appends prose, or swaps in
// typographic quotes. Extract runs an ordered chain of recovery
// strategies and returns the first candidate that parses.
package jsonx

import (
	"encoding/json"
	"strings"
)

type strategy func(string) (string, bool)

// Strategies are ordered from least to most invasive. Each is a pure
// text transform; validity is checked by an actual parse.
var strategies = []strategy{
	direct,
	balancedPrefix,
	braceSpan,
	asciiNormalize,
	arrayWrap,
}

// Extract returns the JSON text recovered from raw, or ok=false when
// every strategy fails. Callers must treat a failed extraction as a
// soft failure and fall back, never as fatal.
func Extract(raw string) (string, bool) {
	s := stripFence(raw)
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	for _, fn := range strategies {
		if out, ok := fn(s); ok {
			return out, true
		}
	}
	return "", false
}

// Decode extracts JSON from raw and unmarshals it into v. Returns
// false when extraction or unmarshalling fails.
func Decode(raw string, v any) bool {
	out, ok := Extract(raw)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(out), v) == nil
}

// stripFence removes a leading BOM and a ```-fenced wrapper with an
// optional language tag.
func stripFence(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = s[3:]
	// Drop the language tag line ("json", "JSON", ...).
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if first == "" || isLangTag(first) {
			s = s[i+1:]
		}
	}
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func isLangTag(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return len(s) <= 10
}

// parses accepts objects only. Bare arrays must fall through to the
// arrayWrap strategy so that callers always see an object.
func parses(s string) bool {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return false
	}
	_, isObject := v.(map[string]any)
	return isObject
}

func direct(s string) (string, bool) {
	if parses(s) {
		return s, true
	}
	return "", false
}

// balancedPrefix handles a second value or trailing prose concatenated
// after the first object: scan brace nesting with string and escape
// state, cut where nesting first returns to zero.
func balancedPrefix(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				prefix := s[start : i+1]
				if parses(prefix) {
					return prefix, true
				}
				return "", false
			}
		}
	}
	return "", false
}

// braceSpan takes everything between the first '{' and the last '}'.
func braceSpan(s string) (string, bool) {
	i := strings.IndexByte(s, '{')
	j := strings.LastIndexByte(s, '}')
	if i < 0 || j <= i {
		return "", false
	}
	span := s[i : j+1]
	if parses(span) {
		return span, true
	}
	return "", false
}

var typographic = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"‘", "'",
	"’", "'",
	"–", "-",
	"—", "-",
)

// asciiNormalize maps smart quotes and dashes to ASCII and retries a
// direct parse.
func asciiNormalize(s string) (string, bool) {
	n := typographic.Replace(s)
	if n == s {
		return "", false
	}
	if parses(n) {
		return n, true
	}
	return braceSpan(n)
}

// arrayWrap salvages a bare JSON array; the result is wrapped so that
// callers always see an object.
func arrayWrap(s string) (string, bool) {
	i := strings.IndexByte(s, '[')
	j := strings.LastIndexByte(s, ']')
	if i < 0 || j <= i {
		return "", false
	}
	span := s[i : j+1]
	var v any
	if err := json.Unmarshal([]byte(span), &v); err != nil {
		return "", false
	}
	if _, isArray := v.([]any); !isArray {
		return "", false
	}
	return `{"scored_articles":` + span + `}`, true
}
