package selection

import (
	"regexp"
	"strings"

	"github.com/deusflow/tennews/internal/model"
)

// FallbackSelect is the deterministic, non-AI selector used when
// SelectTop fails entirely. Input-order scan, one pick per lowercased
// title, sequential ids from zero. Always terminates, never fails; may
// return fewer than target when input runs out first.
func FallbackSelect(candidates []model.Candidate, target int) []model.SelectionCandidate {
	if target <= 0 {
		target = Target
	}

	seen := make(map[string]struct{}, target)
	out := make([]model.SelectionCandidate, 0, target)

	for _, c := range candidates {
		if len(out) >= target {
			break
		}
		key := strings.ToLower(strings.TrimSpace(c.Title))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, model.SelectionCandidate{
			ID:              len(out),
			Title:           c.Title,
			URL:             c.URL,
			Category:        inferCategory(c),
			SelectionReason: "fallback: selected in source order",
		})
	}
	return out
}

// Category keyword tables for the fallback path. Checked in order;
// first hit wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Politics", []string{"election", "parliament", "senate", "congress", "minister", "president", "vote", "coup", "sanctions"}},
	{"Business", []string{"economy", "market", "stocks", "merger", "inflation", "trade", "bank", "earnings", "billion"}},
	{"Technology", []string{"tech", "software", "chip", "cyber", "startup", "robot", "artificial intelligence", "ai"}},
	{"Science", []string{"science", "space", "nasa", "research", "study", "discovery", "telescope"}},
	{"Health", []string{"health", "vaccine", "virus", "outbreak", "hospital", "drug", "medical"}},
	{"Climate", []string{"climate", "wildfire", "drought", "hurricane", "typhoon", "flood", "emissions"}},
	{"Sports", []string{"olympics", "championship", "league", "tournament", "cup", "football", "tennis"}},
	{"Culture", []string{"film", "music", "festival", "museum", "award", "celebrity"}},
}

// Domains whose coverage is single-topic enough to imply a category.
var domainCategories = map[string]string{
	"techcrunch.com":        "Technology",
	"theverge.com":          "Technology",
	"arstechnica.com":       "Technology",
	"wired.com":             "Technology",
	"zdnet.com":             "Technology",
	"nature.com":            "Science",
	"science.org":           "Science",
	"scientificamerican.com": "Science",
	"newscientist.com":      "Science",
	"spacenews.com":         "Science",
	"statnews.com":          "Health",
	"cnbc.com":              "Business",
	"marketwatch.com":       "Business",
	"ft.com":                "Business",
	"bloomberg.com":         "Business",
	"barrons.com":           "Business",
	"fortune.com":           "Business",
	"politico.com":          "Politics",
	"politico.eu":           "Politics",
	"thehill.com":           "Politics",
	"foreignpolicy.com":     "Politics",
}

func inferCategory(c model.Candidate) string {
	if cat, ok := domainCategories[c.Domain]; ok {
		return cat
	}

	text := strings.ToLower(c.Title + " " + c.URL)
	for _, entry := range categoryKeywords {
		if containsAny(text, entry.keywords) {
			return entry.category
		}
	}
	return "World News"
}

// containsAny distinguishes phrases and short words so that "ai" does
// not match inside "said".
func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(k, " ") {
			if strings.Contains(text, k) {
				return true
			}
			continue
		}
		if len(k) <= 3 {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
			if re.MatchString(text) {
				return true
			}
			continue
		}
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
