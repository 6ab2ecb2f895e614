// Package domains maps article URLs to canonical site identities and
// filters candidates against the trusted-source allow list.
package domains

import (
	"strings"

	"github.com/deusflow/tennews/internal/logger"
	"github.com/deusflow/tennews/internal/model"
)

// Second-level labels that keep three labels in the canonical form
// (bbc.co.uk, smh.com.au, pravda.com.ua and friends).
var multiLabelSeconds = map[string]struct{}{
	"co": {}, "com": {}, "net": {}, "org": {}, "gov": {}, "edu": {}, "ac": {},
}

// Canonicalize reduces a URL to its registrable domain: scheme, www.
// prefix, port and path are stripped, and known multi-label public
// suffixes keep three labels instead of two. Pure function of the URL
// string.
func Canonicalize(rawURL string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(rawURL))
	if s == "" {
		return "", false
	}

	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "https://")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "www.")

	labels := strings.Split(s, ".")
	if len(labels) < 2 {
		return "", false
	}
	for _, l := range labels {
		if l == "" {
			return "", false
		}
	}

	keep := 2
	if len(labels) >= 3 {
		if _, ok := multiLabelSeconds[labels[len(labels)-2]]; ok {
			keep = 3
		}
	}
	return strings.Join(labels[len(labels)-keep:], "."), true
}

// IsAllowed reports allow-list membership for a canonical domain.
func IsAllowed(domain string) bool {
	_, ok := allowSet[domain]
	return ok
}

// FilterStats summarizes one filter pass. Reported for observability
// only; rejection never raises an error.
type FilterStats struct {
	Total           int
	Accepted        int
	Rejected        int
	RejectedDomains int
}

// FilterAndDeduplicateByURL processes candidates in input order and
// accepts a candidate only when its exact lowercased URL has not been
// seen in this call and its canonical domain is allow-listed. Accepted
// candidates get their Domain assigned.
func FilterAndDeduplicateByURL(candidates []model.Candidate) ([]model.Candidate, FilterStats) {
	stats := FilterStats{Total: len(candidates)}
	seen := make(map[string]struct{}, len(candidates))
	rejectedDomains := make(map[string]struct{})
	accepted := make([]model.Candidate, 0, len(candidates))

	for _, c := range candidates {
		key := strings.ToLower(strings.TrimSpace(c.URL))
		if key == "" {
			stats.Rejected++
			continue
		}
		if _, dup := seen[key]; dup {
			stats.Rejected++
			continue
		}
		seen[key] = struct{}{}

		domain, ok := Canonicalize(c.URL)
		if !ok {
			stats.Rejected++
			continue
		}
		if !IsAllowed(domain) {
			stats.Rejected++
			rejectedDomains[domain] = struct{}{}
			continue
		}

		c.Domain = domain
		accepted = append(accepted, c)
		stats.Accepted++
	}

	stats.RejectedDomains = len(rejectedDomains)
	logger.Info("domain filter pass",
		"total", stats.Total,
		"accepted", stats.Accepted,
		"rejected", stats.Rejected,
		"rejected_domains", stats.RejectedDomains)
	return accepted, stats
}
