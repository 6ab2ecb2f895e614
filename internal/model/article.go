package model

// Candidate is a raw article reference prior to acceptance into the
// pipeline. Identity is the exact lowercased URL until the domain
// filter assigns a canonical Domain. Candidates are immutable once
// filtered in; enrichment derives a new record instead of mutating.
type Candidate struct {
	Title  string
	URL    string
	Domain string
}

// Enriched pairs an accepted candidate with its scraped full text.
type Enriched struct {
	Candidate
	Content string
}

// SelectionCandidate is one entry of the selector output. ID is
// batch-local and must be re-resolved to a Candidate by exact title
// match before use downstream.
type SelectionCandidate struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	Category        string `json:"category"`
	SelectionReason string `json:"selection_reason"`
	IsUpdate        bool   `json:"is_update"`
	PreviousContext string `json:"previous_context"`
}
