package domain

// SearchScope restricts retrieval to a single user's documents. The
// filter is applied inside the store call, never as a post-filter.
type SearchScope struct {
	UserID string
}

// Candidate is a section materialized for one query. Score carries the
// store's fused retrieval signal until re-ranking overwrites it with
// the cross-encoder score.
type Candidate struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"document_id"`
	Content    string  `json:"content"`
	PageNumber int     `json:"page_number"`
	Score      float64 `json:"score"`
}

// Answer is the drafted response plus the candidates it was grounded
// on, ordered by final score descending.
type Answer struct {
	Text       string      `json:"answer"`
	References []Candidate `json:"references"`
}
