package domain

import "time"

// Document is an ingested source artifact (meeting minutes, budget
// plans, survey reports). Immutable after creation.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	SourceType string    `json:"source_type"`
	UserID     string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Section is one page-tagged fragment of a document's content, stored
// together with its passage-mode embedding.
type Section struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Content    string    `json:"content"`
	PageNumber int       `json:"page_number"`
	Embedding  []float32 `json:"-"`
}

// Fragment is the ingestion input unit: raw content plus the page it
// was reported on by the source document.
type Fragment struct {
	Content string `json:"content"`
	Page    int    `json:"page"`
}
