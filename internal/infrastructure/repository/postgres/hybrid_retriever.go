package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
)

// HybridRetriever runs the store-side hybrid_search function, which
// fuses full-text and vector similarity ranking in SQL. The pipeline
// treats the returned order as already ranked and re-ranks downstream.
type HybridRetriever struct {
	db *sql.DB
}

func NewHybridRetriever(db *sql.DB) *HybridRetriever {
	return &HybridRetriever{db: db}
}

func (r *HybridRetriever) Retrieve(
	ctx context.Context,
	queryText string,
	queryVector []float32,
	limit int,
	scope domain.SearchScope,
) ([]domain.Candidate, error) {
	if scope.UserID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "hybrid search", errors.New("scope user id is empty"))
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, content, page_number, score
FROM hybrid_search($1, $2::vector, $3, $4)
`, queryText, vectorLiteral(queryVector), limit, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("hybrid search query: %w", err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Content, &c.PageNumber, &c.Score); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}
