package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
)

const defaultSectionBatchSize = 100

type DocumentRepository struct {
	db               *sql.DB
	vectorDimension  int
	sectionBatchSize int
}

func NewDocumentRepository(db *sql.DB, vectorDimension, sectionBatchSize int) *DocumentRepository {
	if sectionBatchSize <= 0 {
		sectionBatchSize = defaultSectionBatchSize
	}
	return &DocumentRepository{
		db:               db,
		vectorDimension:  vectorDimension,
		sectionBatchSize: sectionBatchSize,
	}
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026032101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	ddl := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS documents (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	source_type TEXT NOT NULL DEFAULT '',
	user_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_user_id ON documents(user_id);

CREATE TABLE IF NOT EXISTS document_sections (
	id UUID PRIMARY KEY,
	document_id UUID NOT NULL REFERENCES documents(id),
	content TEXT NOT NULL,
	page_number INTEGER NOT NULL,
	embedding vector(%d) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sections_document_id ON document_sections(document_id);
CREATE INDEX IF NOT EXISTS idx_sections_content_fts
	ON document_sections USING GIN (to_tsvector('simple', content));

CREATE OR REPLACE FUNCTION hybrid_search(
	query_text TEXT,
	query_embedding vector(%d),
	match_count INT,
	filter_user_id TEXT
) RETURNS TABLE (
	id UUID,
	document_id UUID,
	content TEXT,
	page_number INT,
	score DOUBLE PRECISION
)
LANGUAGE sql STABLE AS $fn$
WITH semantic AS (
	SELECT s.id,
	       row_number() OVER (ORDER BY s.embedding <=> query_embedding) AS rank
	FROM document_sections s
	JOIN documents d ON d.id = s.document_id
	WHERE d.user_id = filter_user_id
	ORDER BY s.embedding <=> query_embedding
	LIMIT match_count * 2
), lexical AS (
	SELECT s.id,
	       row_number() OVER (
	           ORDER BY ts_rank_cd(
	               to_tsvector('simple', s.content),
	               websearch_to_tsquery('simple', query_text)
	           ) DESC
	       ) AS rank
	FROM document_sections s
	JOIN documents d ON d.id = s.document_id
	WHERE d.user_id = filter_user_id
	  AND to_tsvector('simple', s.content) @@ websearch_to_tsquery('simple', query_text)
	LIMIT match_count * 2
)
SELECT s.id, s.document_id, s.content, s.page_number,
       COALESCE(1.0 / (60 + semantic.rank), 0)
     + COALESCE(1.0 / (60 + lexical.rank), 0) AS score
FROM document_sections s
JOIN documents d ON d.id = s.document_id
LEFT JOIN semantic ON semantic.id = s.id
LEFT JOIN lexical ON lexical.id = s.id
WHERE d.user_id = filter_user_id
  AND (semantic.id IS NOT NULL OR lexical.id IS NOT NULL)
ORDER BY score DESC
LIMIT match_count
$fn$;
`, r.vectorDimension, r.vectorDimension)

	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// SaveDocumentWithSections persists the document and every section in
// one transaction. Sections go in fixed-size multi-row inserts to keep
// statement size bounded; the surrounding transaction means a failed
// batch never leaves a partially ingested document behind.
func (r *DocumentRepository) SaveDocumentWithSections(
	ctx context.Context,
	doc *domain.Document,
	sections []domain.Section,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ingest tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO documents (id, title, source_type, user_id, created_at)
VALUES ($1, $2, $3, $4, $5)
`, doc.ID, doc.Title, doc.SourceType, doc.UserID, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	for start := 0; start < len(sections); start += r.sectionBatchSize {
		end := start + r.sectionBatchSize
		if end > len(sections) {
			end = len(sections)
		}
		if err := insertSectionBatch(ctx, tx, sections[start:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ingest tx: %w", err)
	}
	return nil
}

func insertSectionBatch(ctx context.Context, tx *sql.Tx, sections []domain.Section) error {
	if len(sections) == 0 {
		return nil
	}

	var query strings.Builder
	query.WriteString(`INSERT INTO document_sections (id, document_id, content, page_number, embedding) VALUES `)
	args := make([]any, 0, len(sections)*5)
	for i, s := range sections {
		if i > 0 {
			query.WriteString(", ")
		}
		base := i * 5
		fmt.Fprintf(&query, "($%d, $%d, $%d, $%d, $%d::vector)", base+1, base+2, base+3, base+4, base+5)
		args = append(args, s.ID, s.DocumentID, s.Content, s.PageNumber, vectorLiteral(s.Embedding))
	}

	if _, err := tx.ExecContext(ctx, query.String(), args...); err != nil {
		return fmt.Errorf("insert section batch: %w", err)
	}
	return nil
}
