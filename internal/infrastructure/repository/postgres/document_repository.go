package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"docclassifier/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	file_size BIGINT NOT NULL DEFAULT 0,
	extracted_text TEXT,
	predicted_type TEXT,
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	alternatives JSONB NOT NULL DEFAULT '[]'::jsonb,
	status TEXT NOT NULL,
	error_message TEXT,
	uploaded_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents(uploaded_at DESC);
CREATE INDEX IF NOT EXISTS idx_documents_predicted_type ON documents(predicted_type);

CREATE TABLE IF NOT EXISTS training_samples (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	label TEXT NOT NULL,
	extracted_text TEXT,
	status TEXT NOT NULL,
	uploaded_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_training_samples_status ON training_samples(status);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	altJSON, err := json.Marshal(doc.Alternatives)
	if err != nil {
		return fmt.Errorf("marshal alternatives: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, filename, mime_type, storage_path, file_size, extracted_text, predicted_type, confidence, alternatives, status, error_message, uploaded_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`,
		doc.ID, doc.Filename, doc.MimeType, doc.StoragePath, doc.FileSize, doc.ExtractedText,
		doc.PredictedType, doc.Confidence, altJSON, string(doc.Status), doc.Error, doc.UploadedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_type, storage_path, file_size, extracted_text, predicted_type, confidence, alternatives, status, error_message, uploaded_at, updated_at
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, query domain.ListQuery) ([]domain.Document, error) {
	q := query.Normalize()

	where := "WHERE 1=1"
	args := []any{}
	if q.SearchTerm != "" {
		args = append(args, "%"+q.SearchTerm+"%")
		where += fmt.Sprintf(" AND filename ILIKE $%d", len(args))
	}
	if q.DocumentType != "" {
		args = append(args, q.DocumentType)
		where += fmt.Sprintf(" AND predicted_type = $%d", len(args))
	}

	args = append(args, q.PageSize, (q.Page-1)*q.PageSize)
	sqlQuery := fmt.Sprintf(`
SELECT id, filename, mime_type, storage_path, file_size, extracted_text, predicted_type, confidence, alternatives, status, error_message, uploaded_at, updated_at
FROM documents
%s
ORDER BY uploaded_at DESC
LIMIT $%d OFFSET $%d
`, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "delete document", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *DocumentRepository) Stats(ctx context.Context) (domain.DocumentStats, error) {
	var stats domain.DocumentStats

	row := r.db.QueryRowContext(ctx, `
SELECT
	COUNT(*),
	COALESCE(AVG(confidence) FILTER (WHERE status = 'processed'), 0),
	COUNT(*) FILTER (WHERE status = 'processed' AND updated_at >= date_trunc('day', now()))
FROM documents
`)
	if err := row.Scan(&stats.TotalDocuments, &stats.AverageConfidence, &stats.ProcessedToday); err != nil {
		return domain.DocumentStats{}, fmt.Errorf("scan document stats: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT predicted_type, COUNT(*)
FROM documents
WHERE predicted_type IS NOT NULL AND predicted_type <> ''
GROUP BY predicted_type
`)
	if err != nil {
		return domain.DocumentStats{}, fmt.Errorf("query type distribution: %w", err)
	}
	defer rows.Close()

	stats.TypeDistribution = make(map[string]int)
	for rows.Next() {
		var docType string
		var count int
		if err := rows.Scan(&docType, &count); err != nil {
			return domain.DocumentStats{}, fmt.Errorf("scan type distribution: %w", err)
		}
		stats.TypeDistribution[docType] = count
	}
	if err := rows.Err(); err != nil {
		return domain.DocumentStats{}, fmt.Errorf("iterate type distribution: %w", err)
	}
	return stats, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document status", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *DocumentRepository) SaveClassification(ctx context.Context, id string, extractedText string, result domain.ClassificationResult) error {
	altJSON, err := json.Marshal(result.Alternatives)
	if err != nil {
		return fmt.Errorf("marshal alternatives: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET extracted_text = $2, predicted_type = $3, confidence = $4, alternatives = $5, updated_at = $6
WHERE id = $1
`, id, extractedText, result.PredictedLabel, result.Confidence, altJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save classification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save classification rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "save classification", fmt.Errorf("id %s", id))
	}
	return nil
}

// scanDocument reads one document row from either *sql.Row or *sql.Rows.
func scanDocument(row interface{ Scan(dest ...any) error }) (*domain.Document, error) {
	var doc domain.Document
	var extractedText, predictedType, errMessage sql.NullString
	var altRaw []byte
	var status string

	err := row.Scan(
		&doc.ID, &doc.Filename, &doc.MimeType, &doc.StoragePath, &doc.FileSize,
		&extractedText, &predictedType, &doc.Confidence, &altRaw, &status, &errMessage,
		&doc.UploadedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.ExtractedText = extractedText.String
	doc.PredictedType = predictedType.String
	doc.Error = errMessage.String
	doc.Status = domain.DocumentStatus(status)
	if len(altRaw) > 0 {
		if err := json.Unmarshal(altRaw, &doc.Alternatives); err != nil {
			return nil, fmt.Errorf("unmarshal alternatives: %w", err)
		}
	}
	return &doc, nil
}
