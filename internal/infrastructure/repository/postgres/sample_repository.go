package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"docclassifier/internal/core/domain"
)

type SampleRepository struct {
	db *sql.DB
}

func NewSampleRepository(db *sql.DB) *SampleRepository {
	return &SampleRepository{db: db}
}

func (r *SampleRepository) Create(ctx context.Context, sample *domain.TrainingSample) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO training_samples (id, filename, storage_path, label, extracted_text, status, uploaded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		sample.ID, sample.Filename, sample.StoragePath, sample.Label,
		sample.ExtractedText, string(sample.Status), sample.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert training sample: %w", err)
	}
	return nil
}

func (r *SampleRepository) List(ctx context.Context) ([]domain.TrainingSample, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, filename, storage_path, label, extracted_text, status, uploaded_at
FROM training_samples
ORDER BY uploaded_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list training samples: %w", err)
	}
	defer rows.Close()

	var samples []domain.TrainingSample
	for rows.Next() {
		var sample domain.TrainingSample
		var extractedText sql.NullString
		var status string
		if err := rows.Scan(
			&sample.ID, &sample.Filename, &sample.StoragePath, &sample.Label,
			&extractedText, &status, &sample.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("scan training sample: %w", err)
		}
		sample.ExtractedText = extractedText.String
		sample.Status = domain.SampleStatus(status)
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate training samples: %w", err)
	}
	return samples, nil
}

func (r *SampleRepository) Validate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE training_samples SET status = $2 WHERE id = $1
`, id, string(domain.SampleValidated))
	if err != nil {
		return fmt.Errorf("validate training sample: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("validate sample rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrSampleNotFound, "validate training sample", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *SampleRepository) GetValidated(ctx context.Context) ([]domain.LabeledText, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT extracted_text, label
FROM training_samples
WHERE status = $1 AND extracted_text IS NOT NULL AND extracted_text <> ''
`, string(domain.SampleValidated))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query validated samples: %w", err)
	}
	defer rows.Close()

	var corpus []domain.LabeledText
	for rows.Next() {
		var item domain.LabeledText
		if err := rows.Scan(&item.Text, &item.Label); err != nil {
			return nil, fmt.Errorf("scan validated sample: %w", err)
		}
		corpus = append(corpus, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate validated samples: %w", err)
	}
	return corpus, nil
}
