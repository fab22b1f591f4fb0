package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"docclassifier/internal/core/domain"
	"docclassifier/internal/core/ports"
)

// TrainingDataUseCase manages the labeled sample corpus. Text is extracted
// eagerly at upload so training never has to touch object storage.
type TrainingDataUseCase struct {
	repo      ports.SampleRepository
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
}

func NewTrainingDataUseCase(
	repo ports.SampleRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
) *TrainingDataUseCase {
	return &TrainingDataUseCase{
		repo:      repo,
		storage:   storage,
		extractor: extractor,
	}
}

func (uc *TrainingDataUseCase) UploadSample(
	ctx context.Context,
	filename, mimeType, label string,
	body io.Reader,
) (*domain.TrainingSample, error) {
	if strings.TrimSpace(label) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload sample", fmt.Errorf("empty label"))
	}
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload sample", fmt.Errorf("empty filename"))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("sample_%s_%s", id, sanitizeFilename(filename))

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save sample to object storage: %w", err)
	}

	text, err := uc.extractor.Extract(ctx, storageKey, filename)
	if err != nil {
		return nil, fmt.Errorf("extract sample text: %w", err)
	}

	sample := &domain.TrainingSample{
		ID:            id,
		Filename:      filename,
		StoragePath:   storageKey,
		Label:         strings.TrimSpace(label),
		ExtractedText: text,
		Status:        domain.SamplePending,
		UploadedAt:    time.Now().UTC(),
	}

	if err := uc.repo.Create(ctx, sample); err != nil {
		return nil, fmt.Errorf("create sample record: %w", err)
	}
	return sample, nil
}

func (uc *TrainingDataUseCase) ListSamples(ctx context.Context) ([]domain.TrainingSample, error) {
	return uc.repo.List(ctx)
}

func (uc *TrainingDataUseCase) ValidateSample(ctx context.Context, id string) error {
	return uc.repo.Validate(ctx, id)
}
