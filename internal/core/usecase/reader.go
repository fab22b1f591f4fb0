package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"docclassifier/internal/core/domain"
	"docclassifier/internal/core/ports"
)

type DocumentReaderUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
}

func NewDocumentReaderUseCase(repo ports.DocumentRepository, storage ports.ObjectStorage) *DocumentReaderUseCase {
	return &DocumentReaderUseCase{repo: repo, storage: storage}
}

func (uc *DocumentReaderUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *DocumentReaderUseCase) List(ctx context.Context, query domain.ListQuery) ([]domain.Document, error) {
	return uc.repo.List(ctx, query)
}

func (uc *DocumentReaderUseCase) Stats(ctx context.Context) (domain.DocumentStats, error) {
	return uc.repo.Stats(ctx)
}

// Delete removes the metadata row first, then the stored object. A failed
// object delete leaves an orphan blob rather than a dangling record.
func (uc *DocumentReaderUseCase) Delete(ctx context.Context, id string) error {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := uc.storage.Delete(ctx, doc.StoragePath); err != nil {
		slog.Warn("orphaned storage object after delete", "document_id", id, "key", doc.StoragePath, "error", err)
	}
	return nil
}

func (uc *DocumentReaderUseCase) OpenContent(ctx context.Context, id string) (*domain.Document, io.ReadCloser, error) {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open stored document: %w", err)
	}
	return doc, rc, nil
}
