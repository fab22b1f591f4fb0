package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"docclassifier/internal/core/domain"
)

type readerRepoFake struct {
	doc       *domain.Document
	getErr    error
	deleteErr error

	deletedID string
}

func (f *readerRepoFake) Create(context.Context, *domain.Document) error { return nil }

func (f *readerRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copyDoc := *f.doc
	return &copyDoc, nil
}

func (f *readerRepoFake) List(context.Context, domain.ListQuery) ([]domain.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *readerRepoFake) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedID = id
	return nil
}

func (f *readerRepoFake) Stats(context.Context) (domain.DocumentStats, error) {
	return domain.DocumentStats{}, errors.New("not implemented")
}

func (f *readerRepoFake) UpdateStatus(context.Context, string, domain.DocumentStatus, string) error {
	return errors.New("not implemented")
}

func (f *readerRepoFake) SaveClassification(context.Context, string, string, domain.ClassificationResult) error {
	return errors.New("not implemented")
}

type readerStorageFake struct {
	content    string
	openErr    error
	deleteErr  error
	deletedKey string
}

func (f *readerStorageFake) Save(context.Context, string, io.Reader) error {
	return errors.New("not implemented")
}

func (f *readerStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func (f *readerStorageFake) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedKey = key
	return nil
}

func TestReaderDeleteRemovesRowAndObject(t *testing.T) {
	repo := &readerRepoFake{doc: &domain.Document{ID: "doc-1", StoragePath: "doc-1_invoice.pdf"}}
	storage := &readerStorageFake{}
	uc := NewDocumentReaderUseCase(repo, storage)

	if err := uc.Delete(context.Background(), "doc-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if repo.deletedID != "doc-1" {
		t.Errorf("deleted row id = %q", repo.deletedID)
	}
	if storage.deletedKey != "doc-1_invoice.pdf" {
		t.Errorf("deleted storage key = %q", storage.deletedKey)
	}
}

func TestReaderDeleteToleratesOrphanedObject(t *testing.T) {
	repo := &readerRepoFake{doc: &domain.Document{ID: "doc-1", StoragePath: "doc-1_invoice.pdf"}}
	storage := &readerStorageFake{deleteErr: errors.New("storage offline")}
	uc := NewDocumentReaderUseCase(repo, storage)

	if err := uc.Delete(context.Background(), "doc-1"); err != nil {
		t.Fatalf("Delete() error = %v, want nil despite storage failure", err)
	}
	if repo.deletedID != "doc-1" {
		t.Errorf("deleted row id = %q", repo.deletedID)
	}
}

func TestReaderDeleteKeepsRowWhenMissing(t *testing.T) {
	repo := &readerRepoFake{getErr: domain.WrapError(domain.ErrDocumentNotFound, "get document", domain.ErrDocumentNotFound)}
	uc := NewDocumentReaderUseCase(repo, &readerStorageFake{})

	err := uc.Delete(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("Delete() error = %v, want document not found", err)
	}
	if repo.deletedID != "" {
		t.Errorf("unexpected row delete for %q", repo.deletedID)
	}
}

func TestReaderOpenContentStreamsObject(t *testing.T) {
	repo := &readerRepoFake{doc: &domain.Document{ID: "doc-1", Filename: "invoice.pdf", StoragePath: "doc-1_invoice.pdf"}}
	storage := &readerStorageFake{content: "raw bytes"}
	uc := NewDocumentReaderUseCase(repo, storage)

	doc, rc, err := uc.OpenContent(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("OpenContent() error = %v", err)
	}
	defer rc.Close()

	if doc.Filename != "invoice.pdf" {
		t.Errorf("filename = %q", doc.Filename)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "raw bytes" {
		t.Errorf("content = %q", data)
	}
}
