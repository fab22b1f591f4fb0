package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docclassifier/internal/core/domain"
)

type statusCall struct {
	status domain.DocumentStatus
	errMsg string
}

type processRepoFake struct {
	doc         *domain.Document
	getErr      error
	saveErr     error
	statusCalls []statusCall

	savedText   string
	savedResult domain.ClassificationResult
	savedID     string
}

func (f *processRepoFake) Create(context.Context, *domain.Document) error { return nil }

func (f *processRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copyDoc := *f.doc
	return &copyDoc, nil
}

func (f *processRepoFake) List(context.Context, domain.ListQuery) ([]domain.Document, error) {
	return nil, errors.New("not implemented")
}
func (f *processRepoFake) Delete(context.Context, string) error { return errors.New("not implemented") }
func (f *processRepoFake) Stats(context.Context) (domain.DocumentStats, error) {
	return domain.DocumentStats{}, errors.New("not implemented")
}

func (f *processRepoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	return nil
}

func (f *processRepoFake) SaveClassification(_ context.Context, id string, text string, result domain.ClassificationResult) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedID = id
	f.savedText = text
	f.savedResult = result
	return nil
}

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(context.Context, string, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type gatewayFake struct {
	result domain.ClassificationResult
	calls  int
}

func (f *gatewayFake) ClassifyDocument(context.Context, string) domain.ClassificationResult {
	f.calls++
	return f.result
}

func TestProcessByIDSuccess(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{
		ID:          "doc-1",
		Filename:    "invoice.pdf",
		StoragePath: "doc-1_invoice.pdf",
		Status:      domain.StatusUploaded,
	}}
	gateway := &gatewayFake{result: domain.ClassificationResult{
		PredictedLabel: "Invoice",
		Confidence:     0.93,
	}}
	uc := NewProcessDocumentUseCase(repo, &extractorFake{text: "invoice total"}, gateway)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}

	if gateway.calls != 1 {
		t.Fatalf("expected one classification, got %d", gateway.calls)
	}
	if repo.savedID != "doc-1" || repo.savedText != "invoice total" {
		t.Fatalf("unexpected persisted classification: id=%q text=%q", repo.savedID, repo.savedText)
	}
	if repo.savedResult.PredictedLabel != "Invoice" {
		t.Fatalf("unexpected result: %+v", repo.savedResult)
	}

	if len(repo.statusCalls) != 2 {
		t.Fatalf("expected 2 status updates, got %d", len(repo.statusCalls))
	}
	if repo.statusCalls[0].status != domain.StatusProcessing {
		t.Fatalf("first status must be processing, got %s", repo.statusCalls[0].status)
	}
	if repo.statusCalls[1].status != domain.StatusProcessed {
		t.Fatalf("final status must be processed, got %s", repo.statusCalls[1].status)
	}
}

func TestProcessByIDExtractionFailureMarksFailed(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1", StoragePath: "k", Filename: "a.pdf"}}
	uc := NewProcessDocumentUseCase(repo, &extractorFake{err: errors.New("corrupt pdf")}, &gatewayFake{})

	err := uc.ProcessByID(context.Background(), "doc-1")
	if err == nil {
		t.Fatalf("expected error")
	}

	last := repo.statusCalls[len(repo.statusCalls)-1]
	if last.status != domain.StatusFailed {
		t.Fatalf("expected failed status, got %s", last.status)
	}
	if !strings.Contains(last.errMsg, "corrupt pdf") {
		t.Fatalf("expected error message recorded, got %q", last.errMsg)
	}
}

func TestProcessByIDEmptyTextMarksFailed(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1", StoragePath: "k", Filename: "a.txt"}}
	uc := NewProcessDocumentUseCase(repo, &extractorFake{text: ""}, &gatewayFake{})

	err := uc.ProcessByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	last := repo.statusCalls[len(repo.statusCalls)-1]
	if last.status != domain.StatusFailed {
		t.Fatalf("expected failed status, got %s", last.status)
	}
}
