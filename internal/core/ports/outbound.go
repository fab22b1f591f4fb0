package ports

import (
	"context"
	"io"

	"docclassifier/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, query domain.ListQuery) ([]domain.Document, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (domain.DocumentStats, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveClassification(ctx context.Context, id string, extractedText string, result domain.ClassificationResult) error
}

// SampleRepository persists labeled training samples and serves the validated
// corpus to the training coordinator.
type SampleRepository interface {
	Create(ctx context.Context, sample *domain.TrainingSample) error
	List(ctx context.Context) ([]domain.TrainingSample, error)
	Validate(ctx context.Context, id string) error
	GetValidated(ctx context.Context) ([]domain.LabeledText, error)
}

// ObjectStorage stores source documents and training files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ArtifactStore holds the single serialized classifier artifact. Save must be
// atomic from a reader's perspective. Fingerprint identifies the persisted
// artifact's revision so long-lived readers can detect a new publish; it
// reports false when no artifact exists.
type ArtifactStore interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, error)
	Exists(ctx context.Context) bool
	Fingerprint(ctx context.Context) (string, bool)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored file, dispatching on the
// original filename's extension.
type TextExtractor interface {
	Extract(ctx context.Context, storageKey, filename string) (string, error)
}

// ClassifierModel scores text against the currently loaded model, or degrades
// to a deterministic fallback when no model has been trained yet.
type ClassifierModel interface {
	Classify(ctx context.Context, text string) domain.ClassificationResult
	IsTrained(ctx context.Context) bool
	Reload(ctx context.Context)
}

// Trainer fits a fresh classifier over a labeled corpus and returns the
// serialized artifact with its evaluation metrics.
type Trainer interface {
	Fit(ctx context.Context, corpus []domain.LabeledText) ([]byte, domain.ModelMetrics, error)
}

// DocumentAnswerer creates LLM-backed answers about a single document.
type DocumentAnswerer interface {
	AskAboutDocument(ctx context.Context, question, documentText, documentType string) (string, error)
	ChatAboutDocument(ctx context.Context, message, documentText, documentType string, history []domain.ChatMessage) (string, error)
}
