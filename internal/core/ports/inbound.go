package ports

import (
	"context"
	"io"

	"docclassifier/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, size int64, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read/delete model for document state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, query domain.ListQuery) ([]domain.Document, error)
	Stats(ctx context.Context) (domain.DocumentStats, error)
	Delete(ctx context.Context, id string) error
	OpenContent(ctx context.Context, id string) (*domain.Document, io.ReadCloser, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// ClassificationGateway is the synchronous classification facade consumed by
// the processing pipeline.
type ClassificationGateway interface {
	ClassifyDocument(ctx context.Context, text string) domain.ClassificationResult
}

// TrainingDataManager manages the labeled sample corpus.
type TrainingDataManager interface {
	UploadSample(ctx context.Context, filename, mimeType, label string, body io.Reader) (*domain.TrainingSample, error)
	ListSamples(ctx context.Context) ([]domain.TrainingSample, error)
	ValidateSample(ctx context.Context, id string) error
}

// TrainingCoordinator owns the training-job lifecycle.
type TrainingCoordinator interface {
	StartTraining(ctx context.Context) (string, error)
	JobStatus(jobID string) (domain.TrainingJob, error)
	IsTrainingInProgress() bool
	ModelMetrics() domain.ModelMetrics
}

// DocumentQA answers questions and chats about a stored document.
type DocumentQA interface {
	Ask(ctx context.Context, documentID, question string) (*domain.QAAnswer, error)
	Chat(ctx context.Context, documentID, message string, history []domain.ChatMessage) (*domain.ChatReply, error)
}
