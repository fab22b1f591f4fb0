package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docclassifier/internal/core/domain"
	"docclassifier/internal/core/ports"
)

// qaConfidence is reported for every successful answer; the upstream model
// exposes no confidence signal of its own.
const qaConfidence = 0.9

// DocumentQAUseCase answers questions about one stored document. Upstream
// model failures degrade to an apologetic answer with zero confidence instead
// of surfacing as server errors.
type DocumentQAUseCase struct {
	repo     ports.DocumentRepository
	answerer ports.DocumentAnswerer
}

func NewDocumentQAUseCase(repo ports.DocumentRepository, answerer ports.DocumentAnswerer) *DocumentQAUseCase {
	return &DocumentQAUseCase{repo: repo, answerer: answerer}
}

func (uc *DocumentQAUseCase) Ask(ctx context.Context, documentID, question string) (*domain.QAAnswer, error) {
	doc, err := uc.loadProcessedDocument(ctx, documentID, question == "")
	if err != nil {
		return nil, err
	}

	answer, err := uc.answerer.AskAboutDocument(ctx, question, doc.ExtractedText, doc.PredictedType)
	confidence := qaConfidence
	if err != nil {
		slog.Warn("qa answer degraded", "document_id", documentID, "error", err)
		answer = fmt.Sprintf("I apologize, but I encountered an error while processing your question: %v", err)
		confidence = 0
	}

	return &domain.QAAnswer{
		DocumentID: documentID,
		Question:   question,
		Answer:     answer,
		Confidence: confidence,
		Timestamp:  time.Now().UTC(),
	}, nil
}

func (uc *DocumentQAUseCase) Chat(ctx context.Context, documentID, message string, history []domain.ChatMessage) (*domain.ChatReply, error) {
	doc, err := uc.loadProcessedDocument(ctx, documentID, message == "")
	if err != nil {
		return nil, err
	}

	reply, err := uc.answerer.ChatAboutDocument(ctx, message, doc.ExtractedText, doc.PredictedType, history)
	if err != nil {
		slog.Warn("qa chat degraded", "document_id", documentID, "error", err)
		reply = fmt.Sprintf("I apologize, but I encountered an error: %v", err)
	}

	return &domain.ChatReply{
		DocumentID:    documentID,
		Message:       reply,
		FromAssistant: true,
		Timestamp:     time.Now().UTC(),
	}, nil
}

func (uc *DocumentQAUseCase) loadProcessedDocument(ctx context.Context, documentID string, emptyInput bool) (*domain.Document, error) {
	if emptyInput {
		return nil, domain.WrapError(domain.ErrInvalidInput, "document qa", fmt.Errorf("empty question"))
	}
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.ExtractedText == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "document qa",
			fmt.Errorf("document %s has no extracted text yet", documentID))
	}
	return doc, nil
}
