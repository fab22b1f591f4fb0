package usecase

import (
	"context"
	"log/slog"

	"docclassifier/internal/core/domain"
	"docclassifier/internal/core/ports"
)

// ClassificationObserver is notified after every prediction; wired to worker
// metrics in the binaries, nil in tests.
type ClassificationObserver func(result domain.ClassificationResult, fallback bool)

// ClassifyDocumentUseCase fronts the classifier model. The model itself never
// errors: before the first training run it serves a fixed fallback prediction.
type ClassifyDocumentUseCase struct {
	model    ports.ClassifierModel
	observer ClassificationObserver
}

func NewClassifyDocumentUseCase(model ports.ClassifierModel, observer ClassificationObserver) *ClassifyDocumentUseCase {
	return &ClassifyDocumentUseCase{model: model, observer: observer}
}

func (uc *ClassifyDocumentUseCase) ClassifyDocument(ctx context.Context, text string) domain.ClassificationResult {
	fallback := !uc.model.IsTrained(ctx)
	result := uc.model.Classify(ctx, text)

	slog.Debug("document classified",
		"label", result.PredictedLabel,
		"confidence", result.Confidence,
		"fallback", fallback,
		"duration_ms", result.ProcessingTime.Seconds()*1000,
	)
	if uc.observer != nil {
		uc.observer(result, fallback)
	}
	return result
}
