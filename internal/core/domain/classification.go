package domain

import "time"

// ClassificationResult is what the classifier returns for a single text.
// Confidence values are the engine's native scores and should be treated as
// ranking scores, not a calibrated probability distribution.
type ClassificationResult struct {
	PredictedLabel string                  `json:"predicted_label"`
	Confidence     float64                 `json:"confidence"`
	Alternatives   []AlternativePrediction `json:"alternatives"`
	ProcessingTime time.Duration           `json:"-"`
}

// AlternativePrediction is a non-winning label with its score, ordered by the
// classifier from most to least likely.
type AlternativePrediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

const FallbackLabel = "Unknown"
