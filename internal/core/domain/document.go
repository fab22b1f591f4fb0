package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusProcessed  DocumentStatus = "processed"
	StatusFailed     DocumentStatus = "failed"
)

type Document struct {
	ID            string                  `json:"id"`
	Filename      string                  `json:"filename"`
	MimeType      string                  `json:"mime_type"`
	StoragePath   string                  `json:"storage_path"`
	FileSize      int64                   `json:"file_size"`
	ExtractedText string                  `json:"extracted_text,omitempty"`
	PredictedType string                  `json:"predicted_type,omitempty"`
	Confidence    float64                 `json:"confidence,omitempty"`
	Alternatives  []AlternativePrediction `json:"alternatives,omitempty"`
	Status        DocumentStatus          `json:"status"`
	Error         string                  `json:"error,omitempty"`
	UploadedAt    time.Time               `json:"uploaded_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// ListQuery narrows and pages the document listing.
type ListQuery struct {
	SearchTerm   string
	DocumentType string
	Page         int
	PageSize     int
}

func (q ListQuery) Normalize() ListQuery {
	out := q
	if out.Page < 1 {
		out.Page = 1
	}
	if out.PageSize < 1 || out.PageSize > 100 {
		out.PageSize = 10
	}
	if out.DocumentType == "all" {
		out.DocumentType = ""
	}
	return out
}

type DocumentStats struct {
	TotalDocuments    int            `json:"total_documents"`
	AverageConfidence float64        `json:"average_confidence"`
	ProcessedToday    int            `json:"processed_today"`
	TypeDistribution  map[string]int `json:"type_distribution"`
}
