package domain

import "time"

type SampleStatus string

const (
	SamplePending   SampleStatus = "pending"
	SampleValidated SampleStatus = "validated"
)

// TrainingSample is a user-labeled document used as classifier training input.
// Only validated samples are eligible for training.
type TrainingSample struct {
	ID            string       `json:"id"`
	Filename      string       `json:"filename"`
	StoragePath   string       `json:"storage_path"`
	Label         string       `json:"label"`
	ExtractedText string       `json:"extracted_text,omitempty"`
	Status        SampleStatus `json:"status"`
	UploadedAt    time.Time    `json:"uploaded_at"`
}

// LabeledText is one (text, label) pair of the training corpus.
type LabeledText struct {
	Text  string
	Label string
}

type JobStatus string

const (
	JobStarting    JobStatus = "starting"
	JobLoadingData JobStatus = "loading_data"
	JobTraining    JobStatus = "training"
	JobCompleted   JobStatus = "completed"
	JobFailed      JobStatus = "failed"
)

// Terminal reports whether a job can no longer change state.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Active reports whether the job still occupies the single training slot.
func (s JobStatus) Active() bool {
	return s == JobStarting || s == JobLoadingData || s == JobTraining
}

// TrainingJob is the in-memory record of one training run. Jobs are not
// persisted; a process restart forgets them.
type TrainingJob struct {
	JobID                     string        `json:"job_id"`
	Status                    JobStatus     `json:"status"`
	StartTime                 time.Time     `json:"start_time"`
	EndTime                   *time.Time    `json:"end_time,omitempty"`
	TotalDocuments            int           `json:"total_documents"`
	ProcessedDocuments        int           `json:"processed_documents"`
	EstimatedSecondsRemaining *float64      `json:"estimated_seconds_remaining,omitempty"`
	ErrorMessage              string        `json:"error_message,omitempty"`
	Metrics                   *ModelMetrics `json:"metrics,omitempty"`
}

// ModelMetrics holds the evaluation result of a training run. Precision,
// recall and F1 currently mirror the macro accuracy.
type ModelMetrics struct {
	Accuracy  float64            `json:"accuracy"`
	Precision float64            `json:"precision"`
	Recall    float64            `json:"recall"`
	F1Score   float64            `json:"f1_score"`
	PerClass  map[string]float64 `json:"per_class_metrics,omitempty"`
}
