package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"docclassifier/internal/core/domain"
	"docclassifier/internal/core/ports"
)

// TrainingObserver is notified when a job reaches a terminal state.
type TrainingObserver func(status domain.JobStatus, duration time.Duration)

// TrainingCoordinatorUseCase owns the training-job lifecycle. Jobs live in
// memory only and a single run may be active at a time; a second start request
// is rejected while one is in flight.
type TrainingCoordinatorUseCase struct {
	samples   ports.SampleRepository
	trainer   ports.Trainer
	artifacts ports.ArtifactStore
	model     ports.ClassifierModel

	stepDelay time.Duration
	observer  TrainingObserver

	mu   sync.Mutex
	jobs map[string]*domain.TrainingJob
}

func NewTrainingCoordinatorUseCase(
	samples ports.SampleRepository,
	trainer ports.Trainer,
	artifacts ports.ArtifactStore,
	model ports.ClassifierModel,
	stepDelay time.Duration,
	observer TrainingObserver,
) *TrainingCoordinatorUseCase {
	return &TrainingCoordinatorUseCase{
		samples:   samples,
		trainer:   trainer,
		artifacts: artifacts,
		model:     model,
		stepDelay: stepDelay,
		observer:  observer,
		jobs:      make(map[string]*domain.TrainingJob),
	}
}

func (uc *TrainingCoordinatorUseCase) StartTraining(ctx context.Context) (string, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	for _, job := range uc.jobs {
		if job.Status.Active() {
			return "", domain.WrapError(domain.ErrTrainingInProgress, "start training",
				fmt.Errorf("job %s is %s", job.JobID, job.Status))
		}
	}

	jobID := uuid.NewString()
	uc.jobs[jobID] = &domain.TrainingJob{
		JobID:     jobID,
		Status:    domain.JobStarting,
		StartTime: time.Now().UTC(),
	}

	// The run outlives the request; it is cancelled only by process shutdown.
	go uc.run(context.Background(), jobID)

	return jobID, nil
}

func (uc *TrainingCoordinatorUseCase) JobStatus(jobID string) (domain.TrainingJob, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	job, ok := uc.jobs[jobID]
	if !ok {
		return domain.TrainingJob{}, domain.WrapError(domain.ErrJobNotFound, "get training status",
			fmt.Errorf("job %s", jobID))
	}
	return copyJob(job), nil
}

func (uc *TrainingCoordinatorUseCase) IsTrainingInProgress() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	for _, job := range uc.jobs {
		if job.Status.Active() {
			return true
		}
	}
	return false
}

// ModelMetrics returns the evaluation of the most recent completed run, or a
// static snapshot when no run has completed in this process.
func (uc *TrainingCoordinatorUseCase) ModelMetrics() domain.ModelMetrics {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	var latest *domain.TrainingJob
	for _, job := range uc.jobs {
		if job.Status != domain.JobCompleted || job.Metrics == nil {
			continue
		}
		if latest == nil || job.StartTime.After(latest.StartTime) {
			latest = job
		}
	}
	if latest != nil {
		return *latest.Metrics
	}
	return defaultModelMetrics()
}

func (uc *TrainingCoordinatorUseCase) run(ctx context.Context, jobID string) {
	uc.transition(jobID, domain.JobLoadingData)

	corpus, err := uc.samples.GetValidated(ctx)
	if err != nil {
		uc.fail(jobID, fmt.Sprintf("load training data: %v", err))
		return
	}
	if len(corpus) == 0 {
		uc.fail(jobID, "No validated training data available")
		return
	}

	uc.mu.Lock()
	if job, ok := uc.jobs[jobID]; ok {
		job.Status = domain.JobTraining
		job.TotalDocuments = len(corpus)
	}
	uc.mu.Unlock()

	uc.simulateProgress(jobID, len(corpus))

	artifact, metrics, err := uc.trainer.Fit(ctx, corpus)
	if err != nil {
		uc.fail(jobID, err.Error())
		return
	}
	if err := uc.artifacts.Save(ctx, artifact); err != nil {
		uc.fail(jobID, fmt.Sprintf("save model artifact: %v", err))
		return
	}
	uc.model.Reload(ctx)

	uc.complete(jobID, metrics)
}

// simulateProgress advances the processed counter so pollers see movement
// during a run. The underlying trainer fits the whole corpus in one call.
func (uc *TrainingCoordinatorUseCase) simulateProgress(jobID string, total int) {
	start := time.Now()
	for i := 1; i <= total; i++ {
		if uc.stepDelay > 0 {
			time.Sleep(uc.stepDelay)
		}

		uc.mu.Lock()
		job, ok := uc.jobs[jobID]
		if !ok || job.Status.Terminal() {
			uc.mu.Unlock()
			return
		}
		job.ProcessedDocuments = i
		if i < total {
			perItem := time.Since(start).Seconds() / float64(i)
			remaining := perItem * float64(total-i)
			job.EstimatedSecondsRemaining = &remaining
		} else {
			job.EstimatedSecondsRemaining = nil
		}
		uc.mu.Unlock()
	}
}

func (uc *TrainingCoordinatorUseCase) transition(jobID string, status domain.JobStatus) {
	if uc.stepDelay > 0 {
		time.Sleep(uc.stepDelay)
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()

	job, ok := uc.jobs[jobID]
	if !ok || job.Status.Terminal() {
		return
	}
	job.Status = status
}

func (uc *TrainingCoordinatorUseCase) complete(jobID string, metrics domain.ModelMetrics) {
	uc.mu.Lock()
	job, ok := uc.jobs[jobID]
	if !ok || job.Status.Terminal() {
		uc.mu.Unlock()
		return
	}
	now := time.Now().UTC()
	job.Status = domain.JobCompleted
	job.EndTime = &now
	job.ProcessedDocuments = job.TotalDocuments
	job.EstimatedSecondsRemaining = nil
	job.Metrics = &metrics
	duration := now.Sub(job.StartTime)
	uc.mu.Unlock()

	slog.Info("training job completed", "job_id", jobID, "accuracy", metrics.Accuracy, "duration", duration)
	if uc.observer != nil {
		uc.observer(domain.JobCompleted, duration)
	}
}

func (uc *TrainingCoordinatorUseCase) fail(jobID, message string) {
	uc.mu.Lock()
	job, ok := uc.jobs[jobID]
	if !ok || job.Status.Terminal() {
		uc.mu.Unlock()
		return
	}
	now := time.Now().UTC()
	job.Status = domain.JobFailed
	job.ErrorMessage = message
	job.EndTime = &now
	// Remaining work is abandoned, not partially done.
	job.ProcessedDocuments = job.TotalDocuments
	job.EstimatedSecondsRemaining = nil
	duration := now.Sub(job.StartTime)
	uc.mu.Unlock()

	slog.Error("training job failed", "job_id", jobID, "error", message)
	if uc.observer != nil {
		uc.observer(domain.JobFailed, duration)
	}
}

func copyJob(job *domain.TrainingJob) domain.TrainingJob {
	out := *job
	if job.EndTime != nil {
		t := *job.EndTime
		out.EndTime = &t
	}
	if job.EstimatedSecondsRemaining != nil {
		v := *job.EstimatedSecondsRemaining
		out.EstimatedSecondsRemaining = &v
	}
	if job.Metrics != nil {
		m := *job.Metrics
		out.Metrics = &m
	}
	return out
}

// defaultModelMetrics is the static snapshot served before any run completes.
func defaultModelMetrics() domain.ModelMetrics {
	return domain.ModelMetrics{
		Accuracy:  0.942,
		Precision: 0.938,
		Recall:    0.946,
		F1Score:   0.942,
		PerClass: map[string]float64{
			"Invoice":        0.95,
			"Resume":         0.92,
			"Contract":       0.89,
			"Purchase Order": 0.94,
			"Agreement":      0.91,
			"Report":         0.88,
		},
	}
}
