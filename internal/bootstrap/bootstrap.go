package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"docclassifier/internal/config"
	"docclassifier/internal/core/domain"
	"docclassifier/internal/core/ports"
	"docclassifier/internal/core/usecase"
	"docclassifier/internal/infrastructure/artifact/localfs"
	"docclassifier/internal/infrastructure/extractor"
	"docclassifier/internal/infrastructure/llm/openai"
	"docclassifier/internal/infrastructure/ml/bayes"
	"docclassifier/internal/infrastructure/queue/nats"
	"docclassifier/internal/infrastructure/repository/postgres"
	"docclassifier/internal/infrastructure/resilience"
	storagefs "docclassifier/internal/infrastructure/storage/localfs"
	"docclassifier/internal/infrastructure/storage/miniostore"
	"docclassifier/internal/observability/metrics"
)

// App holds the wired dependencies of one binary. NewAPI and NewWorker share
// the same infrastructure core but differ in which use cases they assemble.
type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Repo  ports.DocumentRepository

	IngestUC      ports.DocumentIngestor
	ReaderUC      ports.DocumentReader
	SamplesUC     ports.TrainingDataManager
	CoordinatorUC ports.TrainingCoordinator
	QAUC          ports.DocumentQA
	ProcessUC     ports.DocumentProcessor

	ServerMetrics *metrics.HTTPServerMetrics
	WorkerMetrics *metrics.WorkerMetrics

	closeFn func()
}

type core struct {
	db        *sql.DB
	repo      *postgres.DocumentRepository
	samples   *postgres.SampleRepository
	storage   ports.ObjectStorage
	queue     *nats.Queue
	extractor ports.TextExtractor
	artifacts ports.ArtifactStore
	model     ports.ClassifierModel
}

func newCore(ctx context.Context, cfg config.Config) (*core, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	sampleRepo := postgres.NewSampleRepository(db)

	storage, err := newObjectStorage(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	artifacts, err := localfs.New(cfg.ModelArtifactPath)
	if err != nil {
		queue.Close()
		db.Close()
		return nil, fmt.Errorf("init artifact store: %w", err)
	}

	return &core{
		db:        db,
		repo:      repo,
		samples:   sampleRepo,
		storage:   storage,
		queue:     queue,
		extractor: extractor.New(storage),
		artifacts: artifacts,
		model:     bayes.NewModel(ctx, artifacts),
	}, nil
}

func newObjectStorage(cfg config.Config) (ports.ObjectStorage, error) {
	if cfg.StorageBackend == "minio" {
		return miniostore.New(cfg.MinIO())
	}
	return storagefs.New(cfg.StoragePath)
}

// NewAPI wires the HTTP-facing application: upload, listing, training and QA.
func NewAPI(ctx context.Context, cfg config.Config) (*App, error) {
	c, err := newCore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	serverMetrics := metrics.NewHTTPServerMetrics("api")

	trainingObserver := func(status domain.JobStatus, duration time.Duration) {
		serverMetrics.RecordTrainingJob("api", string(status), duration)
	}
	coordinator := usecase.NewTrainingCoordinatorUseCase(
		c.samples,
		bayes.NewTrainer(),
		c.artifacts,
		c.model,
		cfg.TrainingStepDelay,
		trainingObserver,
	)

	llmClient := openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel).
		WithExecutor(resilience.NewExecutor(resilience.DefaultConfig()))
	answerer := openai.NewAnswerer(llmClient)

	return &App{
		Config: cfg,
		Queue:  c.queue,
		Repo:   c.repo,

		IngestUC:      usecase.NewIngestDocumentUseCase(c.repo, c.storage, c.queue),
		ReaderUC:      usecase.NewDocumentReaderUseCase(c.repo, c.storage),
		SamplesUC:     usecase.NewTrainingDataUseCase(c.samples, c.storage, c.extractor),
		CoordinatorUC: coordinator,
		QAUC:          usecase.NewDocumentQAUseCase(c.repo, answerer),

		ServerMetrics: serverMetrics,

		closeFn: func() {
			c.queue.Close()
			_ = c.db.Close()
		},
	}, nil
}

// NewWorker wires the queue consumer: extract, classify, persist.
func NewWorker(ctx context.Context, cfg config.Config) (*App, error) {
	c, err := newCore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	workerMetrics := metrics.NewWorkerMetrics("worker")

	classificationObserver := func(result domain.ClassificationResult, fallback bool) {
		workerMetrics.RecordClassification("worker", result.PredictedLabel, result.Confidence, fallback)
	}
	classifyUC := usecase.NewClassifyDocumentUseCase(c.model, classificationObserver)

	return &App{
		Config: cfg,
		Queue:  c.queue,
		Repo:   c.repo,

		ProcessUC: usecase.NewProcessDocumentUseCase(c.repo, c.extractor, classifyUC),

		WorkerMetrics: workerMetrics,

		closeFn: func() {
			c.queue.Close()
			_ = c.db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
