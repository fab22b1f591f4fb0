package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docclassifier/internal/core/domain"
)

type ingestorFake struct {
	doc *domain.Document
	err error

	filename string
	mimeType string
	size     int64
	content  []byte
}

func (f *ingestorFake) Upload(_ context.Context, filename, mimeType string, size int64, body io.Reader) (*domain.Document, error) {
	f.filename = filename
	f.mimeType = mimeType
	f.size = size
	f.content, _ = io.ReadAll(body)
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

type readerFake struct {
	doc     *domain.Document
	docs    []domain.Document
	stats   domain.DocumentStats
	content string
	err     error

	query     domain.ListQuery
	deletedID string
}

func (f *readerFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func (f *readerFake) List(_ context.Context, query domain.ListQuery) ([]domain.Document, error) {
	f.query = query
	return f.docs, f.err
}

func (f *readerFake) Stats(_ context.Context) (domain.DocumentStats, error) {
	return f.stats, f.err
}

func (f *readerFake) Delete(_ context.Context, id string) error {
	f.deletedID = id
	return f.err
}

func (f *readerFake) OpenContent(_ context.Context, id string) (*domain.Document, io.ReadCloser, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.doc, io.NopCloser(strings.NewReader(f.content)), nil
}

type samplesFake struct {
	sample  *domain.TrainingSample
	samples []domain.TrainingSample
	err     error

	label       string
	validatedID string
}

func (f *samplesFake) UploadSample(_ context.Context, filename, mimeType, label string, body io.Reader) (*domain.TrainingSample, error) {
	f.label = label
	io.Copy(io.Discard, body)
	if f.err != nil {
		return nil, f.err
	}
	return f.sample, nil
}

func (f *samplesFake) ListSamples(_ context.Context) ([]domain.TrainingSample, error) {
	return f.samples, f.err
}

func (f *samplesFake) ValidateSample(_ context.Context, id string) error {
	f.validatedID = id
	return f.err
}

type coordinatorFake struct {
	jobID    string
	job      domain.TrainingJob
	metrics  domain.ModelMetrics
	startErr error
	jobErr   error
}

func (f *coordinatorFake) StartTraining(context.Context) (string, error) {
	return f.jobID, f.startErr
}

func (f *coordinatorFake) JobStatus(string) (domain.TrainingJob, error) {
	return f.job, f.jobErr
}

func (f *coordinatorFake) IsTrainingInProgress() bool { return false }

func (f *coordinatorFake) ModelMetrics() domain.ModelMetrics { return f.metrics }

type qaFake struct {
	answer *domain.QAAnswer
	reply  *domain.ChatReply
	err    error

	question string
	history  []domain.ChatMessage
}

func (f *qaFake) Ask(_ context.Context, documentID, question string) (*domain.QAAnswer, error) {
	f.question = question
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

func (f *qaFake) Chat(_ context.Context, documentID, message string, history []domain.ChatMessage) (*domain.ChatReply, error) {
	f.history = history
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

type routerFixture struct {
	ingest      *ingestorFake
	reader      *readerFake
	samples     *samplesFake
	coordinator *coordinatorFake
	qa          *qaFake
	handler     http.Handler
}

func newRouterFixture(cfg Config) *routerFixture {
	fx := &routerFixture{
		ingest:      &ingestorFake{},
		reader:      &readerFake{},
		samples:     &samplesFake{},
		coordinator: &coordinatorFake{},
		qa:          &qaFake{},
	}
	fx.handler = NewRouter(fx.ingest, fx.reader, fx.samples, fx.coordinator, fx.qa, nil, cfg).Handler()
	return fx
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte(content))
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	return buf, mw.FormDataContentType()
}

func TestUploadDocumentReturnsAccepted(t *testing.T) {
	fx := newRouterFixture(Config{})
	fx.ingest.doc = &domain.Document{ID: "doc-1", Filename: "invoice.pdf", Status: domain.StatusUploaded}

	body, contentType := multipartBody(t, "invoice.pdf", "%PDF-1.4 data", nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body %s", rec.Code, rec.Body.String())
	}
	if fx.ingest.filename != "invoice.pdf" {
		t.Errorf("filename = %q", fx.ingest.filename)
	}
	if string(fx.ingest.content) != "%PDF-1.4 data" {
		t.Errorf("content = %q", fx.ingest.content)
	}
	var doc domain.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if doc.ID != "doc-1" {
		t.Errorf("doc id = %q", doc.ID)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header")
	}
}

func TestUploadDocumentWithoutFileReturnsBadRequest(t *testing.T) {
	fx := newRouterFixture(Config{})

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", strings.NewReader("not multipart"))
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUploadDocumentMapsUnsupportedFormat(t *testing.T) {
	fx := newRouterFixture(Config{})
	fx.ingest.err = domain.WrapError(domain.ErrUnsupportedFormat, "upload", io.ErrUnexpectedEOF)

	body, contentType := multipartBody(t, "image.png", "binary", nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", rec.Code)
	}
}

func TestListDocumentsParsesQueryParams(t *testing.T) {
	fx := newRouterFixture(Config{})
	fx.reader.docs = []domain.Document{{ID: "doc-1"}, {ID: "doc-2"}}

	req := httptest.NewRequest(http.MethodGet, "/v1/documents?search=report&type=Invoice&page=2&page_size=5", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	q := fx.reader.query
	if q.SearchTerm != "report" || q.DocumentType != "Invoice" || q.Page != 2 || q.PageSize != 5 {
		t.Errorf("query = %+v", q)
	}
	var payload struct {
		Documents []domain.Document `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Documents) != 2 {
		t.Errorf("documents = %d, want 2", len(payload.Documents))
	}
}

func TestGetDocumentNotFoundMapsTo404(t *testing.T) {
	fx := newRouterFixture(Config{})
	fx.reader.err = domain.WrapError(domain.ErrDocumentNotFound, "get document", domain.ErrDocumentNotFound)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteDocumentReturnsNoContent(t *testing.T) {
	fx := newRouterFixture(Config{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/documents/doc-1", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if fx.reader.deletedID != "doc-1" {
		t.Errorf("deleted id = %q", fx.reader.deletedID)
	}
}

func TestDownloadDocumentSetsHeaders(t *testing.T) {
	fx := newRouterFixture(Config{})
	fx.reader.doc = &domain.Document{ID: "doc-1", Filename: "report.pdf", MimeType: "application/pdf", FileSize: 12}
	fx.reader.content = "file content"

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1/download", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="report.pdf"` {
		t.Errorf("content disposition = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("content type = %q", got)
	}
	if rec.Body.String() != "file content" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestUploadTrainingSamplePassesLabel(t *testing.T) {
	fx := newRouterFixture(Config{})
	fx.samples.sample = &domain.TrainingSample{ID: "sample-1", Label: "Invoice", Status: domain.SamplePending}

	body, contentType := multipartBody(t, "invoice.txt", "total due", map[string]string{"label": "Invoice"})
	req := httptest.NewRequest(http.MethodPost, "/v1/training/samples", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	if fx.samples.label != "Invoice" {
		t.Errorf("label = %q", fx.samples.label)
	}
}

func TestValidateSampleRequiresValidateSuffix(t *testing.T) {
	fx := newRouterFixture(Config{})

	req := httptest.NewRequest(http.MethodPut, "/v1/training/samples/sample-1/archive", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestValidateSamplePassesID(t *testing.T) {
	fx := newRouterFixture(Config{})

	req := httptest.NewRequest(http.MethodPut, "/v1/training/samples/sample-1/validate", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if fx.samples.validatedID != "sample-1" {
		t.Errorf("validated id = %q", fx.samples.validatedID)
	}
}

func TestStartTrainingJobReturnsAccepted(t *testing.T) {
	fx := newRouterFixture(Config{})
	fx.coordinator.jobID = "job-1"

	req := httptest.NewRequest(http.MethodPost, "/v1/training/jobs", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["job_id"] != "job-1" {
		t.Errorf("job_id = %q", payload["job_id"])
	}
}

func TestStartTrainingJobConflictWhileRunning(t *testing.T) {
	fx := newRouterFixture(Config{})
	fx.coordinator.startErr = domain.WrapError(domain.ErrTrainingInProgress, "start training", domain.ErrTrainingInProgress)

	req := httptest.NewRequest(http.MethodPost, "/v1/training/jobs", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestTrainingJobStatusReturnsJob(t *testing.T) {
	fx := newRouterFixture(Config{})
	fx.coordinator.job = domain.TrainingJob{JobID: "job-1", Status: domain.JobTraining, TotalDocuments: 4}

	req := httptest.NewRequest(http.MethodGet, "/v1/training/jobs/job-1", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var job domain.TrainingJob
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if job.Status != domain.JobTraining || job.TotalDocuments != 4 {
		t.Errorf("job = %+v", job)
	}
}

func TestTrainingMetricsEndpoint(t *testing.T) {
	fx := newRouterFixture(Config{})
	fx.coordinator.metrics = domain.ModelMetrics{Accuracy: 0.9, F1Score: 0.88}

	req := httptest.NewRequest(http.MethodGet, "/v1/training/metrics", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var m domain.ModelMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if m.Accuracy != 0.9 {
		t.Errorf("accuracy = %v", m.Accuracy)
	}
}

func TestAskQuestionReturnsAnswer(t *testing.T) {
	fx := newRouterFixture(Config{})
	fx.qa.answer = &domain.QAAnswer{DocumentID: "doc-1", Answer: "The total is $100.", Confidence: 0.9, Timestamp: time.Now()}

	payload := `{"document_id":"doc-1","question":"What is the total?"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/qa/ask", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if fx.qa.question != "What is the total?" {
		t.Errorf("question = %q", fx.qa.question)
	}
}

func TestChatForwardsHistory(t *testing.T) {
	fx := newRouterFixture(Config{})
	fx.qa.reply = &domain.ChatReply{DocumentID: "doc-1", Message: "Sure.", FromAssistant: true}

	payload := `{"document_id":"doc-1","message":"More detail?","conversation_history":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/qa/chat", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(fx.qa.history) != 2 || fx.qa.history[1].Role != "assistant" {
		t.Errorf("history = %+v", fx.qa.history)
	}
}

func TestAskQuestionInvalidJSONReturnsBadRequest(t *testing.T) {
	fx := newRouterFixture(Config{})

	req := httptest.NewRequest(http.MethodPost, "/v1/qa/ask", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	fx := newRouterFixture(Config{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMethodNotAllowedOnDocuments(t *testing.T) {
	fx := newRouterFixture(Config{})

	req := httptest.NewRequest(http.MethodPut, "/v1/documents", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
