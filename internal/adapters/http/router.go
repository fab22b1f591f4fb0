package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"docclassifier/internal/core/ports"
	"docclassifier/internal/observability/metrics"
)

// Config tunes the traffic-control middleware on the API surface.
type Config struct {
	RateLimitRPS   int
	RateLimitBurst int
	MaxConcurrent  int
}

type Router struct {
	ingest      ports.DocumentIngestor
	reader      ports.DocumentReader
	samples     ports.TrainingDataManager
	coordinator ports.TrainingCoordinator
	qa          ports.DocumentQA

	serverMetrics *metrics.HTTPServerMetrics
	cfg           Config
}

func NewRouter(
	ingest ports.DocumentIngestor,
	reader ports.DocumentReader,
	samples ports.TrainingDataManager,
	coordinator ports.TrainingCoordinator,
	qa ports.DocumentQA,
	serverMetrics *metrics.HTTPServerMetrics,
	cfg Config,
) *Router {
	return &Router{
		ingest:        ingest,
		reader:        reader,
		samples:       samples,
		coordinator:   coordinator,
		qa:            qa,
		serverMetrics: serverMetrics,
		cfg:           cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.documents)
	mux.HandleFunc("/v1/documents/stats", rt.documentStats)
	mux.HandleFunc("/v1/documents/", rt.documentByID)
	mux.HandleFunc("/v1/training/samples", rt.trainingSamples)
	mux.HandleFunc("/v1/training/samples/", rt.validateSample)
	mux.HandleFunc("/v1/training/jobs", rt.startTrainingJob)
	mux.HandleFunc("/v1/training/jobs/", rt.trainingJobStatus)
	mux.HandleFunc("/v1/training/metrics", rt.trainingMetrics)
	mux.HandleFunc("/v1/qa/ask", rt.askQuestion)
	mux.HandleFunc("/v1/qa/chat", rt.chatAboutDocument)
	if rt.serverMetrics != nil {
		mux.Handle("/metrics", rt.serverMetrics.Handler())
	}

	var handler http.Handler = mux
	if rt.cfg.MaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.MaxConcurrent, backpressureWait)
	}
	if rt.cfg.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	}
	if rt.serverMetrics != nil {
		handler = rt.serverMetrics.Middleware("api", handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}

// pathSegment extracts the path element after prefix and before the optional
// trailing suffix, e.g. /v1/training/samples/{id}/validate.
func pathSegment(path, prefix string) string {
	rest := strings.TrimPrefix(path, prefix)
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}
