package httpadapter

import (
	"net/http"
	"strings"

	"docclassifier/internal/core/domain"
)

func (rt *Router) trainingSamples(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadTrainingSample(w, r)
	case http.MethodGet:
		rt.listTrainingSamples(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) uploadTrainingSample(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	sample, err := rt.samples.UploadSample(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		r.FormValue("label"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sample)
}

func (rt *Router) listTrainingSamples(w http.ResponseWriter, r *http.Request) {
	samples, err := rt.samples.ListSamples(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if samples == nil {
		samples = []domain.TrainingSample{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"samples": samples})
}

func (rt *Router) validateSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	if !strings.HasSuffix(r.URL.Path, "/validate") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	id := pathSegment(r.URL.Path, "/v1/training/samples/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sample id is required"})
		return
	}

	if err := rt.samples.ValidateSample(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) startTrainingJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	jobID, err := rt.coordinator.StartTraining(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

func (rt *Router) trainingJobStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	id := pathSegment(r.URL.Path, "/v1/training/jobs/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "job id is required"})
		return
	}

	job, err := rt.coordinator.JobStatus(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (rt *Router) trainingMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, rt.coordinator.ModelMetrics())
}
