package bayes

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jbrukh/bayesian"

	"docclassifier/internal/core/domain"
)

const maxAlternatives = 3

// Model wraps the currently loaded classifier. When no artifact has been
// trained yet it degrades to a fixed fallback result instead of failing, so
// uploads keep working before the first training run.
type Model struct {
	artifacts artifactSource

	mu       sync.RWMutex
	clf      *bayesian.Classifier
	labels   []string
	loadedFP string
}

// artifactSource is the slice of the artifact store the model needs.
type artifactSource interface {
	Load(ctx context.Context) ([]byte, error)
	Exists(ctx context.Context) bool
	Fingerprint(ctx context.Context) (string, bool)
}

// NewModel builds a model bound to the artifact store and attempts an initial
// load. A missing or corrupt artifact is not an error at construction time.
func NewModel(ctx context.Context, artifacts artifactSource) *Model {
	m := &Model{artifacts: artifacts}
	m.Reload(ctx)
	return m
}

// Classify scores text against the loaded model. Each call runs a fresh
// prediction; scores are softmax-normalized log-likelihoods, ranking scores
// rather than calibrated probabilities.
func (m *Model) Classify(ctx context.Context, text string) domain.ClassificationResult {
	start := time.Now()
	m.ensureFresh(ctx)

	m.mu.RLock()
	clf, labels := m.clf, m.labels
	m.mu.RUnlock()

	if clf == nil {
		return fallbackResult(start)
	}

	logs, inx, _ := clf.LogScores(Tokenize(text))
	scores := softmax(logs)

	predicted := labels[inx]
	alternatives := make([]domain.AlternativePrediction, 0, len(labels)-1)
	for i, label := range labels {
		if label == predicted {
			continue
		}
		alternatives = append(alternatives, domain.AlternativePrediction{
			Label:      label,
			Confidence: scores[i],
		})
	}
	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].Confidence > alternatives[j].Confidence
	})
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}

	return domain.ClassificationResult{
		PredictedLabel: predicted,
		Confidence:     scores[inx],
		Alternatives:   alternatives,
		ProcessingTime: time.Since(start),
	}
}

// IsTrained reports whether a model is loaded in memory and its backing
// artifact is still present. Both must hold: a deleted artifact makes a loaded
// model stale.
func (m *Model) IsTrained(ctx context.Context) bool {
	m.ensureFresh(ctx)

	m.mu.RLock()
	loaded := m.clf != nil
	m.mu.RUnlock()
	return loaded && m.artifacts.Exists(ctx)
}

// ensureFresh reloads when the persisted artifact changed since the last
// load. Classification in a separate worker process would otherwise keep
// serving the model it booted with after a training run publishes a new one.
func (m *Model) ensureFresh(ctx context.Context) {
	fp, ok := m.artifacts.Fingerprint(ctx)
	if !ok {
		return
	}

	m.mu.RLock()
	current := m.loadedFP
	m.mu.RUnlock()
	if fp != current {
		m.Reload(ctx)
	}
}

// Reload swaps in the persisted artifact. It never fails: a missing artifact
// leaves the current model untouched, a corrupt one unsets it so subsequent
// calls use the fallback path. Safe to call repeatedly from pollers.
func (m *Model) Reload(ctx context.Context) {
	fp, _ := m.artifacts.Fingerprint(ctx)

	data, err := m.artifacts.Load(ctx)
	if err != nil {
		if domain.IsKind(err, domain.ErrArtifactNotFound) {
			return
		}
		m.set(nil, nil, fp)
		return
	}

	clf, labels, err := deserialize(data)
	if err != nil {
		// Recording the fingerprint stops ensureFresh from re-parsing the
		// same corrupt artifact on every call.
		m.set(nil, nil, fp)
		return
	}

	m.set(clf, labels, fp)
}

func (m *Model) set(clf *bayesian.Classifier, labels []string, fp string) {
	m.mu.Lock()
	m.clf, m.labels, m.loadedFP = clf, labels, fp
	m.mu.Unlock()
}

// fallbackResult is the deterministic default used before any model exists.
func fallbackResult(start time.Time) domain.ClassificationResult {
	return domain.ClassificationResult{
		PredictedLabel: domain.FallbackLabel,
		Confidence:     0.5,
		Alternatives: []domain.AlternativePrediction{
			{Label: "Invoice", Confidence: 0.3},
			{Label: "Resume", Confidence: 0.2},
		},
		ProcessingTime: time.Since(start),
	}
}

// softmax converts log scores into a normalized ranking in (0,1]. Shifting by
// the max keeps the exponentials finite for long documents.
func softmax(logs []float64) []float64 {
	if len(logs) == 0 {
		return nil
	}
	maxLog := logs[0]
	for _, v := range logs[1:] {
		if v > maxLog {
			maxLog = v
		}
	}

	out := make([]float64, len(logs))
	var sum float64
	for i, v := range logs {
		out[i] = math.Exp(v - maxLog)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
