package nlu

import (
	"context"
	"errors"
)

// ErrModelUnavailable is returned when the classifier artifact could not be
// loaded or invoked. It is fatal for the request, not for the process.
var ErrModelUnavailable = errors.New("nlu model unavailable")

// Prediction is the raw output of one classifier invocation.
type Prediction struct {
	// Intent and Language are probability distributions over the label ids
	// of the mapping artifact.
	Intent   []float64 `json:"intent"`
	Language []float64 `json:"language"`
	// Next holds per-position next-token distributions over the vocabulary.
	// Only the chat-capable artifact produces it.
	Next [][]float64 `json:"next,omitempty"`
}

// Predictor is the opaque classifier artifact. Implementations must be safe
// for concurrent use.
type Predictor interface {
	Predict(ctx context.Context, encoded []int64) (*Prediction, error)
}

func argmax(dist []float64) (int64, float64) {
	best := 0
	for i, p := range dist {
		if p > dist[best] {
			best = i
		}
	}
	return int64(best), dist[best]
}
