// Package mlfilter gates candidate signals through a pre-trained binary
// classifier exported to ONNX. The model scores the probability that a
// candidate resolves favorably; candidates below the configured confidence
// threshold are discarded before any sizing or execution happens.
package mlfilter

import (
	"fmt"

	"fxsentinel/indicators"
)

// FeatureCount is the width of the model's input vector.
const FeatureCount = 4

// Scorer produces the favorable-outcome probability for one feature vector.
type Scorer interface {
	Score(features []float32) (float64, error)
	Close() error
}

// Filter applies the confidence threshold on top of a Scorer.
type Filter struct {
	scorer    Scorer
	threshold float64
}

// NewFilter wraps scorer with the accept threshold.
func NewFilter(scorer Scorer, threshold float64) *Filter {
	return &Filter{scorer: scorer, threshold: threshold}
}

// Threshold returns the configured acceptance threshold.
func (f *Filter) Threshold() float64 { return f.threshold }

// Approve scores the features and reports whether the candidate clears the
// threshold. The probability is returned either way for logging.
func (f *Filter) Approve(features []float32) (prob float64, ok bool, err error) {
	if len(features) != FeatureCount {
		return 0, false, fmt.Errorf("expected %d features, got %d", FeatureCount, len(features))
	}
	prob, err = f.scorer.Score(features)
	if err != nil {
		return 0, false, fmt.Errorf("score candidate: %w", err)
	}
	return prob, prob > f.threshold, nil
}

// Close releases the underlying scorer.
func (f *Filter) Close() error { return f.scorer.Close() }

// Features assembles the model's input vector from a snapshot in training
// column order: RSI, MACD histogram, ADX, ATR normalized by price. Any
// undefined input disqualifies the candidate.
func Features(snap indicators.Snapshot) ([]float32, error) {
	out := make([]float32, 0, FeatureCount)
	for _, key := range []string{
		indicators.KeyRSI,
		indicators.KeyMACDHist,
		indicators.KeyADX,
		indicators.KeyATRNorm,
	} {
		v, ok := snap.Get(key)
		if !ok {
			return nil, fmt.Errorf("feature %s undefined", key)
		}
		out = append(out, float32(v))
	}
	return out, nil
}
