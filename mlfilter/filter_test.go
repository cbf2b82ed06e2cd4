package mlfilter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxsentinel/indicators"
)

type stubScorer struct {
	prob float64
	err  error
}

func (s stubScorer) Score([]float32) (float64, error) { return s.prob, s.err }
func (s stubScorer) Close() error                     { return nil }

func TestApproveAboveThreshold(t *testing.T) {
	f := NewFilter(stubScorer{prob: 0.72}, 0.60)
	prob, ok, err := f.Approve(make([]float32, FeatureCount))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 0.72, prob, 1e-9)
}

func TestApproveBelowThresholdDiscards(t *testing.T) {
	f := NewFilter(stubScorer{prob: 0.55}, 0.60)
	prob, ok, err := f.Approve(make([]float32, FeatureCount))
	require.NoError(t, err)
	assert.False(t, ok, "0.55 confidence must not clear a 0.60 threshold")
	assert.InDelta(t, 0.55, prob, 1e-9)
}

func TestApproveExactThresholdDiscards(t *testing.T) {
	f := NewFilter(stubScorer{prob: 0.60}, 0.60)
	_, ok, err := f.Approve(make([]float32, FeatureCount))
	require.NoError(t, err)
	assert.False(t, ok, "threshold must be exceeded, not met")
}

func TestApproveScorerError(t *testing.T) {
	f := NewFilter(stubScorer{err: errors.New("session closed")}, 0.60)
	_, ok, err := f.Approve(make([]float32, FeatureCount))
	require.Error(t, err)
	assert.False(t, ok)
}

func TestApproveWrongWidth(t *testing.T) {
	f := NewFilter(stubScorer{prob: 0.9}, 0.60)
	_, _, err := f.Approve([]float32{1, 2})
	require.Error(t, err)
}

func TestFeaturesOrderAndCompleteness(t *testing.T) {
	snap := indicators.Snapshot{
		indicators.KeyRSI:      55.2,
		indicators.KeyMACDHist: 0.00021,
		indicators.KeyADX:      26.8,
		indicators.KeyATRNorm:  0.0011,
	}
	feats, err := Features(snap)
	require.NoError(t, err)
	require.Len(t, feats, FeatureCount)
	assert.InDelta(t, 55.2, float64(feats[0]), 1e-4)
	assert.InDelta(t, 0.00021, float64(feats[1]), 1e-7)
	assert.InDelta(t, 26.8, float64(feats[2]), 1e-4)
	assert.InDelta(t, 0.0011, float64(feats[3]), 1e-7)
}

func TestFeaturesUndefinedInput(t *testing.T) {
	snap := indicators.Snapshot{
		indicators.KeyRSI:      55.2,
		indicators.KeyMACDHist: 0.00021,
		indicators.KeyADX:      26.8,
		// atr_norm missing
	}
	_, err := Features(snap)
	require.Error(t, err)
}
