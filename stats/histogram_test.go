package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildHistogramIsEmptyForNoSamples(t *testing.T) {
	h := BuildHistogram(nil)

	assert := assert.New(t)
	assert.Equal(0, len(h.Values))
	assert.Nil(h.Curve)
}

func TestBuildHistogramConvertsTicksToMilliseconds(t *testing.T) {
	h := BuildHistogram(offsetSamples(100, 200, 300))

	assert := assert.New(t)
	assert.Equal([]float64{10, 20, 30}, h.Values)
	assert.InDelta(20.0, h.MeanMs, 1e-9)
	assert.InDelta(10.0, h.StdMs, 1e-9)
}

func TestBuildHistogramSamplesNormalCurveAt200Points(t *testing.T) {
	h := BuildHistogram(offsetSamples(100, 200, 300))

	assert := assert.New(t)
	assert.NotNil(h.Curve)
	assert.Equal(200, len(h.Curve.X))
	assert.Equal(200, len(h.Curve.Y))

	// x range is the union of the data range and mean +- 3 std
	assert.InDelta(-10.0, h.Curve.X[0], 1e-9)
	assert.InDelta(50.0, h.Curve.X[199], 1e-9)

	// density peaks near the mean at 1/(std*sqrt(2*pi))
	peak := 0.0
	for _, y := range h.Curve.Y {
		if y > peak {
			peak = y
		}
	}
	assert.InDelta(0.0398942, peak, 1e-4)
}

func TestBuildHistogramSkipsCurveForZeroSpread(t *testing.T) {
	assert := assert.New(t)

	h := BuildHistogram(offsetSamples(150, 150, 150))
	assert.Equal([]float64{15, 15, 15}, h.Values)
	assert.Equal(0.0, h.StdMs)
	assert.Nil(h.Curve)

	h = BuildHistogram(offsetSamples(150))
	assert.Nil(h.Curve)
}

func TestBuildHistogramWidensRangeToCoverOutliers(t *testing.T) {
	// 15 zeros plus one 160ms outlier: mean 10, std 40, so the outlier
	// sits beyond mean + 3 std and must stretch the x range
	ticks := make([]float64, 15, 16)
	ticks = append(ticks, 1600)
	h := BuildHistogram(offsetSamples(ticks...))

	assert := assert.New(t)
	assert.NotNil(h.Curve)
	assert.InDelta(-110.0, h.Curve.X[0], 1e-9)
	assert.InDelta(160.0, h.Curve.X[199], 1e-9)
}
