package stats

import (
	"math"

	"github.com/XiaoShengSPiano/test-tools/model"
)

const curvePoints = 200

// Curve is a sampled normal-fit density curve.
type Curve struct {
	X []float64
	Y []float64
}

// Histogram describes the signed delay distribution in milliseconds.
// The bin data is implicit in Values; Curve is nil when the fit is
// degenerate (fewer than two samples or zero spread).
type Histogram struct {
	Values []float64 // signed key-on offsets, ms
	MeanMs float64   // sample mean
	StdMs  float64   // sample std, n-1
	Curve  *Curve
}

// BuildHistogram converts the signed key-on offsets to milliseconds and
// fits a normal density curve sampled at 200 evenly spaced points spanning
// the union of the data range and mean ± 3 std.
func BuildHistogram(samples []model.OffsetSample) Histogram {
	var h Histogram
	if len(samples) == 0 {
		return h
	}

	h.Values = make([]float64, 0, len(samples))
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	var sum float64
	for _, s := range samples {
		v := s.KeyOnOffset / 10.0
		h.Values = append(h.Values, v)
		sum += v
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	n := float64(len(h.Values))
	h.MeanMs = sum / n

	if len(h.Values) > 1 {
		var sumDev float64
		for _, v := range h.Values {
			d := v - h.MeanMs
			sumDev += d * d
		}
		h.StdMs = math.Sqrt(sumDev / (n - 1))
	}
	if h.StdMs == 0 {
		// All values identical; a density spike has no sensible fit.
		return h
	}

	span := 3 * h.StdMs
	xStart := math.Min(h.MeanMs-span, minVal)
	xEnd := math.Max(h.MeanMs+span, maxVal)
	step := (xEnd - xStart) / float64(curvePoints-1)

	curve := &Curve{
		X: make([]float64, curvePoints),
		Y: make([]float64, curvePoints),
	}
	norm := 1.0 / (h.StdMs * math.Sqrt(2*math.Pi))
	for i := 0; i < curvePoints; i++ {
		x := xStart + float64(i)*step
		z := (x - h.MeanMs) / h.StdMs
		curve.X[i] = x
		curve.Y[i] = norm * math.Exp(-0.5*z*z)
	}
	h.Curve = curve
	return h
}
