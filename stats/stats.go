// Package stats computes timing-error statistics over matched note pairs.
//
// The estimators deliberately mix data sources: Mean/MSE and the sample
// statistics use signed key-on offsets, while MAE and the reported
// variance/std use absolute offsets. They are computed independently; none
// is derived from another.
package stats

import (
	"math"

	"github.com/XiaoShengSPiano/test-tools/model"
)

// Metrics bundles the delay-error estimators, all in 0.1ms ticks.
type Metrics struct {
	PairCount int

	// Mean is the signed average key-on offset; positive means the replay
	// lags the recording.
	Mean float64
	// MAE is the mean absolute key-on offset, the headline average delay.
	MAE float64
	// MSE is the mean of squared signed offsets.
	MSE float64

	// Variance is the population variance (denominator n) of the ABSOLUTE
	// offsets around MAE: the dispersion of the absolute error, not of the
	// signed offset.
	Variance float64
	Std      float64

	// SampleMean/SampleStd are the signed, n-1 statistics used by the
	// histogram normal fit.
	SampleMean float64
	SampleStd  float64

	MaxError float64 // largest signed offset
	MinError float64 // smallest signed offset
}

// Samples derives one OffsetSample per matched pair.
func Samples(pairs []model.MatchedPair) []model.OffsetSample {
	samples := make([]model.OffsetSample, 0, len(pairs))
	for _, p := range pairs {
		keyon := float64(p.Replay.KeyOn() - p.Record.KeyOn())
		samples = append(samples, model.OffsetSample{
			KeyID:          p.Record.KeyID,
			RecordIndex:    p.RecordIndex,
			ReplayIndex:    p.ReplayIndex,
			KeyOnOffset:    keyon,
			DurationOffset: float64(p.Replay.Duration() - p.Record.Duration()),
			AbsOffset:      math.Abs(keyon),
		})
	}
	return samples
}

// Calculate computes all estimators over the given samples. Empty input
// yields all-zero metrics.
func Calculate(samples []model.OffsetSample) Metrics {
	m := Metrics{PairCount: len(samples)}
	if len(samples) == 0 {
		return m
	}
	n := float64(len(samples))

	var sumSigned, sumAbs, sumSq float64
	m.MaxError = math.Inf(-1)
	m.MinError = math.Inf(1)
	for _, s := range samples {
		sumSigned += s.KeyOnOffset
		sumAbs += s.AbsOffset
		sumSq += s.KeyOnOffset * s.KeyOnOffset
		if s.KeyOnOffset > m.MaxError {
			m.MaxError = s.KeyOnOffset
		}
		if s.KeyOnOffset < m.MinError {
			m.MinError = s.KeyOnOffset
		}
	}
	m.Mean = sumSigned / n
	m.MAE = sumAbs / n
	m.MSE = sumSq / n

	var sumAbsDev float64
	for _, s := range samples {
		d := s.AbsOffset - m.MAE
		sumAbsDev += d * d
	}
	m.Variance = sumAbsDev / n
	m.Std = math.Sqrt(m.Variance)

	m.SampleMean = m.Mean
	if len(samples) > 1 {
		var sumDev float64
		for _, s := range samples {
			d := s.KeyOnOffset - m.SampleMean
			sumDev += d * d
		}
		m.SampleStd = math.Sqrt(sumDev / (n - 1))
	}

	return m
}

// GlobalDelay returns the whole-piece average delay, mean(|keyon offset|)
// over matched pairs, in 0.1ms ticks. Zero when there are no pairs.
func GlobalDelay(samples []model.OffsetSample) float64 {
	if len(samples) == 0 {
		return 0.0
	}
	var sum float64
	for _, s := range samples {
		sum += s.AbsOffset
	}
	return sum / float64(len(samples))
}
