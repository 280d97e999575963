// Package align estimates the systemic clock shift between the record and
// replay tracks so the matcher can compensate for recording/playback latency.
//
// Small inputs get one global DTW alignment; large inputs are split into
// contiguous record segments that are aligned independently against a
// windowed slice of the replay track, with the per-segment medians reduced
// via median-of-medians. A failed segment is skipped, never fatal.
package align

import (
	"sort"
	"sync"

	"github.com/XiaoShengSPiano/test-tools/constants"
	"github.com/XiaoShengSPiano/test-tools/dtw"
	"github.com/XiaoShengSPiano/test-tools/model"
	"github.com/XiaoShengSPiano/test-tools/util"
)

const maxSegments = 5

// HammerTimes extracts the absolute first-hammer timestamp of every note
// that has hammer data, sorted ascending.
func HammerTimes(notes []model.Note) []float64 {
	var times []float64
	for i := range notes {
		if t, ok := notes[i].FirstHammerTime(); ok {
			times = append(times, float64(t))
		}
	}
	sort.Float64s(times)
	return times
}

// GlobalOffset estimates how far the replay clock is shifted relative to the
// record clock, in 0.1ms ticks. Positive means the replay lags. Inputs that
// cannot be aligned yield 0, never an error.
func GlobalOffset(record, replay []model.Note) float64 {
	recordTimes := HammerTimes(record)
	replayTimes := HammerTimes(replay)
	if len(recordTimes) == 0 || len(replayTimes) == 0 {
		return 0
	}

	total := len(recordTimes) + len(replayTimes)
	if total < constants.DTWStrategyThreshold {
		offset, ok := pathMedianOffset(recordTimes, replayTimes)
		if !ok {
			return 0
		}
		return offset
	}
	return segmentedOffset(recordTimes, replayTimes)
}

// segmentedOffset splits the record timeline into contiguous segments,
// aligns each against the replay notes falling inside a widened window
// around the segment, and aggregates the per-segment medians.
func segmentedOffset(recordTimes, replayTimes []float64) float64 {
	numSegments := util.Min(maxSegments, len(recordTimes)/2)
	if numSegments < 1 {
		numSegments = 1
	}

	results := make([]float64, numSegments)
	present := make([]bool, numSegments)

	var wg sync.WaitGroup
	for i := 0; i < numSegments; i++ {
		start := i * len(recordTimes) / numSegments
		end := (i + 1) * len(recordTimes) / numSegments
		segment := recordTimes[start:end]
		if len(segment) < 2 {
			continue
		}

		wg.Add(1)
		go func(i int, segment []float64) {
			defer wg.Done()
			if offset, ok := alignSegment(segment, replayTimes); ok {
				results[i] = offset
				present[i] = true
			}
		}(i, segment)
	}
	wg.Wait()

	var medians []float64
	for i, ok := range present {
		if ok {
			medians = append(medians, results[i])
		}
	}
	if len(medians) == 0 {
		return 0
	}
	return util.Median(medians)
}

func alignSegment(segment, replayTimes []float64) (float64, bool) {
	span := segment[len(segment)-1] - segment[0]
	windowStart := segment[0] - span*2
	windowEnd := segment[len(segment)-1] + span*2

	var window []float64
	for _, t := range replayTimes {
		if t >= windowStart && t <= windowEnd {
			window = append(window, t)
		}
	}
	if len(window) < 2 {
		return 0, false
	}
	return pathMedianOffset(segment, window)
}

// pathMedianOffset aligns the two timestamp sequences and returns the median
// of replay-minus-record differences along the warping path. Median, not
// mean: a few badly warped pairs must not skew the estimate.
func pathMedianOffset(recordTimes, replayTimes []float64) (float64, bool) {
	_, path, err := dtw.Align(recordTimes, replayTimes, nil)
	if err != nil {
		return 0, false
	}

	var offsets []float64
	for _, p := range path {
		i, j := p[0], p[1]
		if i >= 0 && i < len(recordTimes) && j >= 0 && j < len(replayTimes) {
			offsets = append(offsets, replayTimes[j]-recordTimes[i])
		}
	}
	if len(offsets) == 0 {
		return 0, false
	}
	return util.Median(offsets), true
}
