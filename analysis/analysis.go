// Package analysis runs the full comparison pipeline over a record track
// and a replay track: validity filtering, optional time alignment, greedy
// matching, fault classification and delay statistics. Each stage consumes
// the previous stage's complete output; nothing is streamed or persisted.
package analysis

import (
	"github.com/XiaoShengSPiano/test-tools/align"
	"github.com/XiaoShengSPiano/test-tools/fault"
	"github.com/XiaoShengSPiano/test-tools/filter"
	"github.com/XiaoShengSPiano/test-tools/match"
	"github.com/XiaoShengSPiano/test-tools/model"
	"github.com/XiaoShengSPiano/test-tools/stats"
)

// Options configures one analysis run.
type Options struct {
	Match match.Config
	// Align enables the DTW clock-offset estimate and feeds it into the
	// matcher.
	Align bool
	// Checker is the optional calibration predicate used by the validity
	// filter's non-sounding check.
	Checker filter.ThresholdChecker
}

// Result is the complete output of one run. Degenerate inputs produce
// empty slices and zero metrics, never an error.
type Result struct {
	ValidRecord  []model.Note
	ValidReplay  []model.Note
	RecordCounts filter.Counts
	ReplayCounts filter.Counts

	GlobalOffset float64 // 0.1ms ticks, 0 when alignment is off

	Pairs    []model.MatchedPair
	Failures map[int]string // record index -> cause

	Drops       []model.FaultRecord
	Multis      []model.FaultRecord
	NonSounding []model.FaultRecord

	Samples     []model.OffsetSample
	Metrics     stats.Metrics
	GlobalDelay float64 // 0.1ms ticks
	Histogram   stats.Histogram
}

// Run executes the pipeline. Callers are responsible for supplying exactly
// one record track and one replay track; track-count validation happens at
// the boundary, not here.
func Run(record, replay []model.Note, opts Options) *Result {
	res := &Result{}

	f := filter.New(opts.Checker)
	res.ValidRecord, res.ValidReplay, res.RecordCounts, res.ReplayCounts = f.FilterTracks(record, replay)

	cfg := opts.Match
	if opts.Align {
		res.GlobalOffset = align.GlobalOffset(res.ValidRecord, res.ValidReplay)
		cfg.UseAlignment = true
	}

	res.Pairs, res.Failures = match.MatchAll(res.ValidRecord, res.ValidReplay, res.GlobalOffset, cfg)
	res.Drops, res.Multis, res.NonSounding = fault.Classify(res.ValidRecord, res.ValidReplay, res.Pairs, f.Silent)

	res.Samples = stats.Samples(res.Pairs)
	res.Metrics = stats.Calculate(res.Samples)
	res.GlobalDelay = stats.GlobalDelay(res.Samples)
	res.Histogram = stats.BuildHistogram(res.Samples)

	return res
}
