// Package filter classifies raw notes as usable or not before alignment and
// matching. Checks run in strict priority order and short-circuit on the
// first failure, so every invalid note gets exactly one reason.
package filter

import (
	"github.com/XiaoShengSPiano/test-tools/constants"
	"github.com/XiaoShengSPiano/test-tools/model"
)

// Reason identifies why a note was rejected.
type Reason string

const (
	ReasonEmptyData   Reason = "empty_data"
	ReasonNonSounding Reason = "non_sounding"
	ReasonTooShort    Reason = "too_short"
)

// ThresholdChecker reports whether a hammer velocity on the given key is
// strong enough to produce sound. Implemented by the calibration service;
// nil disables the check.
type ThresholdChecker interface {
	Meets(keyID int, velocity int) bool
}

// SilentNote retains a non-sounding note for later fault reporting.
type SilentNote struct {
	Side  model.Side
	Index int
	Note  model.Note
}

// Counts summarizes one track's filter pass.
type Counts struct {
	Total   int
	Valid   int
	Invalid int
	Reasons map[Reason]int
}

// Filter screens notes of both tracks and retains non-sounding notes.
type Filter struct {
	checker ThresholdChecker
	checks  []check

	// Silent collects non-sounding notes from both tracks, in track order.
	Silent []SilentNote
}

type check struct {
	reason Reason
	failed func(n *model.Note) bool
}

func New(checker ThresholdChecker) *Filter {
	f := &Filter{checker: checker}
	// Ordered: priority is part of the contract. A note with zero hammer
	// velocity and a short duration is non-sounding, never too-short.
	f.checks = []check{
		{ReasonEmptyData, func(n *model.Note) bool {
			return len(n.AfterTouch) == 0 || len(n.Hammers) == 0
		}},
		{ReasonNonSounding, func(n *model.Note) bool {
			v := n.Hammers[0].Value
			if v == 0 {
				return true
			}
			return f.checker != nil && !f.checker.Meets(n.KeyID, v)
		}},
		{ReasonTooShort, func(n *model.Note) bool {
			return n.Duration() < constants.MinNoteDuration
		}},
	}
	return f
}

// Classify runs the ordered checks against a single note. reason is empty
// when the note is valid.
func (f *Filter) Classify(n *model.Note) (valid bool, reason Reason) {
	for _, c := range f.checks {
		if c.failed(n) {
			return false, c.reason
		}
	}
	return true, ""
}

// FilterTrack screens one track and returns the usable notes plus counts.
// Non-sounding notes are appended to f.Silent.
func (f *Filter) FilterTrack(notes []model.Note, side model.Side) ([]model.Note, Counts) {
	counts := Counts{Total: len(notes), Reasons: make(map[Reason]int)}
	var valid []model.Note
	for i, n := range notes {
		ok, reason := f.Classify(&n)
		if ok {
			valid = append(valid, n)
			continue
		}
		counts.Reasons[reason]++
		if reason == ReasonNonSounding {
			f.Silent = append(f.Silent, SilentNote{Side: side, Index: i, Note: n})
		}
	}
	counts.Valid = len(valid)
	counts.Invalid = counts.Total - counts.Valid
	return valid, counts
}

// FilterTracks screens the record and replay tracks in one pass.
func (f *Filter) FilterTracks(record, replay []model.Note) (validRecord, validReplay []model.Note, recordCounts, replayCounts Counts) {
	validRecord, recordCounts = f.FilterTrack(record, model.SideRecord)
	validReplay, replayCounts = f.FilterTrack(replay, model.SideReplay)
	return validRecord, validReplay, recordCounts, replayCounts
}
