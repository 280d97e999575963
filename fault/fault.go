// Package fault partitions the notes left over after matching into drop
// (missing in replay), multi (extra in replay) and non-sounding faults.
// It is a pure set-difference over the matched indices plus data shaping;
// no extra heuristics live here.
package fault

import (
	"github.com/XiaoShengSPiano/test-tools/filter"
	"github.com/XiaoShengSPiano/test-tools/model"
)

// Classify builds the three fault lists from the valid tracks, the matched
// pairs, and the silent notes retained by the validity filter.
func Classify(record, replay []model.Note, pairs []model.MatchedPair, silent []filter.SilentNote) (drops, multis, nonSounding []model.FaultRecord) {
	matchedRecord := make(map[int]bool, len(pairs))
	matchedReplay := make(map[int]bool, len(pairs))
	for _, p := range pairs {
		matchedRecord[p.RecordIndex] = true
		matchedReplay[p.ReplayIndex] = true
	}

	for i := range record {
		if !matchedRecord[i] {
			drops = append(drops, newFault(model.FaultDrop, model.SideRecord, i, &record[i]))
		}
	}
	for i := range replay {
		if !matchedReplay[i] {
			multis = append(multis, newFault(model.FaultMulti, model.SideReplay, i, &replay[i]))
		}
	}

	// Non-sounding notes never reached matching; they are materialized
	// straight from the filter's side list, not recomputed.
	for _, s := range silent {
		n := s.Note
		nonSounding = append(nonSounding, newFault(model.FaultNonSounding, s.Side, s.Index, &n))
	}

	return drops, multis, nonSounding
}

func newFault(kind model.FaultKind, side model.Side, index int, n *model.Note) model.FaultRecord {
	return model.FaultRecord{
		Kind:   kind,
		Side:   side,
		Index:  index,
		KeyID:  n.KeyID,
		KeyOn:  n.KeyOn(),
		KeyOff: n.KeyOff(),
	}
}
