// Package match pairs record-track notes with replay-track notes.
//
// Matching is greedy in record-index order: once a replay note is consumed
// it stays consumed, so an earlier record note wins a contested candidate
// even if a later one would fit better. That trades global optimality for
// determinism and O(R*C) cost.
package match

import (
	"fmt"
	"math"
	"sort"

	"github.com/XiaoShengSPiano/test-tools/model"
	"github.com/XiaoShengSPiano/test-tools/util"
)

// Policy selects how a candidate's timing error is computed.
type Policy int

const (
	// KeyOnOnly scores candidates by |replayKeyOn - recordKeyOn|.
	KeyOnOnly Policy = iota
	// WeightedKeyOnOff scores by 2*|keyon error| + 1*|keyoff error|; onset
	// timing matters more than duration for audible fidelity.
	WeightedKeyOnOff
)

// Config parameterizes the matcher. Thresholds are in 0.1ms ticks.
type Config struct {
	Policy        Policy
	BaseThreshold float64
	Normalizer    float64
	MinFactor     float64
	MaxFactor     float64

	// UseAlignment shifts record timestamps by the global offset before
	// scoring candidates.
	UseAlignment bool
}

// PrecisePreset matches on key-on only with a 30-50ms effective threshold.
func PrecisePreset() Config {
	return Config{Policy: KeyOnOnly, BaseThreshold: 500, Normalizer: 500, MinFactor: 0.6, MaxFactor: 1.0}
}

// ClassicPreset is the weighted keyon+keyoff configuration the production
// analyzer ran, with a 500-2000ms effective threshold.
func ClassicPreset() Config {
	return Config{Policy: WeightedKeyOnOff, BaseThreshold: 1000, Normalizer: 500, MinFactor: 0.5, MaxFactor: 2.0}
}

// Threshold returns the duration-adaptive error threshold for a record note.
func (c Config) Threshold(duration float64) float64 {
	factor := util.Clamp(duration/c.Normalizer, c.MinFactor, c.MaxFactor)
	return c.BaseThreshold * factor
}

func (c Config) errorOf(recordOn, recordOff, candOn, candOff float64) float64 {
	keyonErr := math.Abs(candOn - recordOn)
	if c.Policy == KeyOnOnly {
		return keyonErr
	}
	return keyonErr*2 + math.Abs(candOff-recordOff)
}

type candidate struct {
	index    int
	totalErr float64
}

// MatchAll pairs every record note with its best replay counterpart under a
// strict one-to-one constraint. failures maps each unmatched record index to
// a human-readable cause. globalOffset (0.1ms ticks) is applied to record
// timestamps when cfg.UseAlignment is set.
func MatchAll(record, replay []model.Note, globalOffset float64, cfg Config) (pairs []model.MatchedPair, failures map[int]string) {
	failures = make(map[int]string)
	used := make(map[int]bool, len(replay))

	shift := 0.0
	if cfg.UseAlignment {
		shift = globalOffset
	}

	for i := range record {
		rec := &record[i]
		recordOn := float64(rec.KeyOn()) + shift
		recordOff := float64(rec.KeyOff()) + shift

		// Candidates are every same-key replay note, consumed or not, so a
		// contested candidate is reported as consumed rather than missing.
		var candidates []candidate
		for j := range replay {
			if replay[j].KeyID != rec.KeyID || len(replay[j].Hammers) == 0 {
				continue
			}
			candOn := float64(replay[j].KeyOn())
			candOff := float64(replay[j].KeyOff())
			candidates = append(candidates, candidate{
				index:    j,
				totalErr: cfg.errorOf(recordOn, recordOff, candOn, candOff),
			})
		}
		if len(candidates) == 0 {
			failures[i] = fmt.Sprintf("no same-key candidates for key %d", rec.KeyID)
			continue
		}

		duration := recordOff - recordOn
		if duration <= 0 {
			failures[i] = fmt.Sprintf("invalid duration %.1f", duration)
			continue
		}
		threshold := cfg.Threshold(duration)

		var qualifying []candidate
		bestErr := math.Inf(1)
		for _, c := range candidates {
			if c.totalErr < bestErr {
				bestErr = c.totalErr
			}
			if c.totalErr <= threshold {
				qualifying = append(qualifying, c)
			}
		}
		if len(qualifying) == 0 {
			failures[i] = fmt.Sprintf("best error %.1f exceeds threshold %.1f", bestErr, threshold)
			continue
		}

		// Ascending error, ties broken by lower replay index for determinism.
		sort.Slice(qualifying, func(a, b int) bool {
			if qualifying[a].totalErr != qualifying[b].totalErr {
				return qualifying[a].totalErr < qualifying[b].totalErr
			}
			return qualifying[a].index < qualifying[b].index
		})

		matched := false
		for _, c := range qualifying {
			if used[c.index] {
				continue
			}
			used[c.index] = true
			pairs = append(pairs, model.MatchedPair{
				RecordIndex: i,
				ReplayIndex: c.index,
				Record:      *rec,
				Replay:      replay[c.index],
			})
			matched = true
			break
		}
		if !matched {
			failures[i] = fmt.Sprintf("all %d qualifying candidates already consumed (threshold %.1f)", len(qualifying), threshold)
		}
	}

	return pairs, failures
}
