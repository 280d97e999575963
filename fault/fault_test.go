package fault

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/XiaoShengSPiano/test-tools/filter"
	"github.com/XiaoShengSPiano/test-tools/model"
)

func makeNote(keyID int, keyOn, duration int64) model.Note {
	return model.Note{
		Offset:     keyOn,
		KeyID:      keyID,
		Hammers:    []model.Sample{{Time: 0, Value: 100}},
		AfterTouch: []model.Sample{{Time: 0, Value: 100}, {Time: duration, Value: 100}},
	}
}

func TestClassifyIsEmptyWhenEverythingMatched(t *testing.T) {
	record := []model.Note{makeNote(40, 1000, 5000)}
	replay := []model.Note{makeNote(40, 1050, 5000)}
	pairs := []model.MatchedPair{{RecordIndex: 0, ReplayIndex: 0, Record: record[0], Replay: replay[0]}}

	drops, multis, nonSounding := Classify(record, replay, pairs, nil)

	assert := assert.New(t)
	assert.Equal(0, len(drops))
	assert.Equal(0, len(multis))
	assert.Equal(0, len(nonSounding))
}

func TestUnmatchedRecordNotesBecomeDrops(t *testing.T) {
	record := []model.Note{
		makeNote(40, 1000, 5000),
		makeNote(41, 2000, 5000),
	}
	replay := []model.Note{makeNote(40, 1050, 5000)}
	pairs := []model.MatchedPair{{RecordIndex: 0, ReplayIndex: 0, Record: record[0], Replay: replay[0]}}

	drops, multis, _ := Classify(record, replay, pairs, nil)

	assert := assert.New(t)
	assert.Equal(0, len(multis))
	assert.Equal(1, len(drops))
	assert.Equal(model.FaultDrop, drops[0].Kind)
	assert.Equal(model.SideRecord, drops[0].Side)
	assert.Equal(1, drops[0].Index)
	assert.Equal(41, drops[0].KeyID)
	assert.Equal(int64(2000), drops[0].KeyOn)
	assert.Equal(int64(7000), drops[0].KeyOff)
}

func TestUnmatchedReplayNotesBecomeMultis(t *testing.T) {
	record := []model.Note{makeNote(40, 1000, 5000)}
	replay := []model.Note{
		makeNote(40, 1050, 5000),
		makeNote(40, 3000, 5000),
	}
	pairs := []model.MatchedPair{{RecordIndex: 0, ReplayIndex: 0, Record: record[0], Replay: replay[0]}}

	drops, multis, _ := Classify(record, replay, pairs, nil)

	assert := assert.New(t)
	assert.Equal(0, len(drops))
	assert.Equal(1, len(multis))
	assert.Equal(model.FaultMulti, multis[0].Kind)
	assert.Equal(model.SideReplay, multis[0].Side)
	assert.Equal(1, multis[0].Index)
}

func TestSilentNotesBecomeNonSoundingFaults(t *testing.T) {
	silent := []filter.SilentNote{
		{Side: model.SideReplay, Index: 4, Note: makeNote(60, 9000, 5000)},
	}

	_, _, nonSounding := Classify(nil, nil, nil, silent)

	assert := assert.New(t)
	assert.Equal(1, len(nonSounding))
	assert.Equal(model.FaultNonSounding, nonSounding[0].Kind)
	assert.Equal(model.SideReplay, nonSounding[0].Side)
	assert.Equal(4, nonSounding[0].Index)
	assert.Equal(60, nonSounding[0].KeyID)
	assert.Equal(int64(9000), nonSounding[0].KeyOn)
}
