package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/XiaoShengSPiano/test-tools/model"
)

func makeNote(keyID, velocity int, duration int64) model.Note {
	return model.Note{
		KeyID:      keyID,
		Hammers:    []model.Sample{{Time: 0, Value: velocity}},
		AfterTouch: []model.Sample{{Time: 0, Value: 100}, {Time: duration, Value: 100}},
	}
}

type fixedChecker struct {
	meets bool
}

func (c fixedChecker) Meets(keyID, velocity int) bool { return c.meets }

func TestClassifiesCompleteNoteAsValid(t *testing.T) {
	n := makeNote(40, 120, 5000)
	valid, reason := New(nil).Classify(&n)

	assert := assert.New(t)
	assert.True(valid)
	assert.Equal(Reason(""), reason)
}

func TestRejectsNoteWithoutAfterTouch(t *testing.T) {
	n := model.Note{KeyID: 40, Hammers: []model.Sample{{Time: 0, Value: 120}}}
	valid, reason := New(nil).Classify(&n)

	assert := assert.New(t)
	assert.False(valid)
	assert.Equal(ReasonEmptyData, reason)
}

func TestRejectsNoteWithoutHammers(t *testing.T) {
	n := model.Note{KeyID: 40, AfterTouch: []model.Sample{{Time: 0, Value: 100}, {Time: 5000, Value: 100}}}
	valid, reason := New(nil).Classify(&n)

	assert := assert.New(t)
	assert.False(valid)
	assert.Equal(ReasonEmptyData, reason)
}

func TestRejectsZeroVelocityAsNonSoundingBeforeTooShort(t *testing.T) {
	// Zero velocity and too short at once: priority says non-sounding.
	n := makeNote(40, 0, 100)
	valid, reason := New(nil).Classify(&n)

	assert := assert.New(t)
	assert.False(valid)
	assert.Equal(ReasonNonSounding, reason)
}

func TestRejectsNoteBelowCalibrationThreshold(t *testing.T) {
	n := makeNote(40, 5, 5000)
	valid, reason := New(fixedChecker{meets: false}).Classify(&n)

	assert := assert.New(t)
	assert.False(valid)
	assert.Equal(ReasonNonSounding, reason)
}

func TestRejectsTooShortNote(t *testing.T) {
	n := makeNote(40, 120, 299)
	valid, reason := New(nil).Classify(&n)

	assert := assert.New(t)
	assert.False(valid)
	assert.Equal(ReasonTooShort, reason)
}

func TestAcceptsNoteAtMinimumDuration(t *testing.T) {
	n := makeNote(40, 120, 300)
	valid, _ := New(nil).Classify(&n)

	assert.True(t, valid)
}

func TestFilterTrackCountsAndRetainsSilentNotes(t *testing.T) {
	notes := []model.Note{
		makeNote(40, 120, 5000),
		makeNote(41, 0, 5000),
		makeNote(42, 120, 100),
		{KeyID: 43},
	}

	f := New(nil)
	valid, counts := f.FilterTrack(notes, model.SideRecord)

	assert := assert.New(t)
	assert.Equal(1, len(valid))
	assert.Equal(40, valid[0].KeyID)
	assert.Equal(4, counts.Total)
	assert.Equal(1, counts.Valid)
	assert.Equal(3, counts.Invalid)
	assert.Equal(1, counts.Reasons[ReasonNonSounding])
	assert.Equal(1, counts.Reasons[ReasonTooShort])
	assert.Equal(1, counts.Reasons[ReasonEmptyData])

	assert.Equal(1, len(f.Silent))
	assert.Equal(model.SideRecord, f.Silent[0].Side)
	assert.Equal(1, f.Silent[0].Index)
	assert.Equal(41, f.Silent[0].Note.KeyID)
}

func TestFilterTracksTagsSilentNotesPerSide(t *testing.T) {
	record := []model.Note{makeNote(40, 0, 5000)}
	replay := []model.Note{makeNote(50, 0, 5000), makeNote(51, 120, 5000)}

	f := New(nil)
	validRecord, validReplay, recordCounts, replayCounts := f.FilterTracks(record, replay)

	assert := assert.New(t)
	assert.Equal(0, len(validRecord))
	assert.Equal(1, len(validReplay))
	assert.Equal(1, recordCounts.Invalid)
	assert.Equal(1, replayCounts.Valid)

	assert.Equal(2, len(f.Silent))
	assert.Equal(model.SideRecord, f.Silent[0].Side)
	assert.Equal(model.SideReplay, f.Silent[1].Side)
	assert.Equal(0, f.Silent[1].Index)
}
