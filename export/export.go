// Package export converts SPMID tracks to standard MIDI files so replays
// can be auditioned in ordinary sequencers.
package export

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/XiaoShengSPiano/test-tools/model"
	"github.com/XiaoShengSPiano/test-tools/spmid"
	"github.com/XiaoShengSPiano/test-tools/util"
)

// ticksPerQuarter of 500 makes one tick one millisecond at the default
// 120bpm tempo, so SPMID ticks divide by 10 straight into deltas.
const ticksPerQuarter = 500

// keyID 1-88 maps onto the piano range starting at MIDI note 21 (A0).
const midiKeyBase = 20

type midiEvent struct {
	timeMs int64
	msg    midi.Message
}

// ToSMF builds a standard MIDI file with one SMF track per SPMID track.
func ToSMF(f *spmid.File) (*smf.SMF, error) {
	if len(f.Tracks) == 0 {
		return nil, errors.New("spmid file has no tracks")
	}

	var res smf.SMF
	res.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	for _, track := range f.Tracks {
		res.Tracks = append(res.Tracks, trackToSMF(track))
	}
	return &res, nil
}

func trackToSMF(notes []model.Note) smf.Track {
	maxVelocity := 1
	for i := range notes {
		maxVelocity = util.Max(maxVelocity, notes[i].Velocity)
	}

	var events []midiEvent
	for i := range notes {
		n := &notes[i]
		key := uint8(util.Clamp(n.KeyID+midiKeyBase, 21, 108))
		vel := uint8(util.Clamp(n.Velocity*127/maxVelocity, 1, 127))
		events = append(events, midiEvent{n.KeyOn() / 10, midi.NoteOn(0, key, vel)})
		events = append(events, midiEvent{n.KeyOff() / 10, midi.NoteOff(0, key)})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].timeMs < events[j].timeMs
	})

	var tr smf.Track
	var prev int64
	for _, evt := range events {
		tr.Add(uint32(evt.timeMs-prev), evt.msg)
		prev = evt.timeMs
	}
	tr.Close(0)
	return tr
}

// WriteFile converts an SPMID file and writes the result to path.
func WriteFile(f *spmid.File, path string) error {
	s, err := ToSMF(f)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating midi file")
	}
	defer out.Close()

	if _, err := s.WriteTo(out); err != nil {
		return errors.Wrap(err, "writing midi file")
	}
	return nil
}
