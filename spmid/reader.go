// Package spmid reads and writes SPMID files, the keyboard's recording
// format: a little-endian block container holding an INFO block of
// obfuscated key/value metadata and one NOTE block per track.
package spmid

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/XiaoShengSPiano/test-tools/model"
)

const (
	FileMagic = 0x44495053 // "SPID"
	InfoMagic = 0x4F464E49 // "INFO"
	NoteMagic = 0x45544F4E // "NOTE"
)

// stringMask obfuscates INFO block strings byte-wise.
const stringMask = 0xB6

// minNoteSize is the smallest possible encoded note: fixed-width fields,
// an empty uuid and no samples. Used to sanity-check claimed note counts.
const minNoteSize = 23

// File is a parsed SPMID container. Tracks[0] is the recorded performance,
// Tracks[1] the replayed one.
type File struct {
	Version   uint32
	Info      map[string]string
	TotalTime uint32
	Tracks    [][]model.Note
}

// TrackCount returns the number of NOTE blocks in the file.
func (f *File) TrackCount() int {
	return len(f.Tracks)
}

// Track returns the notes of one track.
func (f *File) Track(index int) ([]model.Note, error) {
	if index < 0 || index >= len(f.Tracks) {
		return nil, errors.Errorf("track index %d out of range [0, %d]", index, len(f.Tracks)-1)
	}
	return f.Tracks[index], nil
}

// ReadFile parses an SPMID file from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading spmid file")
	}
	return Read(data)
}

// Read parses SPMID data from memory.
func Read(data []byte) (*File, error) {
	d := &decoder{data: data}
	f := &File{Info: make(map[string]string)}

	magic, err := d.uint32()
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	if magic != FileMagic {
		return nil, errors.Errorf("bad file magic 0x%08X, want 0x%08X", magic, FileMagic)
	}
	if _, err := d.uint32(); err != nil { // crc, not verified
		return nil, errors.Wrap(err, "reading header")
	}
	if f.Version, err = d.uint32(); err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	blockCount, err := d.uint32()
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	// Counts come from the file; never trust them as allocation sizes.
	if remaining := len(d.data) - d.pos; int64(blockCount)*8 > int64(remaining) {
		return nil, errors.Errorf("block count %d exceeds remaining %d bytes", blockCount, remaining)
	}

	type blockRef struct{ offset, size uint32 }
	blocks := make([]blockRef, 0, blockCount)
	for i := uint32(0); i < blockCount; i++ {
		off, err := d.uint32()
		if err != nil {
			return nil, errors.Wrapf(err, "reading block table entry %d", i)
		}
		size, err := d.uint32()
		if err != nil {
			return nil, errors.Wrapf(err, "reading block table entry %d", i)
		}
		blocks = append(blocks, blockRef{off, size})
	}

	for i, b := range blocks {
		if err := d.seek(b.offset); err != nil {
			return nil, errors.Wrapf(err, "seeking block %d", i)
		}
		magic, err := d.uint32()
		if err != nil {
			return nil, errors.Wrapf(err, "reading block %d magic", i)
		}
		switch magic {
		case InfoMagic:
			if err := d.infoBlock(f); err != nil {
				return nil, errors.Wrapf(err, "parsing INFO block %d", i)
			}
		case NoteMagic:
			if err := d.noteBlock(f); err != nil {
				return nil, errors.Wrapf(err, "parsing NOTE block %d", i)
			}
		default:
			// Unknown blocks are skipped for forward compatibility.
		}
	}

	return f, nil
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) seek(offset uint32) error {
	if int(offset) > len(d.data) {
		return errors.Errorf("offset 0x%X beyond end of data (%d bytes)", offset, len(d.data))
	}
	d.pos = int(offset)
	return nil
}

func (d *decoder) bytes(n int) ([]byte, error) {
	if d.pos+n > len(d.data) {
		return nil, io.ErrUnexpectedEOF
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) uint8() (uint8, error) {
	b, err := d.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) uint16() (uint16, error) {
	b, err := d.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *decoder) uint32() (uint32, error) {
	b, err := d.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// cstring reads a NUL-terminated string, unmasking each byte when masked.
func (d *decoder) cstring(masked bool) (string, error) {
	var buf bytes.Buffer
	for {
		b, err := d.uint8()
		if err != nil {
			return "", errors.Wrap(err, "reading string")
		}
		if b == 0 {
			return buf.String(), nil
		}
		if masked {
			b ^= stringMask
		}
		buf.WriteByte(b)
	}
}

func (d *decoder) infoBlock(f *File) error {
	itemCount, err := d.uint32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < itemCount; i++ {
		key, err := d.cstring(true)
		if err != nil {
			return err
		}
		value, err := d.cstring(true)
		if err != nil {
			return err
		}
		f.Info[key] = value
	}
	return nil
}

func (d *decoder) noteBlock(f *File) error {
	totalTime, err := d.uint32()
	if err != nil {
		return err
	}
	if totalTime > f.TotalTime {
		f.TotalTime = totalTime
	}
	noteCount, err := d.uint32()
	if err != nil {
		return err
	}
	if remaining := len(d.data) - d.pos; int64(noteCount)*minNoteSize > int64(remaining) {
		return errors.Errorf("note count %d exceeds remaining %d bytes", noteCount, remaining)
	}

	notes := make([]model.Note, 0, noteCount)
	for i := uint32(0); i < noteCount; i++ {
		n, err := d.note()
		if err != nil {
			return errors.Wrapf(err, "note %d", i)
		}
		notes = append(notes, n)
	}
	f.Tracks = append(f.Tracks, notes)
	return nil
}

func (d *decoder) note() (model.Note, error) {
	var n model.Note

	if _, err := d.uint32(); err != nil { // leading offset, superseded below
		return n, err
	}
	id, err := d.uint8()
	if err != nil {
		return n, err
	}
	finger, err := d.uint8()
	if err != nil {
		return n, err
	}
	hammerCount, err := d.uint8()
	if err != nil {
		return n, err
	}
	if _, err := d.uint8(); err != nil { // reserved
		return n, err
	}
	uuid, err := d.cstring(false)
	if err != nil {
		return n, err
	}
	offset, err := d.uint32()
	if err != nil {
		return n, err
	}
	velocity, err := d.uint16()
	if err != nil {
		return n, err
	}

	n.KeyID = int(id)
	n.Finger = int(finger)
	n.UUID = uuid
	n.Offset = int64(offset)
	n.Velocity = int(velocity)

	for i := 0; i < int(hammerCount); i++ {
		ts, err := d.uint32()
		if err != nil {
			return n, err
		}
		val, err := d.uint16()
		if err != nil {
			return n, err
		}
		n.Hammers = append(n.Hammers, model.Sample{Time: int64(ts), Value: int(val)})
	}

	touchCount, err := d.uint32()
	if err != nil {
		return n, err
	}
	// After-touch timestamps are stored as deltas and accumulated.
	var cumulative int64
	for i := 0; i < int(touchCount); i++ {
		period, err := d.uint16()
		if err != nil {
			return n, err
		}
		val, err := d.uint16()
		if err != nil {
			return n, err
		}
		cumulative += int64(period)
		n.AfterTouch = append(n.AfterTouch, model.Sample{Time: cumulative, Value: int(val)})
	}

	// Trailing key-off sample, unused.
	if _, err := d.uint16(); err != nil {
		return n, err
	}
	if _, err := d.uint16(); err != nil {
		return n, err
	}

	return n, nil
}
