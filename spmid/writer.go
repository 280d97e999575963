package spmid

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/XiaoShengSPiano/test-tools/model"
)

// Write serializes a File to the SPMID layout: header, block table, one
// INFO block when metadata is present, one NOTE block per track. The crc
// field is written as zero.
func Write(f *File) ([]byte, error) {
	type block struct{ data []byte }
	var blocks []block

	if len(f.Info) > 0 {
		blocks = append(blocks, block{encodeInfo(f.Info)})
	}
	for _, track := range f.Tracks {
		data, err := encodeTrack(track, f.TotalTime)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block{data})
	}

	headerSize := 16 + 8*len(blocks)
	buf := new(bytes.Buffer)
	writeU32(buf, FileMagic)
	writeU32(buf, 0) // crc
	writeU32(buf, f.Version)
	writeU32(buf, uint32(len(blocks)))

	offset := headerSize
	for _, b := range blocks {
		writeU32(buf, uint32(offset))
		writeU32(buf, uint32(len(b.data)))
		offset += len(b.data)
	}
	for _, b := range blocks {
		buf.Write(b.data)
	}
	return buf.Bytes(), nil
}

// WriteFile serializes f to disk.
func WriteFile(path string, f *File) error {
	data, err := Write(f)
	if err != nil {
		return err
	}
	return errors.Wrap(os.WriteFile(path, data, 0666), "writing spmid file")
}

// TruncateToReplay trims both tracks to the replay track's extent: when the
// recording runs long past the replay, notes starting at or after the
// replay's last key-off are dropped from both tracks.
func TruncateToReplay(f *File) {
	if len(f.Tracks) < 2 || len(f.Tracks[1]) == 0 {
		return
	}

	var lastKeyOff int64
	for i := range f.Tracks[1] {
		if off := f.Tracks[1][i].KeyOff(); off > lastKeyOff {
			lastKeyOff = off
		}
	}
	if lastKeyOff <= 0 {
		return
	}

	for t := 0; t < 2; t++ {
		var kept []model.Note
		for _, n := range f.Tracks[t] {
			if n.KeyOn() < lastKeyOff {
				kept = append(kept, n)
			}
		}
		f.Tracks[t] = kept
	}
}

func encodeInfo(info map[string]string) []byte {
	buf := new(bytes.Buffer)
	writeU32(buf, InfoMagic)
	writeU32(buf, uint32(len(info)))
	for k, v := range info {
		writeMaskedString(buf, k)
		writeMaskedString(buf, v)
	}
	return buf.Bytes()
}

func encodeTrack(track []model.Note, totalTime uint32) ([]byte, error) {
	buf := new(bytes.Buffer)
	writeU32(buf, NoteMagic)
	writeU32(buf, totalTime)
	writeU32(buf, uint32(len(track)))

	for i := range track {
		if err := encodeNote(buf, &track[i]); err != nil {
			return nil, errors.Wrapf(err, "encoding note %d", i)
		}
	}
	return buf.Bytes(), nil
}

func encodeNote(buf *bytes.Buffer, n *model.Note) error {
	if len(n.Hammers) > 255 {
		return errors.Errorf("hammer count %d exceeds format limit", len(n.Hammers))
	}
	if n.Offset < 0 || n.Offset > math.MaxUint32 {
		return errors.Errorf("note offset %d outside format range", n.Offset)
	}

	writeU32(buf, uint32(n.Offset))
	buf.WriteByte(uint8(n.KeyID))
	buf.WriteByte(uint8(n.Finger))
	buf.WriteByte(uint8(len(n.Hammers)))
	buf.WriteByte(0) // reserved
	buf.WriteString(n.UUID)
	buf.WriteByte(0)
	writeU32(buf, uint32(n.Offset))
	writeU16(buf, uint16(n.Velocity))

	for _, s := range n.Hammers {
		writeU32(buf, uint32(s.Time))
		writeU16(buf, uint16(s.Value))
	}

	writeU32(buf, uint32(len(n.AfterTouch)))
	var prev int64
	for _, s := range n.AfterTouch {
		delta := s.Time - prev
		if delta < 0 || delta > math.MaxUint16 {
			return errors.Errorf("after-touch gap %d outside format range", delta)
		}
		writeU16(buf, uint16(delta))
		writeU16(buf, uint16(s.Value))
		prev = s.Time
	}

	// Trailing key-off sample; nothing reads it.
	writeU16(buf, 0)
	writeU16(buf, 0)
	return nil
}

func writeMaskedString(buf *bytes.Buffer, s string) {
	for i := 0; i < len(s); i++ {
		buf.WriteByte(s[i] ^ stringMask)
	}
	buf.WriteByte(0)
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
