package model

// Side identifies which track a note came from.
type Side string

const (
	SideRecord Side = "record"
	SideReplay Side = "replay"
)

// FaultKind classifies an unmatched or non-sounding note.
type FaultKind string

const (
	// FaultDrop marks a record note with no counterpart in the replay track.
	FaultDrop FaultKind = "drop"
	// FaultMulti marks a replay note with no counterpart in the record track.
	FaultMulti FaultKind = "multi"
	// FaultNonSounding marks a note whose strike produced no effective sound.
	FaultNonSounding FaultKind = "non-sounding"
)

// FaultRecord carries enough context about a faulty note for reporting.
type FaultRecord struct {
	Kind   FaultKind
	Side   Side
	Index  int // index in the originating track
	KeyID  int
	KeyOn  int64
	KeyOff int64
}
