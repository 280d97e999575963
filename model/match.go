package model

// MatchedPair links a record-track note to its replay-track counterpart.
// Notes are stored by value; a pair never aliases the source slices.
type MatchedPair struct {
	RecordIndex int
	ReplayIndex int
	Record      Note
	Replay      Note
}

// OffsetSample holds the per-pair timing offsets consumed by the
// statistics layer. Signed values are replay minus record.
type OffsetSample struct {
	KeyID          int
	RecordIndex    int
	ReplayIndex    int
	KeyOnOffset    float64 // signed
	DurationOffset float64 // signed
	AbsOffset      float64 // |KeyOnOffset|
}
