package model

// All timing values are in 0.1ms ticks. Consumers divide by 10 exactly once,
// at presentation time.

// Sample is a single timestamped sensor reading. Time is relative to the
// owning note's Offset.
type Sample struct {
	Time  int64
	Value int
}

// Note is one key actuation recorded by the sensorized keyboard.
type Note struct {
	Offset   int64 // base time added to all sample timestamps
	KeyID    int   // 1-88
	Finger   int
	Velocity int
	UUID     string

	// Hammers holds key-strike velocity readings, time-ordered.
	Hammers []Sample
	// AfterTouch holds post-strike key-depth readings, time-ordered.
	AfterTouch []Sample
}

// KeyOn returns the absolute press timestamp: first after-touch sample plus
// Offset. Falls back to the first hammer sample when after-touch is empty.
func (n *Note) KeyOn() int64 {
	if len(n.AfterTouch) > 0 {
		return n.AfterTouch[0].Time + n.Offset
	}
	if len(n.Hammers) > 0 {
		return n.Hammers[0].Time + n.Offset
	}
	return n.Offset
}

// KeyOff returns the absolute release timestamp: last after-touch sample
// plus Offset, with the same fallback as KeyOn.
func (n *Note) KeyOff() int64 {
	if len(n.AfterTouch) > 0 {
		return n.AfterTouch[len(n.AfterTouch)-1].Time + n.Offset
	}
	if len(n.Hammers) > 0 {
		return n.Hammers[0].Time + n.Offset
	}
	return n.Offset
}

// Duration returns KeyOff - KeyOn.
func (n *Note) Duration() int64 {
	return n.KeyOff() - n.KeyOn()
}

// FirstHammerTime returns the absolute timestamp of the first hammer sample.
// ok is false when the note has no hammer data.
func (n *Note) FirstHammerTime() (t int64, ok bool) {
	if len(n.Hammers) == 0 {
		return 0, false
	}
	return n.Hammers[0].Time + n.Offset, true
}
