package model

import (
	"fmt"
	"sort"
)

// Note is a single played note with resolved onset and offset. Voice is the
// id of the voice the note belongs to (the MIDI channel when loaded from a
// file). Notes are plain values; two notes are the same note iff all fields
// are equal.
type Note struct {
	Pitch      uint8 `json:"pitch"`
	Velocity   uint8 `json:"velocity"`
	OnsetTime  int64 `json:"onset_time"`
	OnsetTick  int64 `json:"onset_tick"`
	OffsetTime int64 `json:"offset_time"`
	OffsetTick int64 `json:"offset_tick"`
	Voice      int   `json:"voice"`
}

func (n Note) DurationTime() int64 {
	return n.OffsetTime - n.OnsetTime
}

// Compare orders notes by onset tick, then offset tick, pitch, velocity and
// voice. It returns 0 only for identical notes.
func (n Note) Compare(o Note) int {
	if n.OnsetTick != o.OnsetTick {
		if n.OnsetTick < o.OnsetTick {
			return -1
		}
		return 1
	}
	if n.OffsetTick != o.OffsetTick {
		if n.OffsetTick < o.OffsetTick {
			return -1
		}
		return 1
	}
	if n.Pitch != o.Pitch {
		return int(n.Pitch) - int(o.Pitch)
	}
	if n.Velocity != o.Velocity {
		return int(n.Velocity) - int(o.Velocity)
	}
	return n.Voice - o.Voice
}

func (n Note) String() string {
	return fmt.Sprintf("(K:%s V:%d [%d-%d] %d)", NoteName(n.Pitch), n.Velocity, n.OnsetTime, n.OffsetTime, n.Voice)
}

// NoteName returns the name of a MIDI pitch value, accidentials as sharps.
func NoteName(pitch uint8) string {
	notes := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	return fmt.Sprintf("%s%d", notes[pitch%12], int(pitch)/12-1)
}

// BatchNotes sorts notes by onset time and groups all notes sharing an onset
// into one batch, in increasing onset order.
func BatchNotes(notes []Note) [][]Note {
	sorted := make([]Note, len(notes))
	copy(sorted, notes)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].OnsetTime != sorted[j].OnsetTime {
			return sorted[i].OnsetTime < sorted[j].OnsetTime
		}
		return sorted[i].Compare(sorted[j]) < 0
	})

	var batches [][]Note
	for _, n := range sorted {
		if len(batches) == 0 || batches[len(batches)-1][0].OnsetTime != n.OnsetTime {
			batches = append(batches, []Note{n})
		} else {
			batches[len(batches)-1] = append(batches[len(batches)-1], n)
		}
	}
	return batches
}
