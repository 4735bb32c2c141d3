package voice

import "github.com/jsphweid/meterdetect/model"

// Voice is a node in a persistent linked list of notes. Hypotheses that
// share a prefix share the underlying nodes; only a previous pointer is
// needed since branches only ever diverge at the tail.
type Voice struct {
	previous *Voice
	note     model.Note
}

func New(note model.Note, previous *Voice) *Voice {
	return &Voice{previous: previous, note: note}
}

func (v *Voice) MostRecentNote() model.Note {
	return v.note
}

func (v *Voice) Previous() *Voice {
	return v.previous
}

// Notes returns the chain in chronological order, ending at this node.
func (v *Voice) Notes() []model.Note {
	var notes []model.Note
	for node := v; node != nil; node = node.previous {
		notes = append(notes, node.note)
	}
	for i, j := 0, len(notes)-1; i < j; i, j = i+1, j-1 {
		notes[i], notes[j] = notes[j], notes[i]
	}
	return notes
}

func (v *Voice) NumNotes() int {
	count := 0
	for node := v; node != nil; node = node.previous {
		count++
	}
	return count
}

func (v *Voice) Compare(other *Voice) int {
	a, b := v, other
	for a != nil && b != nil {
		if result := a.note.Compare(b.note); result != 0 {
			return result
		}
		a, b = a.previous, b.previous
	}
	if a != nil {
		return 1
	}
	if b != nil {
		return -1
	}
	return 0
}
