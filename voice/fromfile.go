package voice

import (
	"fmt"

	"github.com/jsphweid/meterdetect/model"
)

// FromFileState replays a ground-truth voice partition. The full chains are
// built up front; Voices returns, per chain, the tail node at or before the
// most recent onset time seen so far.
type FromFileState struct {
	voices         []*Voice
	mostRecentTime int64
}

func NewFromFileState(goldVoices [][]model.Note) (*FromFileState, error) {
	s := &FromFileState{}

	for _, chain := range goldVoices {
		if len(chain) == 0 {
			continue
		}
		var tail *Voice
		for _, note := range chain {
			if note.OffsetTime == 0 {
				return nil, fmt.Errorf("no offset found for note %v", note)
			}
			tail = New(note, tail)
		}
		s.voices = append(s.voices, tail)
	}

	return s, nil
}

func (s *FromFileState) Voices() []*Voice {
	var current []*Voice
	for _, v := range s.voices {
		for v != nil && v.MostRecentNote().OnsetTime > s.mostRecentTime {
			v = v.Previous()
		}
		if v != nil {
			current = append(current, v)
		}
	}
	return current
}

func (s *FromFileState) HandleIncoming(notes []model.Note) []State {
	s.mostRecentTime = notes[0].OnsetTime
	return []State{s}
}

func (s *FromFileState) Close() []State {
	s.mostRecentTime++
	return []State{s}
}

func (s *FromFileState) Score() float64 {
	return 0.0
}

func (s *FromFileState) DeepCopy() State {
	return &FromFileState{voices: s.voices, mostRecentTime: s.mostRecentTime}
}

func (s *FromFileState) Compare(other State) int {
	o, ok := other.(*FromFileState)
	if !ok {
		return -1
	}
	if s.mostRecentTime != o.mostRecentTime {
		if s.mostRecentTime < o.mostRecentTime {
			return -1
		}
		return 1
	}
	if result := len(s.voices) - len(o.voices); result != 0 {
		return result
	}
	for i := range s.voices {
		if result := s.voices[i].Compare(o.voices[i]); result != 0 {
			return result
		}
	}
	return 0
}
