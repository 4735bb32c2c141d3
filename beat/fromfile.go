package beat

import (
	"github.com/jsphweid/meterdetect/model"
	"github.com/jsphweid/meterdetect/voice"
)

// FromFileState replays a tatum grid parsed straight out of the file,
// revealing beats only up to the most recent onset time seen so far.
type FromFileState struct {
	beats           []model.Beat
	sigs            []model.TimeSignatureChange
	fixedTacti      int
	mostRecentIndex int
	mostRecentTime  int64
	voiceState      voice.State
}

func NewFromFileState(beats []model.Beat, sigs []model.TimeSignatureChange) *FromFileState {
	return &FromFileState{beats: beats, sigs: sigs}
}

// NewGridState wraps a grid whose tacti-per-measure is already known rather
// than derived from notated signature changes.
func NewGridState(beats []model.Beat, tactiPerMeasure int) *FromFileState {
	return &FromFileState{beats: beats, fixedTacti: tactiPerMeasure}
}

func (s *FromFileState) TactiPerMeasure() int {
	if len(s.sigs) == 0 {
		return s.fixedTacti
	}
	sig := s.sigs[0]
	if s.mostRecentTime != 0 {
		for _, candidate := range s.sigs {
			if candidate.Time > s.mostRecentTime {
				break
			}
			sig = candidate
		}
	}
	return sig.Notes32PerBar()
}

func (s *FromFileState) Beats() []model.Beat {
	for ; s.mostRecentIndex < len(s.beats); s.mostRecentIndex++ {
		if s.beats[s.mostRecentIndex].Time > s.mostRecentTime {
			return s.beats[:s.mostRecentIndex]
		}
	}
	return s.beats
}

func (s *FromFileState) HandleIncoming(notes []model.Note) []State {
	s.mostRecentTime = notes[0].OnsetTime
	return []State{s}
}

func (s *FromFileState) Close() []State {
	s.mostRecentIndex = len(s.beats)
	s.mostRecentTime = s.beats[len(s.beats)-1].Time
	return []State{s}
}

func (s *FromFileState) Score() float64 {
	return 0.0
}

func (s *FromFileState) DeepCopy() State {
	return &FromFileState{
		beats:           s.beats,
		sigs:            s.sigs,
		fixedTacti:      s.fixedTacti,
		mostRecentIndex: s.mostRecentIndex,
		mostRecentTime:  s.mostRecentTime,
		voiceState:      s.voiceState,
	}
}

func (s *FromFileState) SetVoiceState(vs voice.State) {
	s.voiceState = vs
}

func (s *FromFileState) VoiceState() voice.State {
	return s.voiceState
}

func (s *FromFileState) Compare(other State) int {
	o, ok := other.(*FromFileState)
	if !ok {
		return -1
	}
	a := s.Score() + s.voiceState.Score()
	b := o.Score() + o.voiceState.Score()
	if a != b {
		if b > a {
			return 1
		}
		return -1
	}
	if result := len(s.beats) - len(o.beats); result != 0 {
		return result
	}
	for i := range s.beats {
		if result := s.beats[i].Compare(o.beats[i]); result != 0 {
			return result
		}
	}
	if s.voiceState == o.voiceState {
		return 0
	}
	return 1
}
