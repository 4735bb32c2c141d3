package meter

import (
	"github.com/jsphweid/meterdetect/beat"
	"github.com/jsphweid/meterdetect/model"
	"github.com/jsphweid/meterdetect/voice"
)

// FromFileState reads the correct measure straight from the file's notated
// time signature. Used as the gold reference when evaluating detection.
type FromFileState struct {
	measure        model.Measure
	mostRecentTime int64
	voiceState     voice.State
	beatState      beat.State
}

func NewFromFileState(sig model.TimeSignatureChange) *FromFileState {
	return &FromFileState{measure: sig.MetricalMeasure()}
}

func (s *FromFileState) Measure() (model.Measure, bool) {
	return s.measure, true
}

func (s *FromFileState) SubBeatLength() int {
	return 0
}

func (s *FromFileState) AnacrusisLength() int {
	return 0
}

func (s *FromFileState) HandleIncoming(notes []model.Note) []State {
	if len(notes) == 0 {
		return []State{s}
	}
	s.mostRecentTime = notes[0].OnsetTime
	return []State{s}
}

func (s *FromFileState) Close() []State {
	return []State{s}
}

func (s *FromFileState) Score() float64 {
	return 1.0
}

func (s *FromFileState) DeepCopy() State {
	return &FromFileState{
		measure:        s.measure,
		mostRecentTime: s.mostRecentTime,
		voiceState:     s.voiceState,
		beatState:      s.beatState,
	}
}

func (s *FromFileState) SetVoiceState(vs voice.State) {
	s.voiceState = vs
}

func (s *FromFileState) SetBeatState(bs beat.State) {
	s.beatState = bs
}

func (s *FromFileState) VoiceState() voice.State {
	return s.voiceState
}

func (s *FromFileState) BeatState() beat.State {
	return s.beatState
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
	if result := s.measure.Compare(o.measure); result != 0 {
		return result
	}
	if s.voiceState == o.voiceState && s.beatState == o.beatState {
		return 0
	}
	return 1
}
