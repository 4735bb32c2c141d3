package beat

import (
	"github.com/jsphweid/meterdetect/model"
	"github.com/jsphweid/meterdetect/voice"
)

// UniformState is a synthetic evenly spaced tatum grid for input that
// carries no notated meter, e.g. live capture. Beat numbers are absolute
// tatum indices and TactiPerMeasure is 0, so downstream consumers skip
// measure normalization entirely.
type UniformState struct {
	tatumLength    int64
	beats          []model.Beat
	mostRecentTime int64
	voiceState     voice.State
}

func NewUniformState(tatumLength int64) *UniformState {
	if tatumLength <= 0 {
		panic("uniform beat grid requires a positive tatum length")
	}
	return &UniformState{tatumLength: tatumLength}
}

func (s *UniformState) TactiPerMeasure() int {
	return 0
}

func (s *UniformState) Beats() []model.Beat {
	return s.beats
}

func (s *UniformState) extendTo(time int64) {
	for {
		var next int64
		if len(s.beats) > 0 {
			next = s.beats[len(s.beats)-1].Time + s.tatumLength
		}
		if next > time {
			return
		}
		s.beats = append(s.beats, model.Beat{
			Beat: len(s.beats),
			Time: next,
			Tick: next,
		})
	}
}

func (s *UniformState) HandleIncoming(notes []model.Note) []State {
	s.mostRecentTime = notes[0].OnsetTime
	// The grid has to reach past every offset seen so far or the parser
	// would stall waiting for the note to finish.
	end := s.mostRecentTime
	for _, note := range notes {
		if note.OffsetTime > end {
			end = note.OffsetTime
		}
	}
	s.extendTo(end + s.tatumLength)
	return []State{s}
}

func (s *UniformState) Close() []State {
	for _, b := range s.beats {
		s.mostRecentTime = b.Time
	}
	return []State{s}
}

func (s *UniformState) Score() float64 {
	return 0.0
}

func (s *UniformState) DeepCopy() State {
	beats := make([]model.Beat, len(s.beats))
	copy(beats, s.beats)
	return &UniformState{
		tatumLength:    s.tatumLength,
		beats:          beats,
		mostRecentTime: s.mostRecentTime,
		voiceState:     s.voiceState,
	}
}

func (s *UniformState) SetVoiceState(vs voice.State) {
	s.voiceState = vs
}

func (s *UniformState) VoiceState() voice.State {
	return s.voiceState
}

func (s *UniformState) Compare(other State) int {
	o, ok := other.(*UniformState)
	if !ok {
		return 1
	}
	if s.mostRecentTime != o.mostRecentTime {
		if s.mostRecentTime < o.mostRecentTime {
			return -1
		}
		return 1
	}
	if result := len(s.beats) - len(o.beats); result != 0 {
		return result
	}
	if s.voiceState == o.voiceState {
		return 0
	}
	return 1
}
