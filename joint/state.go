package joint

import (
	"fmt"

	"github.com/jsphweid/meterdetect/beat"
	"github.com/jsphweid/meterdetect/meter"
	"github.com/jsphweid/meterdetect/model"
	"github.com/jsphweid/meterdetect/voice"
)

// State is one combined hypothesis: a voice assignment, a beat grid, and a
// metrical structure, wired so the beat state sees the voice state and the
// metrical state sees both. Its score is the sum of the three sub-scores.
type State struct {
	voiceState voice.State
	beatState  beat.State
	meterState meter.State
}

func NewState(vs voice.State, bs beat.State, ms meter.State) *State {
	bs.SetVoiceState(vs)
	ms.SetVoiceState(vs)
	ms.SetBeatState(bs)
	return &State{voiceState: vs, beatState: bs, meterState: ms}
}

// fromMeterState rebuilds the triple around an already wired metrical state.
func fromMeterState(ms meter.State) *State {
	return &State{
		voiceState: ms.VoiceState(),
		beatState:  ms.BeatState(),
		meterState: ms,
	}
}

func (s *State) VoiceState() voice.State {
	return s.voiceState
}

func (s *State) BeatState() beat.State {
	return s.beatState
}

func (s *State) MeterState() meter.State {
	return s.meterState
}

func (s *State) Score() float64 {
	return s.voiceState.Score() + s.beatState.Score() + s.meterState.Score()
}

// expand runs one step of the cross-product search. Every sub-state is deep
// copied before being attached to more than one branch, so no two branches
// ever alias mutable state.
func (s *State) expand(
	voiceStep func(voice.State) []voice.State,
	beatStep func(beat.State) []beat.State,
	meterStep func(meter.State) []meter.State,
) []*State {
	newVoiceStates := voiceStep(s.voiceState)

	var newBeatStates []beat.State
	for _, vs := range newVoiceStates {
		bs := s.beatState.DeepCopy()
		bs.SetVoiceState(vs)
		newBeatStates = append(newBeatStates, beatStep(bs)...)
	}

	var newMeterStates []meter.State
	for _, bs := range newBeatStates {
		ms := s.meterState.DeepCopy()
		ms.SetVoiceState(bs.VoiceState())
		ms.SetBeatState(bs)
		newMeterStates = append(newMeterStates, meterStep(ms)...)
	}

	newStates := make([]*State, 0, len(newMeterStates))
	for _, ms := range newMeterStates {
		newStates = append(newStates, fromMeterState(ms))
	}
	return newStates
}

func (s *State) HandleIncoming(notes []model.Note) []*State {
	return s.expand(
		func(vs voice.State) []voice.State { return vs.HandleIncoming(notes) },
		func(bs beat.State) []beat.State { return bs.HandleIncoming(notes) },
		func(ms meter.State) []meter.State { return ms.HandleIncoming(notes) },
	)
}

func (s *State) Close() []*State {
	return s.expand(
		func(vs voice.State) []voice.State { return vs.Close() },
		func(bs beat.State) []beat.State { return bs.Close() },
		func(ms meter.State) []meter.State { return ms.Close() },
	)
}

// Compare orders by total score descending (a raw 0.0 on either side sorts
// after any scored state), then by the sub-scores, then identity.
func (s *State) Compare(other *State) int {
	if result := compareFloat(other.Score(), s.Score()); result != 0 {
		if other.Score() == 0.0 || s.Score() == 0.0 {
			return -result
		}
		return result
	}

	if result := compareFloat(s.voiceState.Score(), other.voiceState.Score()); result != 0 {
		return result
	}
	if result := compareFloat(s.beatState.Score(), other.beatState.Score()); result != 0 {
		return result
	}
	if result := compareFloat(s.meterState.Score(), other.meterState.Score()); result != 0 {
		return result
	}

	if s.voiceState == other.voiceState && s.beatState == other.beatState && s.meterState == other.meterState {
		return 0
	}
	return 1
}

func compareFloat(a, b float64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func (s *State) String() string {
	return fmt.Sprintf("{%v;%v;%v}=%v", s.voiceState, s.beatState, s.meterState, s.Score())
}
