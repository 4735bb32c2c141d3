package meter

import (
	"github.com/jsphweid/meterdetect/beat"
	"github.com/jsphweid/meterdetect/model"
	"github.com/jsphweid/meterdetect/voice"
)

// State is one metrical hypothesis. Measure reports false until the
// hypothesis has committed to a measure type.
type State interface {
	HandleIncoming(notes []model.Note) []State
	Close() []State
	Measure() (model.Measure, bool)
	SubBeatLength() int
	AnacrusisLength() int
	Score() float64
	DeepCopy() State
	SetVoiceState(vs voice.State)
	SetBeatState(bs beat.State)
	VoiceState() voice.State
	BeatState() beat.State
	Compare(other State) int
}
