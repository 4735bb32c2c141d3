package beat

import (
	"github.com/jsphweid/meterdetect/model"
	"github.com/jsphweid/meterdetect/voice"
)

// State is one beat-tracking hypothesis. Beats returns the tatum grid
// produced so far (append-only); TactiPerMeasure is the number of tatums per
// notated measure, or 0 when the grid carries no measure labels and beat
// numbers are absolute tatum indices.
type State interface {
	HandleIncoming(notes []model.Note) []State
	Close() []State
	Beats() []model.Beat
	TactiPerMeasure() int
	Score() float64
	DeepCopy() State
	SetVoiceState(vs voice.State)
	VoiceState() voice.State
	Compare(other State) int
}
