package voice

import "github.com/jsphweid/meterdetect/model"

// State is one voice-assignment hypothesis. HandleIncoming consumes a batch
// of simultaneous onsets and returns the branched hypothesis set; Close
// flushes at end of stream.
type State interface {
	HandleIncoming(notes []model.Note) []State
	Close() []State
	Voices() []*Voice
	Score() float64
	DeepCopy() State
	Compare(other State) int
}
