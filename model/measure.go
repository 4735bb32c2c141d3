package model

import "fmt"

// Measure is a metrical measure type: how many beats make up a measure and
// how many sub beats make up a beat. 4/4 time is {4, 2}, 6/8 is {2, 3}.
type Measure struct {
	BeatsPerMeasure int `json:"beats_per_measure"`
	SubBeatsPerBeat int `json:"sub_beats_per_beat"`
}

func (m Measure) Compare(o Measure) int {
	if m.BeatsPerMeasure != o.BeatsPerMeasure {
		return m.BeatsPerMeasure - o.BeatsPerMeasure
	}
	return m.SubBeatsPerBeat - o.SubBeatsPerBeat
}

func (m Measure) String() string {
	return fmt.Sprintf("M_%d_%d", m.BeatsPerMeasure, m.SubBeatsPerBeat)
}
