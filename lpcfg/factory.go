package lpcfg

import "github.com/jsphweid/meterdetect/model"

// MakeTree parses one measure of a voice's notes into a Tree. The beats are
// the full song's tatum grid; the measure window is located by measureNum and
// the anacrusis (in sub beats), and every note overlapping the window marks
// its onset tatum ONSET and interior tatums TIE.
func MakeTree(notes []model.Note, beats []model.Beat, measure model.Measure, subBeatLength, anacrusisLengthSubBeats, measureNum int) *Tree {
	measureLength := subBeatLength * measure.BeatsPerMeasure * measure.SubBeatsPerBeat
	anacrusisLength := subBeatLength * anacrusisLengthSubBeats

	quantums := make([]Quantum, measureLength)

	firstBeatIndex := measureLength*measureNum + anacrusisLength
	lastBeatIndex := firstBeatIndex + measureLength

	for _, note := range notes {
		addNote(note, quantums, beats, firstBeatIndex, lastBeatIndex)
	}

	return MakeTreeFromQuantums(quantums, measure.BeatsPerMeasure, measure.SubBeatsPerBeat)
}

func addNote(note model.Note, quantums []Quantum, beats []model.Beat, firstBeatIndex, lastBeatIndex int) {
	beatIndex := model.OnsetBeatIndex(beats, note.OnsetTime)
	offsetIndex := model.OffsetBeatIndex(beats, note.OffsetTime)

	if beatIndex >= firstBeatIndex && beatIndex < lastBeatIndex {
		addQuantum(Onset, quantums, beatIndex-firstBeatIndex)
	}

	for beatIndex++; beatIndex < lastBeatIndex && beatIndex < len(beats) && beatIndex != offsetIndex; beatIndex++ {
		if beatIndex >= firstBeatIndex {
			addQuantum(Tie, quantums, beatIndex-firstBeatIndex)
		}
	}
}

// An ONSET is never overwritten by a later TIE.
func addQuantum(quantum Quantum, quantums []Quantum, index int) {
	if quantums[index] != Onset {
		quantums[index] = quantum
	}
}

// MakeTreeFromQuantums builds the measure/beat/sub-beat hierarchy over an
// unreduced quantum array spanning exactly one measure.
func MakeTreeFromQuantums(quantums []Quantum, beatsPerMeasure, subBeatsPerBeat int) *Tree {
	root := NewMeasureNonterminal(model.Measure{
		BeatsPerMeasure: beatsPerMeasure,
		SubBeatsPerBeat: subBeatsPerBeat,
	})

	beatLength := len(quantums) / beatsPerMeasure
	for beat := 0; beat < beatsPerMeasure; beat++ {
		root.AddChild(makeBeatNonterminal(quantums[beatLength*beat:beatLength*(beat+1)], subBeatsPerBeat))
	}
	root.FixChildrenTypes()

	return &Tree{Root: root}
}

func makeBeatNonterminal(quantums []Quantum, subBeatsPerBeat int) *Nonterminal {
	beatNonterminal := NewNonterminal(BeatLevel)

	beatTerminal := NewTerminal(quantums, subBeatsPerBeat)
	if len(beatTerminal.ReducedPattern) == 1 {
		beatNonterminal.AddChild(beatTerminal)
		return beatNonterminal
	}

	subBeatLength := len(quantums) / subBeatsPerBeat
	for subBeat := 0; subBeat < subBeatsPerBeat; subBeat++ {
		beatNonterminal.AddChild(makeSubBeatNonterminal(quantums[subBeatLength*subBeat : subBeatLength*(subBeat+1)]))
	}
	beatNonterminal.FixChildrenTypes()

	return beatNonterminal
}

func makeSubBeatNonterminal(quantums []Quantum) *Nonterminal {
	subBeatNonterminal := NewNonterminal(SubBeatLevel)
	subBeatNonterminal.AddChild(NewTerminal(quantums, 1))
	return subBeatNonterminal
}
