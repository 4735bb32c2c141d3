package lpcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/meterdetect/model"
)

func TestBuildsOneBeatChildPerBeat(t *testing.T) {
	o := Onset
	tie := Tie
	tree := MakeTreeFromQuantums([]Quantum{o, o, o, tie, o, tie, tie, tie}, 4, 2)

	assert := assert.New(t)
	assert.Equal(tree.Measure(), model.Measure{BeatsPerMeasure: 4, SubBeatsPerBeat: 2})
	assert.Equal(len(tree.Root.Children), 4)
}

func TestBeatCollapsesWhenItNeverSubdivides(t *testing.T) {
	// First beat holds one quarter note, second holds two eighths.
	o := Onset
	tie := Tie
	tree := MakeTreeFromQuantums([]Quantum{o, tie, o, o}, 2, 2)

	collapsed := tree.Root.Children[0].(*Nonterminal)
	split := tree.Root.Children[1].(*Nonterminal)

	assert := assert.New(t)
	assert.Equal(len(collapsed.Children), 1)
	_, isTerminal := collapsed.Children[0].(*Terminal)
	assert.True(isTerminal)

	assert.Equal(len(split.Children), 2)
	_, isNonterminal := split.Children[0].(*Nonterminal)
	assert.True(isNonterminal)
}

func TestFirstMostSalientBeatIsStrong(t *testing.T) {
	o := Onset
	tie := Tie
	r := Rest
	// Beat 0 holds the longest note, the rest are weaker.
	tree := MakeTreeFromQuantums([]Quantum{o, tie, tie, tie, o, o, r, o}, 4, 2)

	assert := assert.New(t)
	assert.Equal(tree.Root.Children[0].(*Nonterminal).Type, StrongType)
	assert.Equal(tree.Root.Children[1].(*Nonterminal).Type, WeakType)
	assert.Equal(tree.Root.Children[2].(*Nonterminal).Type, WeakType)
	assert.Equal(tree.Root.Children[3].(*Nonterminal).Type, WeakType)
}

func TestTypeAndTransitionStrings(t *testing.T) {
	o := Onset
	tie := Tie
	tree := MakeTreeFromQuantums([]Quantum{o, tie, o, o}, 2, 2)

	assert := assert.New(t)
	assert.Equal(tree.Root.TypeString(), "M_2_2")
	assert.Equal(tree.Root.TransitionString(), "MEASURE(STRONG_BEAT,WEAK_BEAT)")

	split := tree.Root.Children[1].(*Nonterminal)
	assert.Equal(split.TransitionString(), "BEAT(STRONG_SUB_BEAT,WEAK_SUB_BEAT)")

	collapsed := tree.Root.Children[0].(*Nonterminal)
	assert.Equal(collapsed.TransitionString(), "BEAT([ONSET])")
}

func gridBeats(count int, spacing int64) []model.Beat {
	beats := make([]model.Beat, count)
	for i := range beats {
		beats[i] = model.Beat{Beat: i, Time: int64(i) * spacing, Tick: int64(i) * spacing}
	}
	return beats
}

func tatumTestNote(start, length int64) model.Note {
	return model.Note{
		Pitch:      60,
		OnsetTime:  start * 100,
		OnsetTick:  start * 100,
		OffsetTime: (start + length) * 100,
		OffsetTick: (start + length) * 100,
	}
}

func TestMakeTreeMarksOnsetAndTies(t *testing.T) {
	measure := model.Measure{BeatsPerMeasure: 2, SubBeatsPerBeat: 2}
	beats := gridBeats(10, 100)
	notes := []model.Note{tatumTestNote(0, 3), tatumTestNote(3, 1)}

	tree := MakeTree(notes, beats, measure, 1, 0, 0)

	assert := assert.New(t)
	assert.Equal(tree.String(), MakeTreeFromQuantums([]Quantum{Onset, Tie, Tie, Onset}, 2, 2).String())
}

func TestMakeTreeIgnoresNotesOutsideTheWindow(t *testing.T) {
	measure := model.Measure{BeatsPerMeasure: 2, SubBeatsPerBeat: 2}
	beats := gridBeats(10, 100)
	notes := []model.Note{tatumTestNote(0, 2), tatumTestNote(4, 2)}

	tree := MakeTree(notes, beats, measure, 1, 0, 1)

	assert := assert.New(t)
	assert.Equal(tree.String(), MakeTreeFromQuantums([]Quantum{Onset, Tie, Rest, Rest}, 2, 2).String())
}

func TestMakeTreeAnacrusisWindowPadsTheFront(t *testing.T) {
	measure := model.Measure{BeatsPerMeasure: 2, SubBeatsPerBeat: 2}
	beats := gridBeats(10, 100)
	notes := []model.Note{tatumTestNote(0, 1)}

	// One sub beat of anacrusis: the pickup window ends at beat 1 and is
	// padded with rests before the start of the grid.
	tree := MakeTree(notes, beats, measure, 1, 1, -1)

	assert := assert.New(t)
	assert.True(tree.StartsWithRest())
	assert.False(tree.IsEmpty())
	assert.Equal(tree.String(), MakeTreeFromQuantums([]Quantum{Rest, Rest, Rest, Onset}, 2, 2).String())
}

func TestOnsetIsNeverOverwrittenByTie(t *testing.T) {
	measure := model.Measure{BeatsPerMeasure: 2, SubBeatsPerBeat: 2}
	beats := gridBeats(10, 100)
	// The long note ties across the short note's onset.
	notes := []model.Note{tatumTestNote(0, 4), tatumTestNote(2, 2)}

	tree := MakeTree(notes, beats, measure, 1, 0, 0)

	assert := assert.New(t)
	assert.Equal(tree.String(), MakeTreeFromQuantums([]Quantum{Onset, Tie, Onset, Tie}, 2, 2).String())
}
