package meter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/meterdetect/beat"
	"github.com/jsphweid/meterdetect/lpcfg"
	"github.com/jsphweid/meterdetect/model"
	"github.com/jsphweid/meterdetect/voice"
)

func matchTestState(measure model.Measure, subBeatLen int) *GrammarState {
	return &GrammarState{
		grammar:      lpcfg.NewGrammar(),
		localGrammar: lpcfg.NewGrammar(),
		measure:      measure,
		hasMeasure:   true,
		subBeatLen:   subBeatLen,
	}
}

func TestSubBeatAlignedSpanMatches(t *testing.T) {
	s := matchTestState(model.Measure{BeatsPerMeasure: 4, SubBeatsPerBeat: 2}, 4)

	s.updateMatchForSpan(0, 4)

	assert := assert.New(t)
	assert.Equal(s.subBeatMatches, 1)
	assert.Equal(s.wrongMatches, 0)
}

func TestMisalignedSubBeatSpanIsWrong(t *testing.T) {
	s := matchTestState(model.Measure{BeatsPerMeasure: 4, SubBeatsPerBeat: 2}, 4)

	s.updateMatchForSpan(2, 4)

	assert := assert.New(t)
	assert.Equal(s.subBeatMatches, 0)
	assert.Equal(s.wrongMatches, 1)
}

func TestBeatAlignedSpanMatches(t *testing.T) {
	s := matchTestState(model.Measure{BeatsPerMeasure: 4, SubBeatsPerBeat: 2}, 4)

	s.updateMatchForSpan(0, 8)

	assert := assert.New(t)
	assert.Equal(s.beatMatches, 1)
	assert.Equal(s.wrongMatches, 0)
}

func TestFullBeatNoteUnderQuadrupleDivisionMatchesBeat(t *testing.T) {
	// 4/4 with four sub beats of four tatums each: a sixteen tatum note at
	// beat phase is exactly one beat.
	s := matchTestState(model.Measure{BeatsPerMeasure: 4, SubBeatsPerBeat: 4}, 4)

	s.updateMatchForSpan(0, 16)

	assert := assert.New(t)
	assert.Equal(s.beatMatches, 1)
	assert.Equal(s.wrongMatches, 0)
}

func TestHalfMeasureSpanIsConsistent(t *testing.T) {
	s := matchTestState(model.Measure{BeatsPerMeasure: 4, SubBeatsPerBeat: 2}, 4)

	// Two beats long, beat aligned, divides the measure evenly: no evidence
	// either way but not wrong.
	s.updateMatchForSpan(0, 16)

	assert := assert.New(t)
	assert.Equal(s.subBeatMatches, 0)
	assert.Equal(s.beatMatches, 0)
	assert.Equal(s.wrongMatches, 0)
}

func TestSpanThatDoesNotDivideTheMeasureIsWrong(t *testing.T) {
	s := matchTestState(model.Measure{BeatsPerMeasure: 4, SubBeatsPerBeat: 2}, 4)

	s.updateMatchForSpan(0, 12)

	assert := assert.New(t)
	assert.Equal(s.wrongMatches, 1)
}

func TestEliminationAfterRepeatedWrongMatches(t *testing.T) {
	s := matchTestState(model.Measure{BeatsPerMeasure: 4, SubBeatsPerBeat: 2}, 4)

	for i := 0; i < wrongMatchLimit-1; i++ {
		s.updateMatchForSpan(2, 4)
	}

	assert := assert.New(t)
	assert.False(s.isWrong())

	s.updateMatchForSpan(2, 4)
	assert.True(s.isWrong())
}

func spanNote(start, length int64) model.Note {
	return model.Note{
		Pitch:      60,
		OnsetTime:  start * 100,
		OnsetTick:  start * 100,
		OffsetTime: (start + length) * 100,
		OffsetTick: (start + length) * 100,
	}
}

func revealedGrid(count int) beat.State {
	beats := make([]model.Beat, count)
	for i := range beats {
		beats[i] = model.Beat{Beat: i, Time: int64(i) * 100}
	}
	bs := beat.NewGridState(beats, 0)
	bs.Close()
	return bs
}

func TestConglomerateOfUnevenNotesMatchesBeat(t *testing.T) {
	s := matchTestState(model.Measure{BeatsPerMeasure: 2, SubBeatsPerBeat: 4}, 2)
	s.beatState = revealedGrid(20)
	s.notesToCheckBeat = [][]model.Note{{
		spanNote(0, 2), spanNote(2, 3), spanNote(5, 3), spanNote(8, 4),
	}}

	for s.checkConglomerateBeatMatch(0) {
	}

	assert := assert.New(t)
	assert.Equal(s.beatMatches, 1)
	assert.Equal(s.wrongMatches, 0)
}

func TestUniformTilingIsNotABeatMatch(t *testing.T) {
	s := matchTestState(model.Measure{BeatsPerMeasure: 2, SubBeatsPerBeat: 4}, 2)
	s.beatState = revealedGrid(20)
	s.notesToCheckBeat = [][]model.Note{{
		spanNote(0, 2), spanNote(2, 2), spanNote(4, 2), spanNote(6, 2), spanNote(8, 2),
	}}

	for s.checkConglomerateBeatMatch(0) {
	}

	assert := assert.New(t)
	assert.Equal(s.beatMatches, 0)
}

func TestNoteTiedOverBeatBoundaryIsNotABeatMatch(t *testing.T) {
	s := matchTestState(model.Measure{BeatsPerMeasure: 2, SubBeatsPerBeat: 4}, 2)
	s.beatState = revealedGrid(20)
	s.notesToCheckBeat = [][]model.Note{{
		spanNote(0, 2), spanNote(2, 8), spanNote(10, 2),
	}}

	for s.checkConglomerateBeatMatch(0) {
	}

	assert := assert.New(t)
	assert.Equal(s.beatMatches, 0)
}

func TestEmptyBatchBeforeFirstNoteIsANoOp(t *testing.T) {
	s := NewGrammarState(lpcfg.NewGrammar(), model.Config{})
	vs, err := voice.NewFromFileState(nil)
	assert := assert.New(t)
	assert.NoError(err)
	s.SetVoiceState(vs)
	s.SetBeatState(revealedGrid(4))

	states := s.HandleIncoming(nil)

	assert.Equal(len(states), 1)
	assert.Equal(states[0], State(s))
}
