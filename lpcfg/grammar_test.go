package lpcfg

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/meterdetect/model"
)

func quarterEighthsTree() *Tree {
	return MakeTreeFromQuantums([]Quantum{Onset, Tie, Onset, Onset}, 2, 2)
}

func wholeMeasureTree() *Tree {
	return MakeTreeFromQuantums([]Quantum{Onset, Tie, Tie, Tie}, 2, 2)
}

func TestExtractingEveryTreeLeavesGrammarEmpty(t *testing.T) {
	grammar := NewGrammar()
	grammar.AddTree(quarterEighthsTree())
	grammar.AddTree(quarterEighthsTree())
	grammar.AddTree(wholeMeasureTree())

	assert := assert.New(t)
	assert.Nil(grammar.ExtractTree(quarterEighthsTree()))
	assert.Nil(grammar.ExtractTree(wholeMeasureTree()))
	assert.Nil(grammar.ExtractTree(quarterEighthsTree()))

	assert.Equal(len(grammar.Trees), 0)
	assert.True(grammar.Probabilities.IsEmpty())
}

func TestExtractingMissingTreeErrs(t *testing.T) {
	grammar := NewGrammar()
	grammar.AddTree(quarterEighthsTree())

	err := grammar.ExtractTree(wholeMeasureTree())

	assert := assert.New(t)
	assert.ErrorIs(err, ErrElementNotFound)
	assert.Equal(len(grammar.Trees), 1)
}

func TestSeenTreeScoresFiniteAndUnseenMeasureDoesNot(t *testing.T) {
	grammar := NewGrammar()
	grammar.AddTree(quarterEighthsTree())
	grammar.AddTree(wholeMeasureTree())

	assert := assert.New(t)
	score := grammar.TreeLogProbability(quarterEighthsTree())
	assert.False(math.IsInf(score, -1))
	assert.True(score <= 0)

	unseen := MakeTreeFromQuantums([]Quantum{Onset, Onset, Onset, Onset, Onset, Onset}, 2, 3)
	assert.True(math.IsInf(grammar.TreeLogProbability(unseen), -1))
}

func TestMoreFrequentTreeScoresHigher(t *testing.T) {
	grammar := NewGrammar()
	for i := 0; i < 5; i++ {
		grammar.AddTree(quarterEighthsTree())
	}
	grammar.AddTree(wholeMeasureTree())

	assert := assert.New(t)
	common := grammar.TreeLogProbability(quarterEighthsTree())
	rare := grammar.TreeLogProbability(wholeMeasureTree())
	assert.True(common > rare)
}

func TestMeasuresAreSortedAndUnique(t *testing.T) {
	grammar := NewGrammar()
	grammar.AddTree(MakeTreeFromQuantums([]Quantum{Onset, Onset, Onset, Onset}, 4, 2))
	grammar.AddTree(quarterEighthsTree())
	grammar.AddTree(wholeMeasureTree())

	assert := assert.New(t)
	assert.Equal(grammar.Measures(), []model.Measure{
		{BeatsPerMeasure: 2, SubBeatsPerBeat: 2},
		{BeatsPerMeasure: 4, SubBeatsPerBeat: 2},
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	grammar := NewGrammar()
	grammar.AddTree(quarterEighthsTree())
	grammar.AddTree(wholeMeasureTree())

	var buf bytes.Buffer
	err := grammar.Encode(&buf)

	assert := assert.New(t)
	assert.Nil(err)

	decoded, err := Decode(&buf)
	assert.Nil(err)
	assert.Equal(len(decoded.Trees), 2)
	assert.True(decoded.Trees[0].Equals(quarterEighthsTree()))
	assert.Equal(
		decoded.TreeLogProbability(quarterEighthsTree()),
		grammar.TreeLogProbability(quarterEighthsTree()),
	)
}

func TestGrammarDeepCopyIsIndependent(t *testing.T) {
	grammar := NewGrammar()
	grammar.AddTree(quarterEighthsTree())

	copied := grammar.DeepCopy()
	copied.AddTree(wholeMeasureTree())

	assert := assert.New(t)
	assert.Equal(len(grammar.Trees), 1)
	assert.Equal(len(copied.Trees), 2)
	assert.ErrorIs(grammar.ExtractTree(wholeMeasureTree()), ErrElementNotFound)
}
