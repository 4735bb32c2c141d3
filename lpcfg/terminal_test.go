package lpcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReducesRunsByTheirGCF(t *testing.T) {
	term := NewTerminal([]Quantum{Onset, Tie, Tie, Onset, Tie, Tie}, 1)

	assert := assert.New(t)
	assert.Equal(term.ReducedPattern, []Quantum{Onset, Onset})
}

func TestReductionPreservesRelativeDurations(t *testing.T) {
	term := NewTerminal([]Quantum{Onset, Tie, Onset, Tie, Tie, Tie}, 1)

	assert := assert.New(t)
	assert.Equal(term.ReducedPattern, []Quantum{Onset, Onset, Tie})
}

func TestReductionPreservesRests(t *testing.T) {
	term := NewTerminal([]Quantum{Rest, Rest, Onset, Tie}, 1)

	assert := assert.New(t)
	assert.Equal(term.ReducedPattern, []Quantum{Rest, Onset})
}

func TestReductionPreservesLeadingTie(t *testing.T) {
	term := NewTerminal([]Quantum{Tie, Tie, Onset, Tie}, 1)

	assert := assert.New(t)
	assert.Equal(term.ReducedPattern, []Quantum{Tie, Onset})
}

func TestIrreduciblePatternSurvivesUnchanged(t *testing.T) {
	pattern := []Quantum{Onset, Tie, Tie, Onset}
	term := NewTerminal(pattern, 1)

	assert := assert.New(t)
	assert.Equal(term.ReducedPattern, pattern)
}

func TestEqualityIgnoresTatumResolution(t *testing.T) {
	coarse := NewTerminal([]Quantum{Onset, Onset}, 1)
	fine := NewTerminal([]Quantum{Onset, Tie, Onset, Tie}, 1)
	other := NewTerminal([]Quantum{Onset, Tie}, 1)

	assert := assert.New(t)
	assert.True(coarse.Equals(fine))
	assert.False(coarse.Equals(other))
}

func TestHeadFindsLongestNote(t *testing.T) {
	term := NewTerminal([]Quantum{Onset, Tie, Tie, Onset, Tie}, 1)
	head := term.Head()

	assert := assert.New(t)
	assert.Equal(head.Length, 3.0/5.0)
	assert.Equal(head.Offset, 0.0)
	assert.Equal(head.StartsAsTie, false)
}

func TestHeadScalesByBaseLength(t *testing.T) {
	term := NewTerminal([]Quantum{Rest, Onset, Tie, Tie}, 2)
	head := term.Head()

	assert := assert.New(t)
	assert.Equal(head.Length, 3.0/4.0*2.0)
	assert.Equal(head.Offset, 1.0/4.0*2.0)
}

func TestHeadOfTiedInNote(t *testing.T) {
	term := NewTerminal([]Quantum{Tie, Tie, Rest, Onset}, 1)
	head := term.Head()

	assert := assert.New(t)
	assert.Equal(head.Length, 2.0/4.0)
	assert.Equal(head.Offset, 0.0)
	assert.Equal(head.StartsAsTie, true)
}

func TestRestTerminalIsEmpty(t *testing.T) {
	assert := assert.New(t)
	assert.True(RestTerminal().IsEmpty())
	assert.True(RestTerminal().StartsWithRest())
	assert.False(NewTerminal([]Quantum{Rest, Onset}, 1).IsEmpty())
}

func TestTerminalString(t *testing.T) {
	term := NewTerminal([]Quantum{Onset, Tie, Tie, Onset, Tie, Tie}, 1)

	assert := assert.New(t)
	assert.Equal(term.String(), "[ONSET, ONSET]")
}

func TestHeadCompareOrdersBySalience(t *testing.T) {
	long := Head{Length: 2.0}
	short := Head{Length: 1.0}
	late := Head{Length: 1.0, Offset: 0.5}
	tied := Head{Length: 1.0, StartsAsTie: true}

	assert := assert.New(t)
	assert.Equal(long.Compare(short), 1)
	assert.Equal(short.Compare(late), 1)
	assert.Equal(short.Compare(tied), 1)
	assert.Equal(short.Compare(short), 0)
}
