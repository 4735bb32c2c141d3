package beat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/meterdetect/model"
)

func TestFromFileStateRevealsGridIncrementally(t *testing.T) {
	beats := []model.Beat{
		{Beat: 0, Time: 0},
		{Beat: 1, Time: 100},
		{Beat: 2, Time: 200},
		{Beat: 3, Time: 300},
	}
	s := NewFromFileState(beats, nil)

	assert := assert.New(t)
	assert.Equal(len(s.Beats()), 1)

	s.HandleIncoming([]model.Note{{OnsetTime: 200, OffsetTime: 250}})
	assert.Equal(len(s.Beats()), 3)

	s.Close()
	assert.Equal(len(s.Beats()), 4)
}

func TestFromFileStateTactiComesFromActiveSignature(t *testing.T) {
	beats := []model.Beat{{Beat: 0, Time: 0}}
	sigs := []model.TimeSignatureChange{
		{Time: 0, Numerator: 4, Denominator: 4},
		{Time: 1000, Numerator: 6, Denominator: 8},
	}
	s := NewFromFileState(beats, sigs)

	assert := assert.New(t)
	assert.Equal(s.TactiPerMeasure(), 32)

	s.HandleIncoming([]model.Note{{OnsetTime: 1500, OffsetTime: 1600}})
	assert.Equal(s.TactiPerMeasure(), 24)
}

func TestGridStateCarriesFixedTacti(t *testing.T) {
	s := NewGridState([]model.Beat{{Beat: 0, Time: 0}}, 8)

	assert := assert.New(t)
	assert.Equal(s.TactiPerMeasure(), 8)
	assert.Equal(s.DeepCopy().TactiPerMeasure(), 8)
}

func TestUniformGridExtendsPastEveryOffset(t *testing.T) {
	s := NewUniformState(100)
	s.HandleIncoming([]model.Note{{OnsetTime: 0, OffsetTime: 450}})

	beats := s.Beats()

	assert := assert.New(t)
	// Slots at 0..500 plus one extra tatum past the offset.
	assert.Equal(len(beats), 6)
	assert.Equal(beats[5].Time, int64(500))
	assert.Equal(beats[5].Beat, 5)
	assert.Equal(s.TactiPerMeasure(), 0)
}

func TestUniformGridRequiresPositiveTatum(t *testing.T) {
	assert := assert.New(t)
	assert.Panics(func() { NewUniformState(0) })
}
