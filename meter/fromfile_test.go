package meter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/meterdetect/model"
)

func TestFromFileStateReportsNotatedMeasure(t *testing.T) {
	s := NewFromFileState(model.TimeSignatureChange{Numerator: 6, Denominator: 8})

	measure, ok := s.Measure()

	assert := assert.New(t)
	assert.True(ok)
	assert.Equal(measure, model.Measure{BeatsPerMeasure: 2, SubBeatsPerBeat: 3})
	assert.Equal(s.Score(), 1.0)
}

func TestFromFileStateSurvivesEveryBatch(t *testing.T) {
	s := NewFromFileState(model.TimeSignatureChange{Numerator: 4, Denominator: 4})

	assert := assert.New(t)
	assert.Equal(len(s.HandleIncoming(nil)), 1)
	assert.Equal(len(s.HandleIncoming([]model.Note{{OnsetTime: 100, OffsetTime: 200}})), 1)
	assert.Equal(len(s.Close()), 1)
}

func TestFromFileStateDeepCopyIsIndependent(t *testing.T) {
	s := NewFromFileState(model.TimeSignatureChange{Numerator: 4, Denominator: 4})
	c := s.DeepCopy()

	s.HandleIncoming([]model.Note{{OnsetTime: 100, OffsetTime: 200}})

	assert := assert.New(t)
	assert.NotEqual(s.Compare(c), 0)
}
