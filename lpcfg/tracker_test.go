package lpcfg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/meterdetect/model"
)

func TestGoodTuringSmoothing(t *testing.T) {
	conditioned := map[string]int{"a": 1, "b": 2, "c": 3}

	assert := assert.New(t)
	// One event of each count: N1 = N2 = N3 = 1, total = 6.
	assert.Equal(goodTuringProbability(conditioned, 0), 1.0/6.0)
	assert.Equal(goodTuringProbability(conditioned, 1), 2.0/6.0)
	assert.Equal(goodTuringProbability(conditioned, 2), 3.0/6.0)
	// No events were seen 4 times, so count 3 falls back to its raw ratio.
	assert.Equal(goodTuringProbability(conditioned, 3), 3.0/6.0)
	assert.Equal(goodTuringProbability(map[string]int{}, 0), 0.0)
}

func TestAddThenRemoveLeavesTrackerEmpty(t *testing.T) {
	tracker := NewTracker()
	measure := model.Measure{BeatsPerMeasure: 4, SubBeatsPerBeat: 2}
	head := Head{Length: 1.0}

	tracker.AddTransition(measure, "M_4_2", head, "MEASURE(STRONG_BEAT,WEAK_BEAT)", MeasureLevel)
	tracker.AddHead(measure, "WEAK_BEAT", head, Head{Length: 0.5}, BeatLevel)
	tracker.AddMeasureHead(measure, head)

	assert := assert.New(t)
	assert.False(tracker.IsEmpty())

	assert.Nil(tracker.RemoveTransition(measure, "M_4_2", head, "MEASURE(STRONG_BEAT,WEAK_BEAT)", MeasureLevel))
	assert.Nil(tracker.RemoveHead(measure, "WEAK_BEAT", head, Head{Length: 0.5}, BeatLevel))
	assert.Nil(tracker.RemoveMeasureHead(measure, head))
	assert.True(tracker.IsEmpty())
}

func TestRemovingMissingCountErrs(t *testing.T) {
	tracker := NewTracker()
	measure := model.Measure{BeatsPerMeasure: 4, SubBeatsPerBeat: 2}
	head := Head{Length: 1.0}

	err := tracker.RemoveTransition(measure, "M_4_2", head, "MEASURE(STRONG_BEAT,WEAK_BEAT)", MeasureLevel)

	assert := assert.New(t)
	assert.ErrorIs(err, ErrElementNotFound)
	assert.ErrorIs(tracker.RemoveMeasureHead(measure, head), ErrElementNotFound)
}

func TestBackoffSharesCountsAcrossMeasureTypes(t *testing.T) {
	tracker := NewTracker()
	seen := model.Measure{BeatsPerMeasure: 4, SubBeatsPerBeat: 2}
	unseen := model.Measure{BeatsPerMeasure: 3, SubBeatsPerBeat: 2}
	otherDivision := model.Measure{BeatsPerMeasure: 3, SubBeatsPerBeat: 3}
	head := Head{Length: 1.0}

	tracker.AddTransition(seen, "STRONG_BEAT", head, "BEAT([ONSET])", BeatLevel)

	assert := assert.New(t)
	primary := tracker.TransitionLogProbability(seen, "STRONG_BEAT", head, "BEAT([ONSET])", BeatLevel)
	assert.False(math.IsInf(primary, -1))

	// A 3/4 hypothesis never saw this transition directly but shares the
	// two-sub-beats backoff row with 4/4.
	backedOff := tracker.TransitionLogProbability(unseen, "STRONG_BEAT", head, "BEAT([ONSET])", BeatLevel)
	assert.False(math.IsInf(backedOff, -1))

	// A triple division shares nothing.
	missing := tracker.TransitionLogProbability(otherDivision, "STRONG_BEAT", head, "BEAT([ONSET])", BeatLevel)
	assert.True(math.IsInf(missing, -1))
}

func TestMeasureHeadProbabilityOfUnseenMeasure(t *testing.T) {
	tracker := NewTracker()
	measure := model.Measure{BeatsPerMeasure: 4, SubBeatsPerBeat: 2}

	assert := assert.New(t)
	assert.True(math.IsInf(tracker.MeasureHeadLogProbability(measure, Head{Length: 1.0}), -1))

	tracker.AddMeasureHead(measure, Head{Length: 1.0})
	assert.Equal(tracker.MeasureHeadLogProbability(measure, Head{Length: 1.0}), 0.0)
}

func TestDeepCopyIsIndependent(t *testing.T) {
	tracker := NewTracker()
	measure := model.Measure{BeatsPerMeasure: 4, SubBeatsPerBeat: 2}
	tracker.AddMeasureHead(measure, Head{Length: 1.0})

	copied := tracker.DeepCopy()
	copied.AddMeasureHead(measure, Head{Length: 2.0})

	assert := assert.New(t)
	assert.Equal(len(tracker.MeasureHeads[measure]), 1)
	assert.Equal(len(copied.MeasureHeads[measure]), 2)
}
