package lpcfg

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/jsphweid/meterdetect/model"
)

// ErrElementNotFound is returned when a removal targets a count that is not
// present. Callers must not ignore it: a silent miss would leave the
// aggregate counts inconsistent with the tree list.
var ErrElementNotFound = errors.New("element not found in grammar")

// Tracker holds the three conditional frequency tables of the grammar:
// transitions given (measure, type, head length), head lengths given
// (measure, type, parent head length), and measure head lengths given the
// measure alone. The first two share key encoding and carry an extra
// backoff row keyed by a coarsened measure descriptor.
type Tracker struct {
	Transitions  map[string]map[string]int
	Heads        map[string]map[float64]int
	MeasureHeads map[model.Measure]map[float64]int
}

func NewTracker() *Tracker {
	return &Tracker{
		Transitions:  make(map[string]map[string]int),
		Heads:        make(map[string]map[float64]int),
		MeasureHeads: make(map[model.Measure]map[float64]int),
	}
}

func encode(measureKey, typeString string, head Head) string {
	return measureKey + ";" + typeString + ";" + strconv.FormatFloat(head.Length, 'g', -1, 64)
}

func encodeKey(measure model.Measure, typeString string, head Head) string {
	return encode(measure.String(), typeString, head)
}

func encodeBackoffKey(measure model.Measure, typeString string, head Head, level Level) string {
	var measureKey string
	switch level {
	case SubBeatLevel:
		measureKey = "SSB"
	case BeatLevel:
		measureKey = fmt.Sprintf("%dSB", measure.SubBeatsPerBeat)
	case MeasureLevel:
		measureKey = fmt.Sprintf("%dB", measure.BeatsPerMeasure)
	}
	return encode(measureKey, typeString, head)
}

func addCount[K comparable, E comparable](table map[K]map[E]int, key K, event E) {
	conditioned := table[key]
	if conditioned == nil {
		conditioned = make(map[E]int)
		table[key] = conditioned
	}
	conditioned[event]++
}

func removeCount[K comparable, E comparable](table map[K]map[E]int, key K, event E) error {
	conditioned := table[key]
	if conditioned == nil {
		return ErrElementNotFound
	}
	count, ok := conditioned[event]
	if !ok {
		return ErrElementNotFound
	}
	if count == 1 {
		delete(conditioned, event)
		if len(conditioned) == 0 {
			delete(table, key)
		}
	} else {
		conditioned[event] = count - 1
	}
	return nil
}

func (t *Tracker) AddTransition(measure model.Measure, typeString string, head Head, transitionString string, level Level) {
	addCount(t.Transitions, encodeKey(measure, typeString, head), transitionString)
	addCount(t.Transitions, encodeBackoffKey(measure, typeString, head, level), transitionString)
}

func (t *Tracker) RemoveTransition(measure model.Measure, typeString string, head Head, transitionString string, level Level) error {
	if err := removeCount(t.Transitions, encodeKey(measure, typeString, head), transitionString); err != nil {
		return err
	}
	return removeCount(t.Transitions, encodeBackoffKey(measure, typeString, head, level), transitionString)
}

func (t *Tracker) AddHead(measure model.Measure, typeString string, parentHead, head Head, level Level) {
	addCount(t.Heads, encodeKey(measure, typeString, parentHead), head.Length)
	addCount(t.Heads, encodeBackoffKey(measure, typeString, parentHead, level), head.Length)
}

func (t *Tracker) RemoveHead(measure model.Measure, typeString string, parentHead, head Head, level Level) error {
	if err := removeCount(t.Heads, encodeKey(measure, typeString, parentHead), head.Length); err != nil {
		return err
	}
	return removeCount(t.Heads, encodeBackoffKey(measure, typeString, parentHead, level), head.Length)
}

func (t *Tracker) AddMeasureHead(measure model.Measure, head Head) {
	addCount(t.MeasureHeads, measure, head.Length)
}

func (t *Tracker) RemoveMeasureHead(measure model.Measure, head Head) error {
	return removeCount(t.MeasureHeads, measure, head.Length)
}

// twoTierLogProbability is the shared smoothing scheme of the transition and
// head tables: Good-Turing over the primary conditioned row, plus an
// additive log-space backoff contribution whenever the primary count for the
// event is zero.
func twoTierLogProbability[E comparable](primary, backoff map[E]int, event E) float64 {
	if primary == nil && backoff == nil {
		return math.Inf(-1)
	}

	logProbability := 0.0

	count := 0
	if primary != nil {
		count = primary[event]
		logProbability = math.Log(goodTuringProbability(primary, count))
	}

	if count == 0 && backoff != nil {
		logProbability += math.Log(goodTuringProbability(backoff, backoff[event]))
	}

	return logProbability
}

func (t *Tracker) TransitionLogProbability(measure model.Measure, typeString string, head Head, transitionString string, level Level) float64 {
	primary := t.Transitions[encodeKey(measure, typeString, head)]
	backoff := t.Transitions[encodeBackoffKey(measure, typeString, head, level)]
	return twoTierLogProbability(primary, backoff, transitionString)
}

func (t *Tracker) HeadLogProbability(measure model.Measure, typeString string, parentHead, head Head, level Level) float64 {
	primary := t.Heads[encodeKey(measure, typeString, parentHead)]
	backoff := t.Heads[encodeBackoffKey(measure, typeString, parentHead, level)]
	return twoTierLogProbability(primary, backoff, head.Length)
}

func (t *Tracker) MeasureHeadLogProbability(measure model.Measure, head Head) float64 {
	conditioned := t.MeasureHeads[measure]
	if conditioned == nil {
		return math.Inf(-1)
	}
	return math.Log(goodTuringProbability(conditioned, conditioned[head.Length]))
}

func (t *Tracker) IsEmpty() bool {
	return len(t.Transitions) == 0 && len(t.Heads) == 0 && len(t.MeasureHeads) == 0
}

func (t *Tracker) DeepCopy() *Tracker {
	return &Tracker{
		Transitions:  copyTable(t.Transitions),
		Heads:        copyTable(t.Heads),
		MeasureHeads: copyTable(t.MeasureHeads),
	}
}

func copyTable[K comparable, E comparable](table map[K]map[E]int) map[K]map[E]int {
	out := make(map[K]map[E]int, len(table))
	for key, conditioned := range table {
		row := make(map[E]int, len(conditioned))
		for event, count := range conditioned {
			row[event] = count
		}
		out[key] = row
	}
	return out
}
