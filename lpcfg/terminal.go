package lpcfg

import (
	"fmt"
	"os"
	"strings"

	"github.com/jsphweid/meterdetect/util"
)

// Terminal is a leaf of the rhythmic grammar: the quantum pattern of one
// sub beat (or of a whole beat that never subdivides). Equality is defined on
// the reduced pattern only, so two surfaces that differ only in tatum
// resolution are the same grammar symbol.
type Terminal struct {
	OriginalPattern []Quantum
	ReducedPattern  []Quantum
	BaseLength      int
}

func NewTerminal(pattern []Quantum, baseLength int) *Terminal {
	t := &Terminal{
		OriginalPattern: pattern,
		BaseLength:      baseLength,
	}
	if len(pattern) > 0 {
		t.ReducedPattern = reducePattern(pattern)
	}
	return t
}

func RestTerminal() *Terminal {
	return NewTerminal([]Quantum{Rest}, 1)
}

// reducePattern divides every constituent run length by the GCF of all run
// lengths, preserving symbol order.
func reducePattern(pattern []Quantum) []Quantum {
	gcf := patternGCF(pattern)

	reduced := make([]Quantum, 0, len(pattern)/gcf)
	inRest := pattern[0] == Rest
	currentLength := 1

	appendRun := func() {
		runLength := currentLength / gcf
		if inRest {
			for j := 0; j < runLength; j++ {
				reduced = append(reduced, Rest)
			}
			return
		}
		// First symbol of the run survives as-is in case the pattern
		// begins with a TIE carried in from a previous node.
		if len(reduced) == 0 {
			reduced = append(reduced, pattern[0])
		} else {
			reduced = append(reduced, Onset)
		}
		for j := 1; j < runLength; j++ {
			reduced = append(reduced, Tie)
		}
	}

	for i := 1; i < len(pattern); i++ {
		switch pattern[i] {
		case Rest:
			if inRest {
				currentLength++
			} else {
				appendRun()
				inRest = true
				currentLength = 1
			}
		case Onset:
			appendRun()
			inRest = false
			currentLength = 1
		case Tie:
			if inRest {
				fmt.Fprintln(os.Stderr, "ERROR: TIE after REST - Treating as ONSET")
				appendRun()
				inRest = false
				currentLength = 1
			} else {
				currentLength++
			}
		}
	}
	appendRun()

	return reduced
}

func patternGCF(pattern []Quantum) int {
	gcf := 0
	currentLength := 1
	inRest := pattern[0] == Rest

	closeRun := func() {
		if gcf == 0 {
			gcf = currentLength
		} else {
			gcf = util.GCF(gcf, currentLength)
		}
	}

	for i := 1; i < len(pattern); i++ {
		if gcf == 1 {
			return 1
		}
		switch pattern[i] {
		case Rest:
			if inRest {
				currentLength++
			} else {
				closeRun()
				inRest = true
				currentLength = 1
			}
		case Onset:
			closeRun()
			inRest = false
			currentLength = 1
		case Tie:
			if inRest {
				closeRun()
				inRest = false
				currentLength = 1
			} else {
				currentLength++
			}
		}
	}
	closeRun()

	return gcf
}

func (t *Terminal) IsEmpty() bool {
	for _, q := range t.ReducedPattern {
		if q != Rest {
			return false
		}
	}
	return true
}

func (t *Terminal) StartsWithRest() bool {
	return len(t.ReducedPattern) == 0 || t.ReducedPattern[0] == Rest
}

// Head scans the unreduced pattern for the longest contiguous note and
// normalizes its length and offset by the node span, scaled by BaseLength.
func (t *Terminal) Head() Head {
	if len(t.OriginalPattern) == 0 {
		return Head{}
	}

	maxNoteLength := 0
	maxNoteIndex := 0
	currentNoteLength := 0
	currentNoteIndex := 0

	for i, q := range t.OriginalPattern {
		if q == Onset || q == Rest {
			if currentNoteLength > maxNoteLength {
				maxNoteLength = currentNoteLength
				maxNoteIndex = currentNoteIndex
			}
			currentNoteLength = 0
			currentNoteIndex = i
		}
		if q == Onset || q == Tie {
			currentNoteLength++
		}
	}
	if currentNoteLength > maxNoteLength {
		maxNoteLength = currentNoteLength
		maxNoteIndex = currentNoteIndex
	}

	span := float64(len(t.OriginalPattern))
	return Head{
		Length:      float64(maxNoteLength) / span * float64(t.BaseLength),
		Offset:      float64(maxNoteIndex) / span * float64(t.BaseLength),
		StartsAsTie: t.OriginalPattern[maxNoteIndex] == Tie,
	}
}

func (t *Terminal) Length() int {
	return t.BaseLength
}

func (t *Terminal) Equals(other Node) bool {
	o, ok := other.(*Terminal)
	if !ok {
		return false
	}
	if len(t.ReducedPattern) != len(o.ReducedPattern) {
		return false
	}
	for i, q := range t.ReducedPattern {
		if q != o.ReducedPattern[i] {
			return false
		}
	}
	return true
}

func (t *Terminal) DeepCopy() Node {
	original := make([]Quantum, len(t.OriginalPattern))
	copy(original, t.OriginalPattern)
	reduced := make([]Quantum, len(t.ReducedPattern))
	copy(reduced, t.ReducedPattern)
	return &Terminal{
		OriginalPattern: original,
		ReducedPattern:  reduced,
		BaseLength:      t.BaseLength,
	}
}

func (t *Terminal) String() string {
	parts := make([]string, len(t.ReducedPattern))
	for i, q := range t.ReducedPattern {
		parts[i] = q.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
