package lpcfg

import "strconv"

// Head describes the most salient (longest) note under a node: its length and
// onset offset as fractions of the node's span, and whether the note began
// before the node (a tie into it).
type Head struct {
	Length      float64
	Offset      float64
	StartsAsTie bool
}

// Compare orders heads by salience. Longer wins, then earlier onset, then a
// true onset over a tied continuation.
func (h Head) Compare(other Head) int {
	if h.Length != other.Length {
		if h.Length > other.Length {
			return 1
		}
		return -1
	}
	if h.Offset != other.Offset {
		if h.Offset < other.Offset {
			return 1
		}
		return -1
	}
	if h.StartsAsTie != other.StartsAsTie {
		if !h.StartsAsTie {
			return 1
		}
		return -1
	}
	return 0
}

func (h Head) String() string {
	s := strconv.FormatFloat(h.Length, 'g', -1, 64)
	if h.StartsAsTie {
		s += "t"
	}
	return s
}
