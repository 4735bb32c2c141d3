package model

import (
	"fmt"
	"sort"
)

// Beat is one slot of the tatum grid (32nd-note resolution). Measure is the
// measure number the slot falls in and Beat is the tatum index within that
// measure. Time is in microseconds.
type Beat struct {
	Measure int   `json:"measure"`
	Beat    int   `json:"beat"`
	Time    int64 `json:"time"`
	Tick    int64 `json:"tick"`
}

func (b Beat) Compare(o Beat) int {
	if b.Measure != o.Measure {
		return b.Measure - o.Measure
	}
	return b.Beat - o.Beat
}

func (b Beat) String() string {
	return fmt.Sprintf("(%d.%d,%d)", b.Measure, b.Beat, b.Time)
}

// OnsetBeatIndex returns the index of the grid slot closest to the given
// time, preferring the earlier slot on a tie.
func OnsetBeatIndex(beats []Beat, time int64) int {
	i := sort.Search(len(beats), func(i int) bool { return beats[i].Time > time })
	if i == 0 {
		return 0
	}
	if i >= len(beats) {
		return len(beats) - 1
	}
	if time-beats[i-1].Time <= beats[i].Time-time {
		return i - 1
	}
	return i
}

// OffsetBeatIndex returns the index of the grid slot closest to the given
// time. Unlike OnsetBeatIndex it leans late: the later slot wins whenever it
// is within one microsecond of being as close as the earlier one, so note
// offsets snap forward onto the slot they release into.
func OffsetBeatIndex(beats []Beat, time int64) int {
	i := sort.Search(len(beats), func(i int) bool { return beats[i].Time > time })
	if i == 0 {
		return 0
	}
	if i >= len(beats) {
		return len(beats) - 1
	}
	if beats[i].Time-time <= time-beats[i-1].Time+1 {
		return i
	}
	return i - 1
}
