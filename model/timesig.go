package model

// TimeSignatureChange marks a notated time signature taking effect at a tick.
type TimeSignatureChange struct {
	Tick        int64
	Time        int64
	Numerator   int
	Denominator int
}

// Notes32PerBar is the number of 32nd-note tatums in one bar of this
// signature.
func (t TimeSignatureChange) Notes32PerBar() int {
	return 32 * t.Numerator / t.Denominator
}

// MetricalMeasure maps the notated signature onto a grammar measure type.
// Compound meters (numerator a multiple of 3 above 3) get 3 sub beats per
// beat, everything else gets 2.
func (t TimeSignatureChange) MetricalMeasure() Measure {
	if t.Numerator > 3 && t.Numerator%3 == 0 {
		return Measure{BeatsPerMeasure: t.Numerator / 3, SubBeatsPerBeat: 3}
	}
	return Measure{BeatsPerMeasure: t.Numerator, SubBeatsPerBeat: 2}
}
