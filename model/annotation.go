package model

// MeterAnnotation is a hand-curated gold meter for a file, overriding
// whatever time signature the file itself declares.
type MeterAnnotation struct {
	Numerator         int
	Denominator       int
	AnacrusisSubBeats int
}

// MetricalMeasure maps the annotated signature onto a grammar measure type,
// with the same compound-meter rule as notated signatures.
func (a MeterAnnotation) MetricalMeasure() Measure {
	return TimeSignatureChange{Numerator: a.Numerator, Denominator: a.Denominator}.MetricalMeasure()
}
