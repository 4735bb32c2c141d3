package model

// Config carries the per-run knobs of the hypothesis search. Beam caps the
// number of live joint hypotheses after each step; 0 means unbounded.
type Config struct {
	Verbose bool
	Beam    int
}
