package lpcfg

// Quantum is the rhythmic content of a single tatum slot.
type Quantum uint8

const (
	Rest Quantum = iota
	Onset
	Tie
)

func (q Quantum) String() string {
	switch q {
	case Onset:
		return "ONSET"
	case Tie:
		return "TIE"
	}
	return "REST"
}
