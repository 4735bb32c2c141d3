package joint

import (
	"fmt"
	"sort"

	"github.com/jsphweid/meterdetect/model"
)

// Model drives the joint search over a note stream: feed every onset batch
// through HandleIncoming in time order, then call Close once. Hypotheses are
// kept sorted by the joint order; an optional beam caps their number after
// each step, since elimination alone does not bound the set.
type Model struct {
	hypotheses []*State
	beam       int
	verbose    bool
}

func NewModel(initial *State, cfg model.Config) *Model {
	return &Model{
		hypotheses: []*State{initial},
		beam:       cfg.Beam,
		verbose:    cfg.Verbose,
	}
}

func (m *Model) HandleIncoming(notes []model.Note) {
	if len(notes) == 0 {
		return
	}

	var newStates []*State
	for _, s := range m.hypotheses {
		newStates = append(newStates, s.HandleIncoming(notes)...)
	}
	m.hypotheses = m.settle(newStates)

	if m.verbose {
		fmt.Printf("%v:\n", notes)
		for _, s := range m.hypotheses {
			fmt.Printf("  %v\n", s)
		}
	}
}

func (m *Model) Close() {
	var newStates []*State
	for _, s := range m.hypotheses {
		newStates = append(newStates, s.Close()...)
	}
	m.hypotheses = m.settle(newStates)

	if m.verbose {
		fmt.Println("CLOSE:")
		for _, s := range m.hypotheses {
			fmt.Printf("  %v\n", s)
		}
	}
}

// settle sorts by the joint order, collapses duplicates, and applies the
// beam cap.
func (m *Model) settle(states []*State) []*State {
	sort.SliceStable(states, func(i, j int) bool {
		return states[i].Compare(states[j]) < 0
	})

	deduped := states[:0]
	for i, s := range states {
		if i > 0 && s.Compare(states[i-1]) == 0 {
			continue
		}
		deduped = append(deduped, s)
	}

	if m.beam > 0 && len(deduped) > m.beam {
		deduped = deduped[:m.beam]
	}
	return deduped
}

// Hypotheses returns the current hypothesis set, best first.
func (m *Model) Hypotheses() []*State {
	return m.hypotheses
}
