package lpcfg

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jsphweid/meterdetect/model"
)

func init() {
	gob.Register(&Terminal{})
	gob.Register(&Nonterminal{})
}

// Grammar is the trained model: the list of measure trees it has seen plus a
// Tracker whose counts are always exactly the aggregate of those trees.
type Grammar struct {
	Trees         []*Tree
	Probabilities *Tracker
}

func NewGrammar() *Grammar {
	return &Grammar{Probabilities: NewTracker()}
}

func (g *Grammar) AddTree(tree *Tree) {
	g.Trees = append(g.Trees, tree)
	if err := g.updateCounts(tree.Root, tree.Head(), tree.Measure(), true); err != nil {
		panic("Grammar counts corrupted on add: " + err.Error())
	}
}

// ExtractTree removes one tree structurally equal to the given one, backing
// its counts out of the tracker. Used for leave-one-out evaluation.
func (g *Grammar) ExtractTree(toExtract *Tree) error {
	for i, tree := range g.Trees {
		if tree.Equals(toExtract) {
			g.Trees = append(g.Trees[:i], g.Trees[i+1:]...)
			if err := g.updateCounts(toExtract.Root, toExtract.Head(), toExtract.Measure(), false); err != nil {
				return fmt.Errorf("extracting tree %v: %w", toExtract, err)
			}
			return nil
		}
	}
	return fmt.Errorf("extracting tree %v: %w", toExtract, ErrElementNotFound)
}

func (g *Grammar) updateCounts(node Node, parentHead Head, measure model.Measure, adding bool) error {
	nonterminal, ok := node.(*Nonterminal)
	if !ok {
		return nil
	}

	transitionString := nonterminal.TransitionString()
	typeString := nonterminal.TypeString()
	head := nonterminal.Head()
	level := nonterminal.Level

	if adding {
		g.Probabilities.AddTransition(measure, typeString, head, transitionString, level)
	} else if err := g.Probabilities.RemoveTransition(measure, typeString, head, transitionString, level); err != nil {
		return err
	}

	// Only WEAK nodes draw their head independently; STRONG nodes share
	// their parent's head by construction.
	if nonterminal.Type == WeakType && level != MeasureLevel {
		if adding {
			g.Probabilities.AddHead(measure, typeString, parentHead, head, level)
		} else if err := g.Probabilities.RemoveHead(measure, typeString, parentHead, head, level); err != nil {
			return err
		}
	} else if level == MeasureLevel {
		if adding {
			g.Probabilities.AddMeasureHead(measure, head)
		} else if err := g.Probabilities.RemoveMeasureHead(measure, head); err != nil {
			return err
		}
	}

	for _, child := range nonterminal.Children {
		if err := g.updateCounts(child, head, measure, adding); err != nil {
			return err
		}
	}
	return nil
}

// TreeLogProbability scores a tree against the current counts, top-down:
// every nonterminal contributes its transition probability, WEAK nodes add
// their head probability given the parent head, and the root adds the
// measure head probability.
func (g *Grammar) TreeLogProbability(tree *Tree) float64 {
	return g.nodeLogProbability(tree.Root, tree.Head(), tree.Measure())
}

func (g *Grammar) nodeLogProbability(node Node, parentHead Head, measure model.Measure) float64 {
	nonterminal, ok := node.(*Nonterminal)
	if !ok {
		return 0.0
	}

	typeString := nonterminal.TypeString()
	head := nonterminal.Head()
	level := nonterminal.Level

	logProbability := g.Probabilities.TransitionLogProbability(measure, typeString, head, nonterminal.TransitionString(), level)

	if nonterminal.Type == WeakType && level != MeasureLevel {
		logProbability += g.Probabilities.HeadLogProbability(measure, typeString, parentHead, head, level)
	} else if level == MeasureLevel {
		logProbability += g.Probabilities.MeasureHeadLogProbability(measure, head)
	}

	for _, child := range nonterminal.Children {
		logProbability += g.nodeLogProbability(child, head, measure)
	}

	return logProbability
}

// Measures returns every measure type seen in any contained tree, sorted for
// deterministic hypothesis branching.
func (g *Grammar) Measures() []model.Measure {
	seen := make(map[model.Measure]bool)
	var measures []model.Measure
	for _, tree := range g.Trees {
		if !seen[tree.Measure()] {
			seen[tree.Measure()] = true
			measures = append(measures, tree.Measure())
		}
	}
	sort.Slice(measures, func(i, j int) bool {
		return measures[i].Compare(measures[j]) < 0
	})
	return measures
}

func (g *Grammar) DeepCopy() *Grammar {
	trees := make([]*Tree, len(g.Trees))
	for i, tree := range g.Trees {
		trees[i] = tree.DeepCopy()
	}
	return &Grammar{Trees: trees, Probabilities: g.Probabilities.DeepCopy()}
}

func (g *Grammar) Encode(w io.Writer) error {
	zw := gzip.NewWriter(w)
	if err := gob.NewEncoder(zw).Encode(g); err != nil {
		return err
	}
	return zw.Close()
}

func Decode(r io.Reader) (*Grammar, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var g Grammar
	if err := gob.NewDecoder(zr).Decode(&g); err != nil {
		return nil, err
	}
	if g.Probabilities == nil {
		g.Probabilities = NewTracker()
	}
	return &g, nil
}

func Save(g *Grammar, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return g.Encode(f)
}

func Load(path string) (*Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
