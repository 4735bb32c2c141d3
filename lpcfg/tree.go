package lpcfg

import "github.com/jsphweid/meterdetect/model"

// Tree is a full parse of one measure: a MEASURE-rooted Nonterminal.
type Tree struct {
	Root *Nonterminal
}

func (t *Tree) Measure() model.Measure {
	return t.Root.Meas
}

func (t *Tree) Head() Head {
	return t.Root.Head()
}

func (t *Tree) IsEmpty() bool {
	return t.Root.IsEmpty()
}

func (t *Tree) StartsWithRest() bool {
	return t.Root.StartsWithRest()
}

func (t *Tree) Equals(other *Tree) bool {
	return t.Root.Equals(other.Root)
}

func (t *Tree) DeepCopy() *Tree {
	return &Tree{Root: t.Root.DeepCopy().(*Nonterminal)}
}

func (t *Tree) String() string {
	return t.Root.String()
}
