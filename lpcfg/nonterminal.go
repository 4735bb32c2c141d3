package lpcfg

import (
	"strings"

	"github.com/jsphweid/meterdetect/model"
)

// Node is either a Terminal or a Nonterminal.
type Node interface {
	Head() Head
	Length() int
	IsEmpty() bool
	StartsWithRest() bool
	Equals(other Node) bool
	DeepCopy() Node
	String() string
}

type Level uint8

const (
	SubBeatLevel Level = iota
	BeatLevel
	MeasureLevel
)

func (l Level) String() string {
	switch l {
	case SubBeatLevel:
		return "SUB_BEAT"
	case BeatLevel:
		return "BEAT"
	}
	return "MEASURE"
}

type NodeType uint8

const (
	StrongType NodeType = iota
	WeakType
)

func (t NodeType) String() string {
	if t == WeakType {
		return "WEAK"
	}
	return "STRONG"
}

// Nonterminal is an internal grammar node. The measure root carries the
// Measure it was built under; beat and sub beat nodes carry a strong/weak
// type assigned by FixChildrenTypes.
type Nonterminal struct {
	Level    Level
	Type     NodeType
	Children []Node
	Meas     model.Measure
}

func NewNonterminal(level Level) *Nonterminal {
	return &Nonterminal{Level: level}
}

func NewMeasureNonterminal(measure model.Measure) *Nonterminal {
	return &Nonterminal{Level: MeasureLevel, Meas: measure}
}

func (n *Nonterminal) AddChild(child Node) {
	n.Children = append(n.Children, child)
}

// FixChildrenTypes marks the first child with the most salient head as
// STRONG and all others as WEAK.
func (n *Nonterminal) FixChildrenTypes() {
	strongIndex := -1
	var strongHead Head
	for i, child := range n.Children {
		if _, ok := child.(*Nonterminal); !ok {
			continue
		}
		head := child.Head()
		if strongIndex == -1 || head.Compare(strongHead) > 0 {
			strongIndex = i
			strongHead = head
		}
	}
	for i, child := range n.Children {
		if nt, ok := child.(*Nonterminal); ok {
			if i == strongIndex {
				nt.Type = StrongType
			} else {
				nt.Type = WeakType
			}
		}
	}
}

// TypeString is the conditioning symbol of this node: the measure descriptor
// for the root, or STRONG/WEAK plus the level below it.
func (n *Nonterminal) TypeString() string {
	if n.Level == MeasureLevel {
		return n.Meas.String()
	}
	return n.Type.String() + "_" + n.Level.String()
}

// TransitionString is the generative event of this node: its level plus the
// ordered symbols of its children.
func (n *Nonterminal) TransitionString() string {
	parts := make([]string, len(n.Children))
	for i, child := range n.Children {
		switch c := child.(type) {
		case *Nonterminal:
			parts[i] = c.TypeString()
		default:
			parts[i] = child.String()
		}
	}
	return n.Level.String() + "(" + strings.Join(parts, ",") + ")"
}

func (n *Nonterminal) Head() Head {
	var best Head
	for i, child := range n.Children {
		head := child.Head()
		if i == 0 || head.Compare(best) > 0 {
			best = head
		}
	}
	return best
}

func (n *Nonterminal) Length() int {
	length := 0
	for _, child := range n.Children {
		length += child.Length()
	}
	return length
}

func (n *Nonterminal) IsEmpty() bool {
	for _, child := range n.Children {
		if !child.IsEmpty() {
			return false
		}
	}
	return true
}

func (n *Nonterminal) StartsWithRest() bool {
	return len(n.Children) == 0 || n.Children[0].StartsWithRest()
}

func (n *Nonterminal) Equals(other Node) bool {
	o, ok := other.(*Nonterminal)
	if !ok {
		return false
	}
	if n.Level != o.Level || n.Type != o.Type || n.Meas != o.Meas {
		return false
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i, child := range n.Children {
		if !child.Equals(o.Children[i]) {
			return false
		}
	}
	return true
}

func (n *Nonterminal) DeepCopy() Node {
	children := make([]Node, len(n.Children))
	for i, child := range n.Children {
		children[i] = child.DeepCopy()
	}
	return &Nonterminal{
		Level:    n.Level,
		Type:     n.Type,
		Children: children,
		Meas:     n.Meas,
	}
}

func (n *Nonterminal) String() string {
	parts := make([]string, len(n.Children))
	for i, child := range n.Children {
		parts[i] = child.String()
	}
	return n.TypeString() + "(" + strings.Join(parts, " ") + ")"
}
