// Package graph is the view of a block graph the connection checker works on.
//
// Hosts own their nodes and slots and implement Node and Slot over them. Workspace
// is a host that keeps the whole graph in memory.
package graph

// SlotKind is the role of a slot on its node
type SlotKind uint8

const (
	// Output plugs a node into an Input of its parent
	Output SlotKind = iota
	// Previous plugs a node under the Next of the node before it
	Previous
	// Next is where the following node plugs its Previous
	Next
	// Input is where a child node plugs its Output
	Input
)

func (k SlotKind) String() string {
	switch k {
	case Output:
		return "output"
	case Previous:
		return "previous"
	case Next:
		return "next"
	case Input:
		return "input"
	default:
		return "invalid"
	}
}

// IsSuperior reports whether slots of kind k are the parent side of their connections
func (k SlotKind) IsSuperior() bool {
	return k == Next || k == Input
}

// Opposite is the kind of slot a slot of kind k connects to
func (k SlotKind) Opposite() SlotKind {
	switch k {
	case Output:
		return Input
	case Input:
		return Output
	case Previous:
		return Next
	default:
		return Previous
	}
}

// Slot is a typed connection point of a Node.
//
// Implementations must be comparable (usually pointers), since slots are used as map keys.
type Slot interface {
	// Check is the type expression the slot is declared with, or empty if it accepts anything
	Check() string
	// Peer is the slot this one is connected to, or nil
	Peer() Slot
	IsSuperior() bool
	Node() Node
	Kind() SlotKind
	// InputName identifies the slot within its node, for error messages
	InputName() string
}

type Node interface {
	// ID must be stable for the lifetime of the node
	ID() string
	// Slots returns the output, previous and next slots the node has, in that order,
	// followed by its inputs
	Slots() []Slot
}

// Host can rewire the graph. Connect must reject connections that do not type-check.
type Host interface {
	Disconnect(s Slot)
	Connect(a, b Slot) error
}

// Checker decides whether two slots may be connected
type Checker interface {
	Check(a, b Slot) (bool, error)
}

// UpwardSlot returns the output or previous slot of n, or nil if it has neither
func UpwardSlot(n Node) Slot {
	for _, s := range n.Slots() {
		if s.Kind() == Output || s.Kind() == Previous {
			return s
		}
	}
	return nil
}
