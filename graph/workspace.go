package graph

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrIncompatible is returned by Workspace.Connect when the Checker rejects a connection
var ErrIncompatible = errors.New("slots are not type compatible")

// Forgetter is notified when a node is deleted, so it can drop what it keeps about it
type Forgetter interface {
	ForgetNode(n Node)
}

// Workspace is an in-memory Host. It is not concurrency safe.
type Workspace struct {
	checker Checker
	blocks  map[string]*Block
	order   []*Block
}

var _ Host = &Workspace{}

func NewWorkspace(checker Checker) *Workspace {
	return &Workspace{
		checker: checker,
		blocks:  make(map[string]*Block),
	}
}

// SetChecker replaces the Checker new connections are validated with
func (w *Workspace) SetChecker(checker Checker) {
	w.checker = checker
}

// SlotSpec declares a slot with a type check, empty to accept anything
type SlotSpec struct {
	Check string
}

type InputSpec struct {
	Name  string
	Check string
}

// BlockSpec declares a block. A block has at most one of Output and Previous.
type BlockSpec struct {
	// ID is generated when empty
	ID       string
	Output   *SlotSpec
	Previous *SlotSpec
	Next     *SlotSpec
	Inputs   []InputSpec
}

// NewBlock adds a block to the workspace
func (w *Workspace) NewBlock(spec BlockSpec) (*Block, error) {
	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := w.blocks[id]; exists {
		return nil, fmt.Errorf("block '%s' already exists", id)
	}
	if spec.Output != nil && spec.Previous != nil {
		return nil, fmt.Errorf("block '%s' cannot have both an output and a previous connection", id)
	}
	b := &Block{id: id}
	if spec.Output != nil {
		b.output = &Connection{block: b, kind: Output, name: "output", check: spec.Output.Check}
	}
	if spec.Previous != nil {
		b.previous = &Connection{block: b, kind: Previous, name: "previous", check: spec.Previous.Check}
	}
	if spec.Next != nil {
		b.next = &Connection{block: b, kind: Next, name: "next", check: spec.Next.Check}
	}
	for _, in := range spec.Inputs {
		if b.Input(in.Name) != nil {
			return nil, fmt.Errorf("block '%s' declares input '%s' more than once", id, in.Name)
		}
		b.inputs = append(b.inputs, &Connection{block: b, kind: Input, name: in.Name, check: in.Check})
	}
	w.blocks[id] = b
	w.order = append(w.order, b)
	return b, nil
}

func (w *Workspace) Block(id string) (*Block, bool) {
	b, ok := w.blocks[id]
	return b, ok
}

// Blocks returns every block in creation order
func (w *Workspace) Blocks() []*Block {
	return slices.Clone(w.order)
}

// DeleteBlock disconnects and removes a block. If the Checker is a Forgetter, it is
// told about the deletion.
func (w *Workspace) DeleteBlock(id string) bool {
	b, ok := w.blocks[id]
	if !ok {
		return false
	}
	for _, s := range b.Slots() {
		w.Disconnect(s)
	}
	delete(w.blocks, id)
	w.order = slices.DeleteFunc(w.order, func(other *Block) bool { return other == b })
	if forgetter, ok := w.checker.(Forgetter); ok {
		forgetter.ForgetNode(b)
	}
	return true
}

func asConnection(s Slot) (*Connection, error) {
	c, ok := s.(*Connection)
	if !ok || c == nil {
		return nil, fmt.Errorf("slot %v does not belong to a workspace", s)
	}
	return c, nil
}

// Connect plugs a and b together, in any order, if the Checker accepts it
func (w *Workspace) Connect(a, b Slot) error {
	ca, err := asConnection(a)
	if err != nil {
		return err
	}
	cb, err := asConnection(b)
	if err != nil {
		return err
	}
	if ca.kind.Opposite() != cb.kind {
		return fmt.Errorf("cannot connect %s '%s' to %s '%s'", ca.kind, ca.name, cb.kind, cb.name)
	}
	if ca.block == cb.block {
		return fmt.Errorf("cannot connect block '%s' to itself", ca.block.id)
	}
	if ca.peer != nil || cb.peer != nil {
		return fmt.Errorf("cannot connect '%s.%s' to '%s.%s': already connected", ca.block.id, ca.name, cb.block.id, cb.name)
	}
	child, parent := ca, cb
	if child.kind.IsSuperior() {
		child, parent = cb, ca
	}
	if parent.block.descendsFrom(child.block) {
		return fmt.Errorf("cannot connect '%s.%s' to '%s.%s': block '%s' would become its own ancestor",
			ca.block.id, ca.name, cb.block.id, cb.name, child.block.id)
	}
	if w.checker != nil {
		ok, err := w.checker.Check(ca, cb)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrapf(ErrIncompatible, "connect '%s.%s' to '%s.%s'", ca.block.id, ca.name, cb.block.id, cb.name)
		}
	}
	ca.peer = cb
	cb.peer = ca
	return nil
}

func (w *Workspace) Disconnect(s Slot) {
	c, err := asConnection(s)
	if err != nil || c.peer == nil {
		return
	}
	c.peer.peer = nil
	c.peer = nil
}

// Block is a Node of a Workspace
type Block struct {
	id                     string
	output, previous, next *Connection
	inputs                 []*Connection
}

var _ Node = &Block{}

func (b *Block) ID() string {
	return b.id
}

func (b *Block) Slots() []Slot {
	ret := make([]Slot, 0, 3+len(b.inputs))
	for _, c := range []*Connection{b.output, b.previous, b.next} {
		if c != nil {
			ret = append(ret, c)
		}
	}
	for _, c := range b.inputs {
		ret = append(ret, c)
	}
	return ret
}

// Output may be nil
func (b *Block) Output() *Connection { return b.output }

// upward is the output or previous slot of b, or nil
func (b *Block) upward() *Connection {
	if b.output != nil {
		return b.output
	}
	return b.previous
}

// descendsFrom reports whether anc is b or is reached from b by following upward slots
func (b *Block) descendsFrom(anc *Block) bool {
	seen := make(map[*Block]bool)
	for cur := b; cur != nil && !seen[cur]; {
		if cur == anc {
			return true
		}
		seen[cur] = true
		up := cur.upward()
		if up == nil || up.peer == nil {
			return false
		}
		cur = up.peer.block
	}
	return false
}

// Previous may be nil
func (b *Block) Previous() *Connection { return b.previous }

// Next may be nil
func (b *Block) Next() *Connection { return b.next }

// Input returns the input called name, or nil
func (b *Block) Input(name string) *Connection {
	for _, c := range b.inputs {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Slot finds a slot by name: "output", "previous", "next", or the name of an input
func (b *Block) Slot(name string) (*Connection, bool) {
	var c *Connection
	switch name {
	case "output":
		c = b.output
	case "previous":
		c = b.previous
	case "next":
		c = b.next
	default:
		c = b.Input(name)
	}
	return c, c != nil
}

// Connection is a Slot of a Block
type Connection struct {
	block *Block
	kind  SlotKind
	name  string
	check string
	peer  *Connection
}

var _ Slot = &Connection{}

func (c *Connection) Check() string { return c.check }

func (c *Connection) Peer() Slot {
	// a nil *Connection must not become a non-nil Slot
	if c.peer == nil {
		return nil
	}
	return c.peer
}

func (c *Connection) IsSuperior() bool  { return c.kind.IsSuperior() }
func (c *Connection) Node() Node        { return c.block }
func (c *Connection) Kind() SlotKind    { return c.kind }
func (c *Connection) InputName() string { return c.name }

func (c *Connection) String() string {
	return c.block.id + "." + c.name
}
