// Package engine answers whether two slots of a block graph may be connected, given a
// type hierarchy and the generics bound on each node.
//
// Generics are bound in two ways. External bindings are set with BindType and kept
// per node id. Structural bindings are inferred on every query from the slots a node
// is connected through, and never stored.
package engine

import (
	"github.com/benbjohnson/immutable"
	"github.com/pkg/errors"

	"github.com/cottand/slottype/graph"
	"github.com/cottand/slottype/hierarchy"
	"github.com/cottand/slottype/internal/log"
	"github.com/cottand/slottype/typeerr"
	"github.com/cottand/slottype/typeexpr"
	"github.com/cottand/slottype/util"
)

var logger = log.DefaultLogger.With("section", "engine")

var errNoHierarchy = errors.New("no type hierarchy loaded")

type nodeBindings = immutable.Map[string, typeexpr.Expr]

// Engine is not safe for concurrent use. Queries do not mutate it, so callers only
// need to serialise them against Init, BindType, UnbindType and ForgetNode.
type Engine struct {
	hierarchy *hierarchy.Hierarchy
	// node id -> generic name -> ground type
	bindings *immutable.Map[string, *nodeBindings]
	host     graph.Host
}

var (
	_ graph.Checker   = &Engine{}
	_ graph.Forgetter = &Engine{}
)

// New returns an Engine over h. h may be nil, in which case Init must be called
// before anything is checked.
func New(h *hierarchy.Hierarchy) *Engine {
	return &Engine{
		hierarchy: h,
		bindings:  immutable.NewMap[string, *nodeBindings](nil),
	}
}

// Init loads or reloads the type hierarchy. External bindings are kept; ones that no
// longer name declared types fail the checks that use them.
func (e *Engine) Init(def hierarchy.Definition) error {
	h, err := hierarchy.New(def)
	if err != nil {
		return err
	}
	e.SetHierarchy(h)
	return nil
}

func (e *Engine) SetHierarchy(h *hierarchy.Hierarchy) {
	e.hierarchy = h
}

func (e *Engine) Hierarchy() *hierarchy.Hierarchy {
	return e.hierarchy
}

// SetHost sets the host BindType rewires nodes through. Without one, BindType only
// records the binding.
func (e *Engine) SetHost(host graph.Host) {
	e.host = host
}

func (e *Engine) newLookup() (*lookup, error) {
	if e.hierarchy == nil {
		return nil, errNoHierarchy
	}
	return &lookup{h: e.hierarchy, bindings: e.bindings}, nil
}

// Check reports whether slots a and b, in any order, may be connected.
//
// The child's possible types must fulfill the parent's declared type. Then the
// connection is assumed made and its consequences are followed up the chain of
// output and previous slots above the parent: every node on the way must still be
// able to type its upward slot, and that type must fit whatever it is plugged into.
//
// A false result means the types are incompatible. Internal failures are returned as
// a typeerr.ConnectionCheckError and come with a false result.
func (e *Engine) Check(a, b graph.Slot) (ok bool, err error) {
	parent, child := a, b
	if !parent.IsSuperior() {
		parent, child = b, a
	}
	defer func() {
		if err != nil {
			ok = false
			err = typeerr.New(typeerr.ConnectionCheckError{
				NodeID:      child.Node().ID(),
				ParentInput: parent.InputName(),
				ChildInput:  child.InputName(),
				From:        err,
			})
		}
	}()
	if parent.Check() == "" || child.Check() == "" {
		return true, nil
	}
	l, err := e.newLookup()
	if err != nil {
		return false, err
	}
	childExpr, err := typeexpr.Parse(child.Check())
	if err != nil {
		return false, err
	}
	types, err := l.explicitVersionsOf(child.Node(), childExpr, lookupOpts{skip: child, checkOutputs: true})
	if err != nil {
		return false, err
	}
	ok, err = l.lookAhead(parent, types)
	logger.Debug("checked connection",
		"parent", parent.Node().ID()+"."+parent.InputName(),
		"child", child.Node().ID()+"."+child.InputName(),
		"childTypes", typeexpr.Strings(types),
		"ok", ok)
	return ok, err
}

// BindType binds generic on node to the ground type text, then disconnects and
// reconnects every slot of node through the host, so connections the binding breaks
// are dropped.
func (e *Engine) BindType(node graph.Node, generic, text string) error {
	generic = typeexpr.NormaliseName(generic)
	if !typeexpr.IsGeneric(generic) || generic == typeexpr.StandardGeneric {
		return typeerr.New(typeerr.InvalidTypeNameError{Name: generic, Reason: "only generics can be bound"})
	}
	expr, err := typeexpr.Parse(text)
	if err != nil {
		return err
	}
	if !expr.IsGround() {
		return typeerr.New(typeerr.GenericBindingError{Generic: generic, Type: expr.String()})
	}
	if e.hierarchy == nil {
		return errNoHierarchy
	}
	if err := e.hierarchy.Validate(expr); err != nil {
		return err
	}

	bound, ok := e.bindings.Get(node.ID())
	if !ok {
		bound = immutable.NewMap[string, typeexpr.Expr](nil)
	}
	e.bindings = e.bindings.Set(node.ID(), bound.Set(generic, expr))
	logger.Debug("bound generic", "node", node.ID(), "generic", generic, "type", expr.String())

	e.rewire(node)
	return nil
}

func (e *Engine) rewire(node graph.Node) {
	if e.host == nil {
		return
	}
	// own slot, peer slot
	var links []util.Pair[graph.Slot, graph.Slot]
	for _, s := range node.Slots() {
		if peer := s.Peer(); peer != nil {
			links = append(links, util.NewPair(s, peer))
		}
	}
	for _, l := range links {
		e.host.Disconnect(l.Fst)
	}
	for _, l := range links {
		if err := e.host.Connect(l.Fst, l.Snd); err != nil {
			logger.Info("dropped connection after binding",
				"node", node.ID(),
				"slot", l.Fst.InputName(),
				"peer", l.Snd.Node().ID()+"."+l.Snd.InputName(),
				"reason", err.Error())
		}
	}
}

// UnbindType removes the external binding of generic on node, and reports whether
// there was one
func (e *Engine) UnbindType(node graph.Node, generic string) bool {
	generic = typeexpr.NormaliseName(generic)
	bound, ok := e.bindings.Get(node.ID())
	if !ok {
		return false
	}
	if _, ok := bound.Get(generic); !ok {
		return false
	}
	bound = bound.Delete(generic)
	if bound.Len() == 0 {
		e.bindings = e.bindings.Delete(node.ID())
	} else {
		e.bindings = e.bindings.Set(node.ID(), bound)
	}
	return true
}

// ForgetNode drops every external binding of node
func (e *Engine) ForgetNode(node graph.Node) {
	e.bindings = e.bindings.Delete(node.ID())
}

// Bindings returns the external bindings of node, by generic name
func (e *Engine) Bindings(node graph.Node) map[string]typeexpr.Expr {
	ret := make(map[string]typeexpr.Expr)
	bound, ok := e.bindings.Get(node.ID())
	if !ok {
		return ret
	}
	itr := bound.Iterator()
	for !itr.Done() {
		g, expr, _ := itr.Next()
		ret[g] = expr.Clone()
	}
	return ret
}

// ExplicitTypes returns the types generic can take on node. The result is empty both
// when generic is unconstrained and when its constraints cannot be unified.
func (e *Engine) ExplicitTypes(node graph.Node, generic string) ([]string, error) {
	l, err := e.newLookup()
	if err == nil {
		var types []typeexpr.Expr
		types, err = l.boundTypesOf(node, typeexpr.NormaliseName(generic), lookupOpts{checkOutputs: true})
		if err == nil {
			return explicitStrings(types), nil
		}
	}
	return nil, typeerr.New(typeerr.ConnectionCheckError{NodeID: node.ID(), From: err})
}

// ExplicitTypesOfConnection returns the types the declared check of slot can take,
// with its generics resolved on its node
func (e *Engine) ExplicitTypesOfConnection(slot graph.Slot) ([]string, error) {
	types, err := e.explicitTypesOfConnection(slot)
	if err != nil {
		return nil, typeerr.New(typeerr.ConnectionCheckError{NodeID: slot.Node().ID(), ChildInput: slot.InputName(), From: err})
	}
	return explicitStrings(types), nil
}

func (e *Engine) explicitTypesOfConnection(slot graph.Slot) ([]typeexpr.Expr, error) {
	l, err := e.newLookup()
	if err != nil {
		return nil, err
	}
	if slot.Check() == "" {
		return nil, nil
	}
	expr, err := typeexpr.Parse(slot.Check())
	if err != nil {
		return nil, err
	}
	return l.explicitVersionsOf(slot.Node(), expr, lookupOpts{checkOutputs: true})
}

func explicitStrings(types []typeexpr.Expr) []string {
	if len(types) == 0 || (len(types) == 1 && types[0].IsStandardGeneric()) {
		return []string{}
	}
	return typeexpr.Strings(types)
}
