package engine

import (
	"github.com/benbjohnson/immutable"
	"github.com/pkg/errors"

	"github.com/cottand/slottype/graph"
	"github.com/cottand/slottype/hierarchy"
	"github.com/cottand/slottype/typeexpr"
	"github.com/cottand/slottype/util"
)

// lookup resolves generics against one snapshot of the bindings
type lookup struct {
	h        *hierarchy.Hierarchy
	bindings *immutable.Map[string, *nodeBindings]
}

type lookupOpts struct {
	// skip is not considered as a source of constraints
	skip graph.Slot
	// checkOutputs includes the output and previous slots of the node
	checkOutputs bool
	// simulated overrides the peer types of the slots it contains, connected or not
	simulated map[graph.Slot][]typeexpr.Expr
	// path holds the nodes whose slots are being resolved further up the call stack
	path *nodePath
}

type nodePath struct {
	id   string
	prev *nodePath
}

func (p *nodePath) push(id string) *nodePath {
	return &nodePath{id: id, prev: p}
}

func (p *nodePath) contains(id string) bool {
	for ; p != nil; p = p.prev {
		if p.id == id {
			return true
		}
	}
	return false
}

func (l *lookup) externalBinding(node graph.Node, g string) (typeexpr.Expr, bool) {
	bound, ok := l.bindings.Get(node.ID())
	if !ok {
		return typeexpr.Expr{}, false
	}
	return bound.Get(g)
}

// dereference substitutes the external bindings of node into expr
func (l *lookup) dereference(node graph.Node, expr typeexpr.Expr) typeexpr.Expr {
	bound, ok := l.bindings.Get(node.ID())
	if !ok {
		return expr
	}
	mapping := make(map[string]typeexpr.Expr, bound.Len())
	itr := bound.Iterator()
	for !itr.Done() {
		g, ground, _ := itr.Next()
		mapping[g] = ground
	}
	return expr.Substitute(mapping)
}

// explicitVersionsOf returns every concrete version expr can take on node
func (l *lookup) explicitVersionsOf(node graph.Node, expr typeexpr.Expr, opts lookupOpts) ([]typeexpr.Expr, error) {
	if expr.IsStandardGeneric() {
		return []typeexpr.Expr{typeexpr.Standard()}, nil
	}
	if expr.IsGeneric() {
		return l.boundTypesOf(node, expr.Name, opts)
	}
	if len(expr.Args) == 0 {
		return []typeexpr.Expr{expr}, nil
	}
	options := make([][]typeexpr.Expr, 0, len(expr.Args))
	for _, arg := range expr.Args {
		versions, err := l.explicitVersionsOf(node, arg, opts)
		if err != nil {
			return nil, err
		}
		options = append(options, versions)
	}
	combos := util.Combine(options)
	ret := make([]typeexpr.Expr, 0, len(combos))
	for _, args := range combos {
		ret = append(ret, typeexpr.Named(expr.Name, args...))
	}
	return ret, nil
}

// boundTypesOf returns the types generic g can take on node: its external binding if
// there is one, otherwise the nearest common parents of what every connected slot
// mentioning g constrains it to.
//
// [*] means g is unconstrained, an empty result means the constraints disagree.
func (l *lookup) boundTypesOf(node graph.Node, g string, opts lookupOpts) ([]typeexpr.Expr, error) {
	if bound, ok := l.externalBinding(node, g); ok {
		return []typeexpr.Expr{bound}, nil
	}
	var contributions [][]typeexpr.Expr
	for _, s := range node.Slots() {
		if s == opts.skip {
			continue
		}
		if !opts.checkOutputs && !s.IsSuperior() {
			continue
		}
		if _, simulated := opts.simulated[s]; !simulated && s.Peer() == nil {
			continue
		}
		types, mentions, err := l.connectionTypes(s, g, opts)
		if err != nil {
			return nil, err
		}
		if mentions {
			contributions = append(contributions, types)
		}
	}
	if len(contributions) == 0 {
		return []typeexpr.Expr{typeexpr.Standard()}, nil
	}
	for _, c := range contributions {
		if len(c) == 0 {
			return []typeexpr.Expr{}, nil
		}
	}

	acc := contributions[0]
	for _, c := range contributions[1:] {
		var next []typeexpr.Expr
		for _, a := range acc {
			for _, b := range c {
				parents, err := l.h.NearestCommonParents(a, b)
				if err != nil {
					return nil, err
				}
				next = append(next, parents...)
			}
		}
		acc = typeexpr.Unique(next)
	}
	return l.h.RemoveSubsumed(acc), nil
}

// connectionTypes returns what slot s constrains generic g to, going through its peer.
// mentions is false when the check of s does not contain g.
func (l *lookup) connectionTypes(s graph.Slot, g string, opts lookupOpts) (types []typeexpr.Expr, mentions bool, err error) {
	if s.Check() == "" {
		return nil, false, nil
	}
	own, err := typeexpr.Parse(s.Check())
	if err != nil {
		return nil, false, err
	}
	if !own.ContainsGeneric(g) {
		return nil, false, nil
	}

	peerTypes, simulated := opts.simulated[s]
	if !simulated {
		opts.path = opts.path.push(s.Node().ID())
		peerTypes, err = l.peerTypes(s.Peer(), opts)
		if err != nil {
			return nil, true, err
		}
	}
	if own.Name == g {
		return peerTypes, true, nil
	}

	var matches []typeexpr.Expr
	for _, pt := range peerTypes {
		var found []typeexpr.Expr
		var related bool
		if s.IsSuperior() {
			found, related = l.h.MatchingTypesInDescendant(g, own, pt)
		} else {
			found, related = l.h.MatchingTypesInAncestor(g, own, pt)
		}
		if related {
			matches = append(matches, found...)
		}
	}
	if len(matches) == 0 {
		return []typeexpr.Expr{}, true, nil
	}
	types, err = l.h.NearestCommonParents(matches...)
	return types, true, err
}

func (l *lookup) peerTypes(peer graph.Slot, opts lookupOpts) ([]typeexpr.Expr, error) {
	if peer == nil {
		return nil, errors.New("slot has no peer")
	}
	if peer.Check() == "" {
		return []typeexpr.Expr{typeexpr.Standard()}, nil
	}
	if opts.path.contains(peer.Node().ID()) {
		return nil, errors.Errorf("node '%s' is connected to itself through its slots", peer.Node().ID())
	}
	expr, err := typeexpr.Parse(peer.Check())
	if err != nil {
		return nil, err
	}
	return l.explicitVersionsOf(peer.Node(), expr, lookupOpts{
		skip:         peer,
		checkOutputs: true,
		simulated:    opts.simulated,
		path:         opts.path,
	})
}

// lookAhead checks that some of types fulfills parent, and that the chain of upward
// slots above parent stays typeable once a slot of those types is plugged into it
func (l *lookup) lookAhead(parent graph.Slot, types []typeexpr.Expr) (bool, error) {
	visited := util.NewEmptySet[string]()
	for {
		node := parent.Node()
		if visited.Contains(node.ID()) {
			return false, errors.Errorf("node '%s' is its own ancestor", node.ID())
		}
		visited.Add(node.ID())

		declared, err := typeexpr.Parse(parent.Check())
		if err != nil {
			return false, err
		}
		expected := l.dereference(node, declared)
		compatible := false
		for _, t := range types {
			ok, err := l.h.Fulfills(t, expected)
			if err != nil {
				return false, err
			}
			if ok {
				compatible = true
				break
			}
		}
		if !compatible {
			return false, nil
		}

		up := graph.UpwardSlot(node)
		if up == nil || up.Check() == "" {
			return true, nil
		}
		upExpr, err := typeexpr.Parse(up.Check())
		if err != nil {
			return false, err
		}
		upTypes, err := l.explicitVersionsOf(node, upExpr, lookupOpts{
			skip:         up,
			checkOutputs: false,
			simulated:    map[graph.Slot][]typeexpr.Expr{parent: types},
		})
		if err != nil {
			return false, err
		}
		if len(upTypes) == 0 {
			return false, nil
		}
		grandparent := up.Peer()
		if grandparent == nil || grandparent.Check() == "" {
			return true, nil
		}
		parent, types = grandparent, upTypes
	}
}
