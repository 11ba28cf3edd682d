package hierarchy

import (
	"slices"

	"github.com/cottand/slottype/typeerr"
	"github.com/cottand/slottype/typeexpr"
	"github.com/cottand/slottype/util"
)

func (h *Hierarchy) preprocess() error {
	if err := h.computeAncestors(); err != nil {
		return err
	}
	h.computeDescendants()
	h.computeNearestCommonAncestors()
	h.computeNearestCommonDescendants()
	return nil
}

// computeAncestors visits types once all of their supertypes have been visited,
// which also records the topological order in h.topo.
//
// Every round must visit at least one type: if a round makes no progress, the
// remaining types are on a cycle.
func (h *Hierarchy) computeAncestors() error {
	processed := util.NewEmptySet[TypeID]()
	h.topo = make([]TypeID, 0, len(h.defs))

	for round := 0; processed.Len() < len(h.defs); round++ {
		progressed := false
		for _, d := range h.defs {
			if processed.Contains(d.id) {
				continue
			}
			if !slices.ContainsFunc(d.superIDs, func(id TypeID) bool { return !processed.Contains(id) }) {
				h.visitAncestors(d)
				processed.Add(d.id)
				h.topo = append(h.topo, d.id)
				progressed = true
			}
		}
		if !progressed || round > len(h.defs) {
			var unprocessed []string
			for _, d := range h.defs {
				if !processed.Contains(d.id) {
					unprocessed = append(unprocessed, d.name)
				}
			}
			return typeerr.New(typeerr.CycleError{Unprocessed: unprocessed})
		}
	}
	return nil
}

// visitAncestors requires every super of d to be visited already
func (h *Hierarchy) visitAncestors(d *typeDef) {
	d.ancestors = idSet{d.id}
	d.ancestorParams = map[TypeID][]typeexpr.Expr{
		d.id: d.identityParams(),
	}
	for i, superID := range d.superIDs {
		superDef := h.defs[superID]
		declaredArgs := d.supers[i].Args
		d.ancestors = d.ancestors.union(superDef.ancestors)
		// the first path to reach an ancestor decides its parameters
		for _, ancID := range superDef.ancestors {
			if _, done := d.ancestorParams[ancID]; done {
				continue
			}
			mapped, _ := superDef.paramsForAncestor(ancID, declaredArgs)
			d.ancestorParams[ancID] = mapped
		}
	}
}

func (h *Hierarchy) computeDescendants() {
	for _, d := range h.defs {
		d.descendants = nil
		d.descendantParams = make(map[TypeID][]typeexpr.Expr)
	}
	// defs are in TypeID order, so descendants come out sorted
	for _, desc := range h.defs {
		for _, ancID := range desc.ancestors {
			anc := h.defs[ancID]
			anc.descendants = append(anc.descendants, desc.id)
			anc.descendantParams[desc.id] = descendantParamsOf(anc, desc)
		}
	}
}

// descendantParamsOf returns, for each param of desc, the param of anc it is passed as,
// or a zero Expr if it is not passed as a whole param of anc
func descendantParamsOf(anc, desc *typeDef) []typeexpr.Expr {
	inAncestor := desc.ancestorParams[anc.id]
	ret := make([]typeexpr.Expr, len(desc.params))
	for i, p := range desc.params {
		for j, arg := range inAncestor {
			if len(arg.Args) == 0 && arg.Name == p.Name {
				ret[i] = typeexpr.Generic(anc.params[j].Name)
				break
			}
		}
	}
	return ret
}

// computeNearestCommonAncestors fills h.nca visiting types after their supertypes:
// when a is an ancestor of b, nca[a][b] is a; otherwise it is the nearest among the
// candidates inherited from the supertypes of a.
func (h *Hierarchy) computeNearestCommonAncestors() {
	n := len(h.defs)
	h.nca = make([][][]TypeID, n)
	for _, id := range h.topo {
		d := h.defs[id]
		row := make([][]TypeID, n)
		for other := range h.defs {
			otherID := TypeID(other)
			if d.hasDescendant(otherID) {
				row[other] = []TypeID{d.id}
				continue
			}
			var candidates []TypeID
			for _, superID := range d.superIDs {
				candidates = append(candidates, h.nca[superID][other]...)
			}
			row[other] = h.keepNearestAncestors(util.Unique(candidates))
		}
		h.nca[id] = row
	}
}

// computeNearestCommonDescendants is the dual of computeNearestCommonAncestors,
// visiting types after their subtypes
func (h *Hierarchy) computeNearestCommonDescendants() {
	n := len(h.defs)
	h.ncd = make([][][]TypeID, n)
	for id := range util.Reverse(h.topo) {
		d := h.defs[id]
		row := make([][]TypeID, n)
		for other := range h.defs {
			otherID := TypeID(other)
			if d.hasAncestor(otherID) {
				row[other] = []TypeID{d.id}
				continue
			}
			var candidates []TypeID
			for _, subID := range d.subIDs {
				candidates = append(candidates, h.ncd[subID][other]...)
			}
			row[other] = h.keepNearestDescendants(util.Unique(candidates))
		}
		h.ncd[id] = row
	}
}

// keepNearestAncestors drops candidates that are strict ancestors of another candidate
func (h *Hierarchy) keepNearestAncestors(candidates []TypeID) []TypeID {
	var ret []TypeID
	for _, c := range candidates {
		dominated := slices.ContainsFunc(candidates, func(other TypeID) bool {
			return other != c && h.defs[other].hasAncestor(c)
		})
		if !dominated {
			ret = append(ret, c)
		}
	}
	return ret
}

// keepNearestDescendants drops candidates that are strict descendants of another candidate
func (h *Hierarchy) keepNearestDescendants(candidates []TypeID) []TypeID {
	var ret []TypeID
	for _, c := range candidates {
		dominated := slices.ContainsFunc(candidates, func(other TypeID) bool {
			return other != c && h.defs[other].hasDescendant(c)
		})
		if !dominated {
			ret = append(ret, c)
		}
	}
	return ret
}
