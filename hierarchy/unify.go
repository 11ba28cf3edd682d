package hierarchy

import (
	"github.com/cottand/slottype/typeexpr"
	"github.com/cottand/slottype/util"
)

// NearestCommonParents returns the nearest types every one of types fulfills,
// parameters included. An empty result means there is no common parent.
//
// Generics among types constrain nothing and are skipped; if every type is generic,
// the result is the StandardGeneric.
func (h *Hierarchy) NearestCommonParents(types ...typeexpr.Expr) ([]typeexpr.Expr, error) {
	for _, t := range types {
		if err := h.Validate(t); err != nil {
			return nil, err
		}
	}
	return h.nearestCommonParents(types), nil
}

// NearestCommonDescendants is the dual of NearestCommonParents: it returns the nearest
// types that fulfill every one of types
func (h *Hierarchy) NearestCommonDescendants(types ...typeexpr.Expr) ([]typeexpr.Expr, error) {
	for _, t := range types {
		if err := h.Validate(t); err != nil {
			return nil, err
		}
	}
	return h.nearestCommonDescendants(types), nil
}

func concreteOf(types []typeexpr.Expr) []typeexpr.Expr {
	ret := make([]typeexpr.Expr, 0, len(types))
	for _, t := range types {
		if !t.IsGeneric() {
			ret = append(ret, t)
		}
	}
	return ret
}

func (h *Hierarchy) nearestCommonParents(types []typeexpr.Expr) []typeexpr.Expr {
	if len(types) == 0 {
		return nil
	}
	concrete := concreteOf(types)
	if len(concrete) == 0 {
		return []typeexpr.Expr{typeexpr.Standard()}
	}

	first, _ := h.lookup(concrete[0].Name)
	candidates := []TypeID{first.id}
	for _, t := range concrete[1:] {
		d, _ := h.lookup(t.Name)
		var next []TypeID
		for _, acc := range candidates {
			next = append(next, h.nca[d.id][acc]...)
		}
		candidates = h.keepNearestAncestors(util.Unique(next))
	}

	var ret []typeexpr.Expr
	for _, candidate := range candidates {
		parent := h.defs[candidate]
		columns := make([][]typeexpr.Expr, len(parent.params))
		for _, t := range concrete {
			d, _ := h.lookup(t.Name)
			args, _ := d.paramsForAncestor(candidate, t.Args)
			for i := range columns {
				columns[i] = append(columns[i], args[i])
			}
		}
		options := make([][]typeexpr.Expr, len(columns))
		for i, column := range columns {
			switch parent.params[i].Variance {
			case Covariant:
				options[i] = h.nearestCommonParents(column)
			case Contravariant:
				options[i] = h.nearestCommonDescendants(column)
			default:
				options[i] = agreeing(column)
			}
		}
		for _, combo := range util.Combine(options) {
			ret = append(ret, typeexpr.Named(parent.name, combo...))
		}
	}
	return typeexpr.Unique(ret)
}

func (h *Hierarchy) nearestCommonDescendants(types []typeexpr.Expr) []typeexpr.Expr {
	if len(types) == 0 {
		return nil
	}
	concrete := concreteOf(types)
	if len(concrete) == 0 {
		return []typeexpr.Expr{typeexpr.Standard()}
	}

	first, _ := h.lookup(concrete[0].Name)
	candidates := []TypeID{first.id}
	for _, t := range concrete[1:] {
		d, _ := h.lookup(t.Name)
		var next []TypeID
		for _, acc := range candidates {
			next = append(next, h.ncd[d.id][acc]...)
		}
		candidates = h.keepNearestDescendants(util.Unique(next))
	}

	var ret []typeexpr.Expr
candidates:
	for _, candidate := range candidates {
		child := h.defs[candidate]
		columns := make([][]typeexpr.Expr, len(child.params))
		for _, t := range concrete {
			d, _ := h.lookup(t.Name)
			args, _ := d.paramsForDescendant(candidate, t.Args)
			for i := range columns {
				// the descendant has a param the ancestor knows nothing about
				if args[i].IsZero() {
					continue candidates
				}
				columns[i] = append(columns[i], args[i])
			}
		}
		options := make([][]typeexpr.Expr, len(columns))
		for i, column := range columns {
			switch child.params[i].Variance {
			case Covariant:
				options[i] = h.nearestCommonDescendants(column)
			case Contravariant:
				options[i] = h.nearestCommonParents(column)
			default:
				options[i] = agreeing(column)
			}
		}
		for _, combo := range util.Combine(options) {
			ret = append(ret, typeexpr.Named(child.name, combo...))
		}
	}
	return typeexpr.Unique(ret)
}

// agreeing unifies an invariant column: every concrete expression in it must be the same
func agreeing(column []typeexpr.Expr) []typeexpr.Expr {
	concrete := concreteOf(column)
	if len(concrete) == 0 {
		return []typeexpr.Expr{typeexpr.Standard()}
	}
	for _, e := range concrete[1:] {
		if !typeexpr.EqualModuloGenerics(concrete[0], e) {
			return nil
		}
	}
	return []typeexpr.Expr{concrete[0]}
}

// MatchingTypesInDescendant finds what the generic g stands for, given that pattern
// contains g and descendant is a type that fulfills pattern.
//
// related is false when descendant cannot fulfill pattern at all. Positions of g the
// descendant has no counterpart for match the StandardGeneric.
func (h *Hierarchy) MatchingTypesInDescendant(g string, pattern, descendant typeexpr.Expr) (matches []typeexpr.Expr, related bool) {
	if pattern.Name == g {
		return []typeexpr.Expr{descendant}, true
	}
	if !pattern.ContainsGeneric(g) || pattern.IsGeneric() {
		return nil, true
	}
	if descendant.IsGeneric() {
		return []typeexpr.Expr{typeexpr.Standard()}, true
	}
	patternDef, ok := h.lookup(pattern.Name)
	if !ok {
		return nil, false
	}
	descDef, ok := h.lookup(descendant.Name)
	if !ok {
		return nil, false
	}
	args, ok := descDef.paramsForAncestor(patternDef.id, descendant.Args)
	if !ok || len(args) != len(pattern.Args) {
		return nil, false
	}
	for i, patternArg := range pattern.Args {
		if !patternArg.ContainsGeneric(g) {
			continue
		}
		var found []typeexpr.Expr
		if patternDef.params[i].Variance == Contravariant {
			found, ok = h.MatchingTypesInAncestor(g, patternArg, args[i])
		} else {
			found, ok = h.MatchingTypesInDescendant(g, patternArg, args[i])
		}
		if !ok {
			return nil, false
		}
		matches = append(matches, found...)
	}
	return matches, true
}

// MatchingTypesInAncestor finds what the generic g stands for, given that pattern
// contains g and ancestor is a type that pattern fulfills
func (h *Hierarchy) MatchingTypesInAncestor(g string, pattern, ancestor typeexpr.Expr) (matches []typeexpr.Expr, related bool) {
	if pattern.Name == g {
		return []typeexpr.Expr{ancestor}, true
	}
	if !pattern.ContainsGeneric(g) || pattern.IsGeneric() {
		return nil, true
	}
	if ancestor.IsGeneric() {
		return []typeexpr.Expr{typeexpr.Standard()}, true
	}
	patternDef, ok := h.lookup(pattern.Name)
	if !ok {
		return nil, false
	}
	ancDef, ok := h.lookup(ancestor.Name)
	if !ok {
		return nil, false
	}
	args, ok := ancDef.paramsForDescendant(patternDef.id, ancestor.Args)
	if !ok || len(args) != len(pattern.Args) {
		return nil, false
	}
	for i, patternArg := range pattern.Args {
		if !patternArg.ContainsGeneric(g) {
			continue
		}
		if args[i].IsZero() {
			matches = append(matches, typeexpr.Standard())
			continue
		}
		var found []typeexpr.Expr
		if patternDef.params[i].Variance == Contravariant {
			found, ok = h.MatchingTypesInDescendant(g, patternArg, args[i])
		} else {
			found, ok = h.MatchingTypesInAncestor(g, patternArg, args[i])
		}
		if !ok {
			return nil, false
		}
		matches = append(matches, found...)
	}
	return matches, true
}
