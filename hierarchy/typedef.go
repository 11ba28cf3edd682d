package hierarchy

import (
	"github.com/cottand/slottype/typeexpr"
)

// Param is a parameter of a parametric type
type Param struct {
	Name     string
	Variance Variance
}

type typeDef struct {
	id     TypeID
	name   string
	params []Param
	// supers are the declared direct supertypes, with arguments over params
	supers   []typeexpr.Expr
	superIDs []TypeID
	subIDs   []TypeID

	// ancestors and descendants are reflexive
	ancestors   idSet
	descendants idSet

	// ancestorParams maps an ancestor to its parameter vector written over this type's params
	ancestorParams map[TypeID][]typeexpr.Expr
	// descendantParams maps a descendant D to, for each of D's params, the param of this type
	// it corresponds to, or a zero Expr when it has no counterpart here
	descendantParams map[TypeID][]typeexpr.Expr
}

func (d *typeDef) identityParams() []typeexpr.Expr {
	ret := make([]typeexpr.Expr, len(d.params))
	for i, p := range d.params {
		ret[i] = typeexpr.Generic(p.Name)
	}
	return ret
}

func (d *typeDef) substitution(args []typeexpr.Expr) map[string]typeexpr.Expr {
	mapping := make(map[string]typeexpr.Expr, len(d.params))
	for i, p := range d.params {
		if i < len(args) {
			mapping[p.Name] = args[i]
		}
	}
	return mapping
}

func (d *typeDef) hasAncestor(id TypeID) bool {
	return d.ancestors.contains(id)
}

func (d *typeDef) hasDescendant(id TypeID) bool {
	return d.descendants.contains(id)
}

// paramsForAncestor rewrites args, the arguments of this type, into the parameter
// order of the ancestor anc
func (d *typeDef) paramsForAncestor(anc TypeID, args []typeexpr.Expr) ([]typeexpr.Expr, bool) {
	pattern, ok := d.ancestorParams[anc]
	if !ok {
		return nil, false
	}
	mapping := d.substitution(args)
	ret := make([]typeexpr.Expr, len(pattern))
	for i, p := range pattern {
		ret[i] = p.Substitute(mapping)
	}
	return ret, true
}

// paramsForDescendant rewrites args, the arguments of this type, into the parameter
// order of the descendant desc. Params of desc with no counterpart are zero Exprs.
func (d *typeDef) paramsForDescendant(desc TypeID, args []typeexpr.Expr) ([]typeexpr.Expr, bool) {
	pattern, ok := d.descendantParams[desc]
	if !ok {
		return nil, false
	}
	mapping := d.substitution(args)
	ret := make([]typeexpr.Expr, len(pattern))
	for i, p := range pattern {
		if p.IsZero() {
			continue
		}
		ret[i] = p.Substitute(mapping)
	}
	return ret, true
}
