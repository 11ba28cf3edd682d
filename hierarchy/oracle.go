package hierarchy

import (
	"github.com/cottand/slottype/typeerr"
	"github.com/cottand/slottype/typeexpr"
)

// Validate checks that every concrete name in e is declared and applied to as many
// arguments as it has params. Generics may not be applied to arguments.
func (h *Hierarchy) Validate(e typeexpr.Expr) error {
	return h.validate(e, e)
}

func (h *Hierarchy) validate(e typeexpr.Expr, root typeexpr.Expr) error {
	expected := 0
	if !e.IsGeneric() {
		d, ok := h.lookup(e.Name)
		if !ok {
			return typeerr.New(typeerr.UndefinedTypeError{Name: e.Name, ReferencedBy: root.String()})
		}
		expected = len(d.params)
	}
	if len(e.Args) != expected {
		return typeerr.New(typeerr.ArityError{Type: e.Name, Expected: expected, Got: len(e.Args), Expr: root.String()})
	}
	for _, arg := range e.Args {
		if err := h.validate(arg, root); err != nil {
			return err
		}
	}
	return nil
}

// Fulfills reports whether sub can be used where super is expected.
//
// Parameters are compared according to the variance super's type declares for them.
// A generic on either side, at any depth, is satisfied by anything.
func (h *Hierarchy) Fulfills(sub, super typeexpr.Expr) (bool, error) {
	if err := h.Validate(sub); err != nil {
		return false, err
	}
	if err := h.Validate(super); err != nil {
		return false, err
	}
	return h.fulfills(sub, super), nil
}

// IsExactly reports whether a and b are the same type
func (h *Hierarchy) IsExactly(a, b typeexpr.Expr) bool {
	return typeexpr.Equal(a, b)
}

// fulfills expects both sub and super to be valid
func (h *Hierarchy) fulfills(sub, super typeexpr.Expr) bool {
	if sub.IsGeneric() || super.IsGeneric() {
		return true
	}
	subDef, _ := h.lookup(sub.Name)
	superDef, _ := h.lookup(super.Name)
	subArgs, ok := subDef.paramsForAncestor(superDef.id, sub.Args)
	if !ok {
		return false
	}
	for i, param := range superDef.params {
		var paramOk bool
		switch param.Variance {
		case Covariant:
			paramOk = h.fulfills(subArgs[i], super.Args[i])
		case Contravariant:
			paramOk = h.fulfills(super.Args[i], subArgs[i])
		default:
			paramOk = typeexpr.EqualModuloGenerics(subArgs[i], super.Args[i])
		}
		if !paramOk {
			return false
		}
	}
	return true
}

// RemoveSubsumed drops every element of exprs that fulfills a different element of exprs,
// keeping the widest types. Of elements that fulfill each other, the first one is kept.
func (h *Hierarchy) RemoveSubsumed(exprs []typeexpr.Expr) []typeexpr.Expr {
	exprs = typeexpr.Unique(exprs)
	ret := make([]typeexpr.Expr, 0, len(exprs))
	for i, e := range exprs {
		subsumed := false
		for j, other := range exprs {
			if i == j || e.IsGeneric() || other.IsGeneric() || !h.fulfills(e, other) {
				continue
			}
			if j < i || !h.fulfills(other, e) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			ret = append(ret, e)
		}
	}
	return ret
}
