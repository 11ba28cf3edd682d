// Package hierarchy holds a nominal type hierarchy with parametric types, and answers
// subtyping questions about it.
//
// Loading a Definition pre-computes the ancestors and descendants of every type, how
// the parameters of a type map onto the parameters of its relatives, and the nearest
// common ancestors and descendants of every pair of types. After loading, a Hierarchy
// is immutable and safe to share.
package hierarchy

import (
	"fmt"
	"slices"

	"github.com/cottand/slottype/internal/log"
	"github.com/cottand/slottype/typeerr"
	"github.com/cottand/slottype/typeexpr"
)

var logger = log.DefaultLogger.With("section", "hierarchy")

type Hierarchy struct {
	defs   []*typeDef
	byName map[string]TypeID
	// topo has every type after all of its supertypes
	topo []TypeID

	// nca[a][b] are the nearest common ancestors of a and b
	nca [][][]TypeID
	// ncd[a][b] are the nearest common descendants of a and b
	ncd [][][]TypeID
}

// New loads def, checks it and pre-computes its tables
func New(def Definition) (*Hierarchy, error) {
	h := &Hierarchy{
		defs:   make([]*typeDef, 0, len(def)),
		byName: make(map[string]TypeID, len(def)),
	}
	if err := h.declareTypes(def); err != nil {
		return nil, err
	}
	if err := h.declareSupers(def); err != nil {
		return nil, err
	}
	if err := h.preprocess(); err != nil {
		return nil, err
	}
	logger.Info("loaded type hierarchy", "types", len(h.defs))
	return h, nil
}

func checkTypeName(name string) error {
	if typeexpr.IsGeneric(name) {
		return typeerr.New(typeerr.InvalidTypeNameError{Name: name, Reason: "names of declared types must be at least two characters long"})
	}
	parsed, err := typeexpr.Parse(name)
	if err != nil || len(parsed.Args) != 0 || parsed.Name != name {
		return typeerr.New(typeerr.InvalidTypeNameError{Name: name, Reason: "names may only contain letters, digits and '_'"})
	}
	return nil
}

func (h *Hierarchy) declareTypes(def Definition) error {
	for i, decl := range def {
		name := typeexpr.NormaliseName(decl.Name)
		if err := checkTypeName(name); err != nil {
			return err
		}
		if _, exists := h.byName[name]; exists {
			return typeerr.New(typeerr.DuplicateTypeError{Name: name})
		}
		params := make([]Param, 0, len(decl.Params))
		for _, p := range decl.Params {
			pName := typeexpr.NormaliseName(p.Name)
			if !typeexpr.IsGeneric(pName) || pName == typeexpr.StandardGeneric {
				return typeerr.New(typeerr.InvalidTypeNameError{Name: p.Name, Reason: fmt.Sprintf("parameters of '%s' must be a single character", name)})
			}
			if slices.ContainsFunc(params, func(existing Param) bool { return existing.Name == pName }) {
				return typeerr.New(typeerr.InvalidTypeNameError{Name: p.Name, Reason: fmt.Sprintf("parameter is declared more than once in '%s'", name)})
			}
			variance, ok := ParseVariance(p.Variance)
			if !ok {
				return typeerr.New(typeerr.VarianceError{Type: name, Param: pName, Variance: p.Variance})
			}
			params = append(params, Param{Name: pName, Variance: variance})
		}
		id := newTypeID(i)
		h.byName[name] = id
		h.defs = append(h.defs, &typeDef{
			id:     id,
			name:   name,
			params: params,
		})
	}
	return nil
}

func (h *Hierarchy) declareSupers(def Definition) error {
	for i, decl := range def {
		d := h.defs[i]
		for _, text := range decl.Fulfills {
			super, err := typeexpr.Parse(text)
			if err != nil {
				return fmt.Errorf("supertype of '%s': %w", d.name, err)
			}
			if super.IsGeneric() {
				return typeerr.New(typeerr.UndefinedTypeError{Name: super.Name, ReferencedBy: d.name})
			}
			if err := h.validateSuper(d, super); err != nil {
				return err
			}
			superID := h.byName[super.Name]
			if slices.Contains(d.superIDs, superID) {
				logger.Warn("supertype declared more than once, keeping the first", "type", d.name, "super", super.Name)
				continue
			}
			d.supers = append(d.supers, super)
			d.superIDs = append(d.superIDs, superID)
			superDef := h.defs[superID]
			superDef.subIDs = append(superDef.subIDs, d.id)
		}
	}
	return nil
}

// validateSuper checks that every name in super is defined with the right arity,
// and that its generics are params of d
func (h *Hierarchy) validateSuper(d *typeDef, super typeexpr.Expr) error {
	if super.IsGeneric() {
		if !slices.ContainsFunc(d.params, func(p Param) bool { return p.Name == super.Name }) {
			return typeerr.New(typeerr.UnknownParamError{Type: d.name, Param: super.Name})
		}
		if len(super.Args) != 0 {
			return typeerr.New(typeerr.ArityError{Type: super.Name, Expected: 0, Got: len(super.Args), Expr: super.String()})
		}
		return nil
	}
	id, ok := h.byName[super.Name]
	if !ok {
		return typeerr.New(typeerr.UndefinedTypeError{Name: super.Name, ReferencedBy: d.name})
	}
	if expected := len(h.defs[id].params); expected != len(super.Args) {
		return typeerr.New(typeerr.ArityError{Type: super.Name, Expected: expected, Got: len(super.Args), Expr: super.String()})
	}
	for _, arg := range super.Args {
		if err := h.validateSuper(d, arg); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hierarchy) lookup(name string) (*typeDef, bool) {
	id, ok := h.byName[name]
	if !ok {
		return nil, false
	}
	return h.defs[id], true
}

func (h *Hierarchy) mustLookup(name string) (*typeDef, error) {
	d, ok := h.lookup(typeexpr.NormaliseName(name))
	if !ok {
		return nil, typeerr.New(typeerr.UndefinedTypeError{Name: name})
	}
	return d, nil
}

func (h *Hierarchy) names(ids []TypeID) []string {
	ret := make([]string, len(ids))
	for i, id := range ids {
		ret[i] = h.defs[id].name
	}
	return ret
}

// TypeExists reports whether name is declared, ignoring case
func (h *Hierarchy) TypeExists(name string) bool {
	_, ok := h.lookup(typeexpr.NormaliseName(name))
	return ok
}

// Types returns the names of all types, in declaration order
func (h *Hierarchy) Types() []string {
	ret := make([]string, len(h.defs))
	for i, d := range h.defs {
		ret[i] = d.name
	}
	return ret
}

func (h *Hierarchy) Params(name string) ([]Param, error) {
	d, err := h.mustLookup(name)
	if err != nil {
		return nil, err
	}
	return slices.Clone(d.params), nil
}

// Supers returns the declared direct supertypes of name
func (h *Hierarchy) Supers(name string) ([]typeexpr.Expr, error) {
	d, err := h.mustLookup(name)
	if err != nil {
		return nil, err
	}
	ret := make([]typeexpr.Expr, len(d.supers))
	for i, s := range d.supers {
		ret[i] = s.Clone()
	}
	return ret, nil
}

// Ancestors returns name and every type it transitively fulfills
func (h *Hierarchy) Ancestors(name string) ([]string, error) {
	d, err := h.mustLookup(name)
	if err != nil {
		return nil, err
	}
	return h.names(d.ancestors), nil
}

// Descendants returns name and every type that transitively fulfills it
func (h *Hierarchy) Descendants(name string) ([]string, error) {
	d, err := h.mustLookup(name)
	if err != nil {
		return nil, err
	}
	return h.names(d.descendants), nil
}

// NearestCommonAncestorNames returns the common ancestors of a and b that no other
// common ancestor descends from
func (h *Hierarchy) NearestCommonAncestorNames(a, b string) ([]string, error) {
	da, err := h.mustLookup(a)
	if err != nil {
		return nil, err
	}
	db, err := h.mustLookup(b)
	if err != nil {
		return nil, err
	}
	return h.names(h.nca[da.id][db.id]), nil
}

// NearestCommonDescendantNames returns the common descendants of a and b that no other
// common descendant is an ancestor of
func (h *Hierarchy) NearestCommonDescendantNames(a, b string) ([]string, error) {
	da, err := h.mustLookup(a)
	if err != nil {
		return nil, err
	}
	db, err := h.mustLookup(b)
	if err != nil {
		return nil, err
	}
	return h.names(h.ncd[da.id][db.id]), nil
}

// ParamsForAncestor rewrites args, arguments of the type name, into the parameter
// order of its ancestor anc
func (h *Hierarchy) ParamsForAncestor(name, anc string, args []typeexpr.Expr) ([]typeexpr.Expr, error) {
	d, err := h.mustLookup(name)
	if err != nil {
		return nil, err
	}
	ancDef, err := h.mustLookup(anc)
	if err != nil {
		return nil, err
	}
	ret, ok := d.paramsForAncestor(ancDef.id, args)
	if !ok {
		return nil, fmt.Errorf("'%s' is not an ancestor of '%s'", anc, name)
	}
	return ret, nil
}

// ParamsForDescendant rewrites args, arguments of the type name, into the parameter
// order of its descendant desc. Params of desc that have no counterpart in name are
// returned as zero Exprs.
func (h *Hierarchy) ParamsForDescendant(name, desc string, args []typeexpr.Expr) ([]typeexpr.Expr, error) {
	d, err := h.mustLookup(name)
	if err != nil {
		return nil, err
	}
	descDef, err := h.mustLookup(desc)
	if err != nil {
		return nil, err
	}
	ret, ok := d.paramsForDescendant(descDef.id, args)
	if !ok {
		return nil, fmt.Errorf("'%s' is not a descendant of '%s'", desc, name)
	}
	return ret, nil
}
