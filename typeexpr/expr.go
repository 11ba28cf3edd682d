// Package typeexpr implements the type expressions slots are declared with.
//
// An expression is either a bare name or a name applied to arguments:
//
//	expr := name | name '(' expr (',' expr)* ')'
//
// Names of a single character are generics (type variables), longer names are
// concrete types. StandardGeneric, '*', stands for a generic nothing constrains yet.
package typeexpr

import (
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-set/v3"

	"github.com/cottand/slottype/util"
)

// StandardGeneric is the placeholder for a generic that is not bound to anything
const StandardGeneric = "*"

// Expr is a type expression. It is a value type: functions that need to
// change an Expr return a new one and never mutate Args in place.
type Expr struct {
	Name string
	Args []Expr
}

// Named returns the expression name(args...)
func Named(name string, args ...Expr) Expr {
	return Expr{Name: name, Args: args}
}

// Generic returns the bare expression for the generic name g
func Generic(g string) Expr {
	return Expr{Name: g}
}

// Standard returns the StandardGeneric expression
func Standard() Expr {
	return Expr{Name: StandardGeneric}
}

// IsGeneric reports whether name is the name of a generic
func IsGeneric(name string) bool {
	return utf8.RuneCountInString(name) == 1
}

// IsConcrete reports whether name is the name of a concrete type
func IsConcrete(name string) bool {
	return !IsGeneric(name)
}

// IsZero reports whether e is the zero Expr, which is not a valid expression and
// is used to mark a missing one
func (e Expr) IsZero() bool {
	return e.Name == ""
}

// IsGeneric reports whether the outermost name of e is generic
func (e Expr) IsGeneric() bool {
	return IsGeneric(e.Name)
}

func (e Expr) IsStandardGeneric() bool {
	return e.Name == StandardGeneric
}

// IsGround reports whether no name inside e is generic
func (e Expr) IsGround() bool {
	return !e.ContainsAnyGeneric()
}

// ContainsGeneric reports whether the generic g appears anywhere in e
func (e Expr) ContainsGeneric(g string) bool {
	found := false
	e.walk(func(name string) bool {
		found = name == g
		return !found
	})
	return found
}

func (e Expr) ContainsAnyGeneric() bool {
	found := false
	e.walk(func(name string) bool {
		found = IsGeneric(name)
		return !found
	})
	return found
}

// Generics returns every generic name inside e
func (e Expr) Generics() *set.Set[string] {
	ret := set.New[string](0)
	e.walk(func(name string) bool {
		if IsGeneric(name) {
			ret.Insert(name)
		}
		return true
	})
	return ret
}

// walk visits every name in e, depth first and left to right, until visit returns false
func (e Expr) walk(visit func(name string) bool) {
	stack := &util.Stack[Expr]{}
	stack.Push(e)
	for {
		current, ok := stack.Pop()
		if !ok {
			return
		}
		if !visit(current.Name) {
			return
		}
		for arg := range util.Reverse(current.Args) {
			stack.Push(arg)
		}
	}
}

// Equal is structural equality
func Equal(a, b Expr) bool {
	if a.Name != b.Name || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !Equal(a.Args[i], b.Args[i]) {
			return false
		}
	}
	return true
}

// Equal is structural equality
func (e Expr) Equal(other Expr) bool {
	return Equal(e, other)
}

// EqualModuloGenerics is structural equality where a generic on either side
// is equal to anything
func EqualModuloGenerics(a, b Expr) bool {
	if a.IsGeneric() || b.IsGeneric() {
		return true
	}
	if a.Name != b.Name || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !EqualModuloGenerics(a.Args[i], b.Args[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of e
func (e Expr) Clone() Expr {
	if len(e.Args) == 0 {
		return Expr{Name: e.Name}
	}
	args := make([]Expr, len(e.Args))
	for i, arg := range e.Args {
		args[i] = arg.Clone()
	}
	return Expr{Name: e.Name, Args: args}
}

// Substitute replaces every name of e that is a key of mapping with its value
func (e Expr) Substitute(mapping map[string]Expr) Expr {
	if replacement, ok := mapping[e.Name]; ok && len(e.Args) == 0 {
		return replacement.Clone()
	}
	ret := Expr{Name: e.Name}
	if len(e.Args) > 0 {
		ret.Args = make([]Expr, len(e.Args))
		for i, arg := range e.Args {
			ret.Args[i] = arg.Substitute(mapping)
		}
	}
	return ret
}

// String returns the canonical form of e, which Parse accepts
func (e Expr) String() string {
	sb := &strings.Builder{}
	e.writeTo(sb)
	return sb.String()
}

func (e Expr) writeTo(sb *strings.Builder) {
	sb.WriteString(e.Name)
	if len(e.Args) == 0 {
		return
	}
	sb.WriteByte('(')
	for i, arg := range e.Args {
		if i != 0 {
			sb.WriteString(", ")
		}
		arg.writeTo(sb)
	}
	sb.WriteByte(')')
}

// Hash is consistent with Equal
func (e Expr) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(e.String()))
	return h.Sum64()
}

// Unique removes structurally equal duplicates from exprs, keeping the first occurrence
func Unique(exprs []Expr) []Expr {
	return util.UniqueHashable[Expr, uint64](exprs)
}

// Strings renders each of exprs
func Strings(exprs []Expr) []string {
	return util.MapSlice(exprs, Expr.String)
}
