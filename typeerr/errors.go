// Package typeerr holds the errors the type hierarchy and the connection checker report.
//
// Every error kind has its own ErrCode, and is built through New so that it carries
// the stack it was created at.
package typeerr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type ErrCode int

const (
	None ErrCode = iota
	Parse
	UndefinedType
	Variance
	Arity
	GenericBinding
	ConnectionCheck
	Cycle
	DuplicateType
	InvalidTypeName
	UnknownParam
)

type Error interface {
	error
	Code() ErrCode
}

// New attaches a stack trace to err
func New[E Error](err E) error {
	return errors.WithStack(err)
}

// CodeOf returns the ErrCode of the outermost Error in err's chain, or None
func CodeOf(err error) ErrCode {
	var typed Error
	if errors.As(err, &typed) {
		return typed.Code()
	}
	return None
}

func FormatWithCode(err error) string {
	return fmt.Sprintf("(E%03d) %s", CodeOf(err), err.Error())
}

type ParseError struct {
	Input   string
	Offset  int
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("could not parse type '%s' at offset %d: %s", e.Input, e.Offset, e.Message)
}
func (e ParseError) Code() ErrCode { return Parse }

type UndefinedTypeError struct {
	Name string
	// ReferencedBy is the declaration or expression the name was found in, may be empty
	ReferencedBy string
}

func (e UndefinedTypeError) Error() string {
	if e.ReferencedBy == "" {
		return fmt.Sprintf("type '%s' is not defined", e.Name)
	}
	return fmt.Sprintf("type '%s' is not defined (referenced by '%s')", e.Name, e.ReferencedBy)
}
func (e UndefinedTypeError) Code() ErrCode { return UndefinedType }

type VarianceError struct {
	Type     string
	Param    string
	Variance string
}

func (e VarianceError) Error() string {
	return fmt.Sprintf("parameter '%s' of type '%s' has unknown variance '%s' (expected one of inv, contra, co)", e.Param, e.Type, e.Variance)
}
func (e VarianceError) Code() ErrCode { return Variance }

type ArityError struct {
	Type     string
	Expected int
	Got      int
	// Expr is the expression the mismatch was found in
	Expr string
}

func (e ArityError) Error() string {
	return fmt.Sprintf("type '%s' takes %d parameters, but %d were given in '%s'", e.Type, e.Expected, e.Got, e.Expr)
}
func (e ArityError) Code() ErrCode { return Arity }

type GenericBindingError struct {
	Generic string
	Type    string
}

func (e GenericBindingError) Error() string {
	return fmt.Sprintf("cannot bind generic '%s' to '%s': bound types must not contain generics", e.Generic, e.Type)
}
func (e GenericBindingError) Code() ErrCode { return GenericBinding }

// ConnectionCheckError wraps any failure that happened while checking a connection
// or looking up the types of a generic
type ConnectionCheckError struct {
	NodeID      string
	ParentInput string
	ChildInput  string
	From        error
}

func (e ConnectionCheckError) Error() string {
	sb := &strings.Builder{}
	sb.WriteString("checking connection")
	if e.NodeID != "" {
		sb.WriteString(fmt.Sprintf(" of node '%s'", e.NodeID))
	}
	if e.ParentInput != "" || e.ChildInput != "" {
		sb.WriteString(fmt.Sprintf(" (parent slot '%s', child slot '%s')", e.ParentInput, e.ChildInput))
	}
	sb.WriteString(": ")
	sb.WriteString(e.From.Error())
	return sb.String()
}
func (e ConnectionCheckError) Code() ErrCode { return ConnectionCheck }
func (e ConnectionCheckError) Unwrap() error { return e.From }
func (e ConnectionCheckError) Cause() error  { return e.From }

type CycleError struct {
	// Unprocessed are the types that could not be ordered
	Unprocessed []string
}

func (e CycleError) Error() string {
	return fmt.Sprintf("type hierarchy is not acyclic, could not order: %s", strings.Join(e.Unprocessed, ", "))
}
func (e CycleError) Code() ErrCode { return Cycle }

type DuplicateTypeError struct {
	Name string
}

func (e DuplicateTypeError) Error() string {
	return fmt.Sprintf("type '%s' is declared more than once", e.Name)
}
func (e DuplicateTypeError) Code() ErrCode { return DuplicateType }

type InvalidTypeNameError struct {
	Name   string
	Reason string
}

func (e InvalidTypeNameError) Error() string {
	return fmt.Sprintf("'%s' is not a valid name: %s", e.Name, e.Reason)
}
func (e InvalidTypeNameError) Code() ErrCode { return InvalidTypeName }

type UnknownParamError struct {
	Type  string
	Param string
}

func (e UnknownParamError) Error() string {
	return fmt.Sprintf("generic '%s' used in the supertypes of '%s' is not one of its parameters", e.Param, e.Type)
}
func (e UnknownParamError) Code() ErrCode { return UnknownParam }
