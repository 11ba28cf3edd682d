package typeerr

import (
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	testCases := []struct {
		err      error
		expected ErrCode
	}{
		{New(ParseError{Input: "list(", Offset: 5, Message: "missing ')'"}), Parse},
		{New(ArityError{Type: "list", Expected: 1, Got: 2, Expr: "list(a, b)"}), Arity},
		{errors.Wrap(New(CycleError{Unprocessed: []string{"egg"}}), "loading"), Cycle},
		{New(ConnectionCheckError{NodeID: "n", From: New(UndefinedTypeError{Name: "unicorn"})}), ConnectionCheck},
		{errors.New("plain"), None},
		{nil, None},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, CodeOf(tc.err))
	}
}

func TestConnectionCheckError(t *testing.T) {
	cause := New(UndefinedTypeError{Name: "unicorn", ReferencedBy: "list(unicorn)"})
	err := New(ConnectionCheckError{NodeID: "n", ParentInput: "in", ChildInput: "output", From: cause})

	assert.Equal(t, "checking connection of node 'n' (parent slot 'in', child slot 'output'): type 'unicorn' is not defined (referenced by 'list(unicorn)')", err.Error())
	assert.Equal(t, "(E006) "+err.Error(), FormatWithCode(err))

	var undefined UndefinedTypeError
	assert.True(t, errors.As(err, &undefined))
	assert.Equal(t, "unicorn", undefined.Name)
}

func TestErrors(t *testing.T) {
	var errs *Errors
	assert.False(t, errs.HasError())
	assert.Empty(t, errs.Errors())

	errs = errs.With(New(DuplicateTypeError{Name: "dog"}))
	errs = errs.With(New(VarianceError{Type: "list", Param: "t", Variance: "sideways"}))
	assert.True(t, errs.HasError())
	assert.Len(t, errs.Errors(), 2)

	value := errs.LogValue()
	assert.Equal(t, slog.KindGroup, value.Kind())
	assert.Len(t, value.Group(), 2)
}
