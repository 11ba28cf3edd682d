package typeexpr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottand/slottype/typeerr"
	"github.com/cottand/slottype/typeexpr"
)

func TestParseRoundTrip(t *testing.T) {
	testCases := []string{
		"dog",
		"t",
		"*",
		"list(dog)",
		"map(string, list(t))",
		"consumer(map(a, b), ref(ref(number)))",
	}
	for _, text := range testCases {
		t.Run(text, func(t *testing.T) {
			parsed, err := typeexpr.Parse(text)
			require.NoError(t, err)
			assert.Equal(t, text, parsed.String())

			again, err := typeexpr.Parse(parsed.String())
			require.NoError(t, err)
			assert.True(t, again.Equal(parsed))
		})
	}
}

func TestParseNormalises(t *testing.T) {
	parsed, err := typeexpr.Parse("  Map ( String,List(  T ) )  ")
	require.NoError(t, err)
	assert.Equal(t, "map(string, list(t))", parsed.String())
	assert.Equal(t, typeexpr.Named("map", typeexpr.Named("string"), typeexpr.Named("list", typeexpr.Generic("t"))), parsed)
}

func TestParseLowerCases(t *testing.T) {
	testCases := []struct {
		text, expected string
		generic        bool
	}{
		{"T", "t", true},
		{"ß", "ß", true},
		{"Straße", "straße", false},
		{"ÉCOLE", "école", false},
	}
	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			parsed, err := typeexpr.Parse(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, parsed.String())
			assert.Equal(t, tc.generic, parsed.IsGeneric())
			assert.Equal(t, tc.expected, typeexpr.NormaliseName(tc.text))
		})
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []string{
		"",
		"list(",
		"list()",
		"list(dog",
		"list(dog,)",
		"list(dog) cat",
		"(dog)",
		"list(dog]",
	}
	for _, text := range testCases {
		t.Run(text, func(t *testing.T) {
			_, err := typeexpr.Parse(text)
			require.Error(t, err)
			assert.Equal(t, typeerr.Parse, typeerr.CodeOf(err))
		})
	}
}

func TestPredicates(t *testing.T) {
	assert.True(t, typeexpr.IsGeneric("t"))
	assert.True(t, typeexpr.IsGeneric(typeexpr.StandardGeneric))
	assert.False(t, typeexpr.IsGeneric("dog"))
	assert.True(t, typeexpr.IsConcrete("dog"))

	e := typeexpr.MustParse("map(string, list(t))")
	assert.False(t, e.IsGeneric())
	assert.False(t, e.IsGround())
	assert.True(t, e.ContainsGeneric("t"))
	assert.False(t, e.ContainsGeneric("u"))
	assert.True(t, e.ContainsAnyGeneric())
	assert.ElementsMatch(t, []string{"t"}, e.Generics().Slice())

	ground := typeexpr.MustParse("map(string, list(dog))")
	assert.True(t, ground.IsGround())
	assert.Equal(t, 0, ground.Generics().Size())
}

func TestEquality(t *testing.T) {
	a := typeexpr.MustParse("map(string, list(dog))")
	assert.True(t, a.Equal(typeexpr.MustParse("map(string,list(dog))")))
	assert.False(t, a.Equal(typeexpr.MustParse("map(string, list(cat))")))
	assert.False(t, a.Equal(typeexpr.MustParse("map(string)")))
	assert.Equal(t, a.Hash(), a.Clone().Hash())

	assert.True(t, typeexpr.EqualModuloGenerics(a, typeexpr.MustParse("map(string, t)")))
	assert.True(t, typeexpr.EqualModuloGenerics(typeexpr.MustParse("*"), a))
	assert.False(t, typeexpr.EqualModuloGenerics(a, typeexpr.MustParse("map(t, list(cat))")))
}

func TestSubstituteDoesNotMutate(t *testing.T) {
	e := typeexpr.MustParse("map(a, list(b))")
	substituted := e.Substitute(map[string]typeexpr.Expr{
		"a": typeexpr.MustParse("string"),
		"b": typeexpr.MustParse("list(dog)"),
	})
	assert.Equal(t, "map(string, list(list(dog)))", substituted.String())
	assert.Equal(t, "map(a, list(b))", e.String())
}

func TestUnique(t *testing.T) {
	exprs := []typeexpr.Expr{
		typeexpr.MustParse("dog"),
		typeexpr.MustParse("list(dog)"),
		typeexpr.MustParse("dog"),
		typeexpr.MustParse("list( dog )"),
		typeexpr.MustParse("cat"),
	}
	assert.Equal(t, []string{"dog", "list(dog)", "cat"}, typeexpr.Strings(typeexpr.Unique(exprs)))
}
