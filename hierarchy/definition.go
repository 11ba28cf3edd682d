package hierarchy

import (
	"slices"
	"strings"
)

// Definition is a type hierarchy as declared by the user, in declaration order.
// The order decides the order of results whenever several are equally good.
type Definition []TypeDecl

// TypeDecl declares a single type
type TypeDecl struct {
	Name   string      `yaml:"name" toml:"name" msgpack:"name"`
	Params []ParamDecl `yaml:"params" toml:"params" msgpack:"params"`
	// Fulfills are the direct supertypes, as type expressions which may use Params
	Fulfills []string `yaml:"fulfills" toml:"fulfills" msgpack:"fulfills"`
}

type ParamDecl struct {
	Name     string `yaml:"name" toml:"name" msgpack:"name"`
	Variance string `yaml:"variance" toml:"variance" msgpack:"variance"`
}

// TypeBody is a TypeDecl without its name, which is the shape of declarations
// inside hierarchy files
type TypeBody struct {
	Params   []ParamDecl `yaml:"params" toml:"params"`
	Fulfills []string    `yaml:"fulfills" toml:"fulfills"`
}

// DefinitionFromMap builds a Definition out of a map keyed by type name.
// Maps have no order, so types are sorted by name.
func DefinitionFromMap(decls map[string]TypeBody) Definition {
	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	def := make(Definition, 0, len(names))
	for _, name := range names {
		body := decls[name]
		def = append(def, TypeDecl{Name: name, Params: body.Params, Fulfills: body.Fulfills})
	}
	return def
}
