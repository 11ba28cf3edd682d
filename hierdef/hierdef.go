// Package hierdef reads type hierarchies from files.
//
// A hierarchy file maps each type name to its params and the types it fulfills:
//
//	{
//	  "animal": {},
//	  "dog": { "fulfills": ["animal"] },
//	  "list": { "params": [{ "name": "t", "variance": "co" }] }
//	}
//
// JSON, YAML and TOML files have the same shape, and types are declared in the order
// they appear in the file. Files ending in .msgpack hold a compiled hierarchy, as
// written by (*hierarchy.Hierarchy).WriteSnapshot.
package hierdef

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cottand/slottype/hierarchy"
)

type Format int

const (
	UnknownFormat Format = iota
	// YAML also reads JSON
	YAML
	TOML
	Snapshot
)

func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	case Snapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// FormatOf picks the format of a file by its extension
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return YAML
	case ".toml":
		return TOML
	case ".msgpack", ".mpk":
		return Snapshot
	default:
		return UnknownFormat
	}
}

// LoadFile reads and loads the hierarchy at path
func LoadFile(path string) (*hierarchy.Hierarchy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return load(f, path)
}

// LoadFS is LoadFile, reading from fsys
func LoadFS(fsys fs.FS, name string) (*hierarchy.Hierarchy, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return load(f, name)
}

func load(r io.Reader, path string) (*hierarchy.Hierarchy, error) {
	format := FormatOf(path)
	if format == Snapshot {
		h, err := hierarchy.ReadSnapshot(r)
		return h, errors.Wrapf(err, "%s", path)
	}
	def, err := Decode(r, format)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	h, err := hierarchy.New(def)
	return h, errors.Wrapf(err, "%s", path)
}

// ReadFile decodes the definition at path, which must not be a snapshot
func ReadFile(path string) (hierarchy.Definition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	def, err := Decode(bytes.NewReader(content), FormatOf(path))
	return def, errors.Wrapf(err, "%s", path)
}

// Decode reads a definition in the given format
func Decode(r io.Reader, format Format) (hierarchy.Definition, error) {
	switch format {
	case YAML:
		return decodeYAML(r)
	case TOML:
		return decodeTOML(r)
	default:
		return nil, fmt.Errorf("cannot decode a definition from %s format", format)
	}
}

func decodeYAML(r io.Reader) (hierarchy.Definition, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return hierarchy.Definition{}, nil
		}
		return nil, err
	}
	return DecodeNode(&doc)
}

// DecodeNode reads a definition out of an already parsed YAML document or mapping
func DecodeNode(root *yaml.Node) (hierarchy.Definition, error) {
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: a hierarchy must be a mapping of type names to declarations", root.Line)
	}
	def := make(hierarchy.Definition, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		var body hierarchy.TypeBody
		if err := value.Decode(&body); err != nil {
			return nil, errors.Wrapf(err, "line %d: type '%s'", key.Line, key.Value)
		}
		def = append(def, hierarchy.TypeDecl{Name: key.Value, Params: body.Params, Fulfills: body.Fulfills})
	}
	return def, nil
}

func decodeTOML(r io.Reader) (hierarchy.Definition, error) {
	var bodies map[string]hierarchy.TypeBody
	meta, err := toml.NewDecoder(r).Decode(&bodies)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("unknown key '%s'", undecoded[0])
	}
	def := make(hierarchy.Definition, 0, len(bodies))
	for _, key := range meta.Keys() {
		if len(key) != 1 {
			continue
		}
		body := bodies[key[0]]
		def = append(def, hierarchy.TypeDecl{Name: key[0], Params: body.Params, Fulfills: body.Fulfills})
	}
	return def, nil
}
