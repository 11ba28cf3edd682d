// Package scenario runs YAML descriptions of a block graph against the engine.
//
// A scenario declares a hierarchy, the blocks of a workspace, and a list of steps.
// Steps connect, bind and query, and each may state the outcome it expects:
//
//	name: look-ahead
//	types:
//	  animal: {}
//	  dog: { fulfills: [animal] }
//	  cat: { fulfills: [animal] }
//	blocks:
//	  - { id: sink, inputs: [{ name: in, check: dog }] }
//	  - { id: id, output: t, inputs: [{ name: in, check: t }] }
//	  - { id: tom, output: cat }
//	steps:
//	  - connect: [id.output, sink.in]
//	  - check: [tom.output, id.in]
//	    want: false
package scenario

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cottand/slottype/hierarchy"
	"github.com/cottand/slottype/hierdef"
)

type Scenario struct {
	Name string `yaml:"name"`
	// Hierarchy is the path of a hierarchy file, relative to the scenario file
	Hierarchy string `yaml:"hierarchy"`
	// Types declares the hierarchy inline, in the format of hierarchy files
	Types  yaml.Node `yaml:"types"`
	Blocks []Block   `yaml:"blocks"`
	Steps  []Step    `yaml:"steps"`

	fsys fs.FS
	dir  string
	// fileDir is the directory on disk of a scenario read by LoadFile
	fileDir string
}

// Block declares a block of the workspace. Slots that are absent do not exist; an
// empty check accepts anything.
type Block struct {
	ID       string  `yaml:"id"`
	Output   *string `yaml:"output"`
	Previous *string `yaml:"previous"`
	Next     *string `yaml:"next"`
	Inputs   []Input `yaml:"inputs"`
}

type Input struct {
	Name  string `yaml:"name"`
	Check string `yaml:"check"`
}

// Step does exactly one thing. Slots are referred to as block.slot, where slot is
// output, previous, next or the name of an input.
type Step struct {
	Connect    []string `yaml:"connect"`
	Disconnect string   `yaml:"disconnect"`
	Delete     string   `yaml:"delete"`
	Bind       *Binding `yaml:"bind"`
	Unbind     *Binding `yaml:"unbind"`

	Check           []string `yaml:"check"`
	ExplicitTypes   *Binding `yaml:"explicitTypes"`
	ConnectionTypes string   `yaml:"connectionTypes"`
	// Fulfills is [sub, super]
	Fulfills []string `yaml:"fulfills"`

	// Want is the outcome expected of connect, delete, bind, unbind, check and
	// fulfills, true when absent
	Want *bool `yaml:"want"`
	// WantTypes is the result expected of explicitTypes and connectionTypes
	WantTypes []string `yaml:"wantTypes"`
	// WantError makes the step pass only if it fails with an error containing it
	WantError string `yaml:"wantError"`
}

type Binding struct {
	Block   string `yaml:"block"`
	Generic string `yaml:"generic"`
	// Type is ignored by unbind and explicitTypes
	Type string `yaml:"type"`
}

// Load reads the scenario called name in fsys. Its hierarchy file is looked up
// in fsys too.
func Load(fsys fs.FS, name string) (*Scenario, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	s, err := Parse(content)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	s.fsys = fsys
	s.dir = path.Dir(name)
	if s.Name == "" {
		s.Name = path.Base(name)
	}
	return s, nil
}

// LoadFile reads the scenario at path on disk
func LoadFile(p string) (*Scenario, error) {
	content, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	s, err := Parse(content)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", p)
	}
	s.fileDir = filepath.Dir(p)
	if s.Name == "" {
		s.Name = filepath.Base(p)
	}
	return s, nil
}

// Parse reads a scenario. Scenarios that are not loaded from a file system must
// declare their types inline.
func Parse(content []byte) (*Scenario, error) {
	s := &Scenario{}
	if err := yaml.Unmarshal(content, s); err != nil {
		return nil, err
	}
	if s.Hierarchy != "" && s.Types.Kind != 0 {
		return nil, errors.New("a scenario cannot declare both a hierarchy file and inline types")
	}
	for i, st := range s.Steps {
		if _, err := st.action(); err != nil {
			return nil, errors.Wrapf(err, "step %d", i+1)
		}
	}
	return s, nil
}

func (s *Scenario) loadHierarchy() (*hierarchy.Hierarchy, error) {
	if s.Hierarchy == "" {
		def := hierarchy.Definition{}
		if s.Types.Kind != 0 {
			var err error
			if def, err = hierdef.DecodeNode(&s.Types); err != nil {
				return nil, err
			}
		}
		return hierarchy.New(def)
	}
	if s.fileDir != "" {
		return hierdef.LoadFile(filepath.Join(s.fileDir, filepath.FromSlash(s.Hierarchy)))
	}
	if s.fsys == nil {
		return nil, errors.Errorf("cannot open hierarchy '%s' of a scenario not loaded from files", s.Hierarchy)
	}
	return hierdef.LoadFS(s.fsys, path.Join(s.dir, s.Hierarchy))
}
