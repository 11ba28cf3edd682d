package scenario

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lookAhead = `
name: look-ahead
types:
  animal: {}
  dog: { fulfills: [animal] }
  cat: { fulfills: [animal] }
  list: { params: [{ name: t, variance: co }] }
blocks:
  - { id: sink, inputs: [{ name: in, check: dog }] }
  - { id: id, output: t, inputs: [{ name: in, check: t }] }
  - { id: tom, output: cat }
  - { id: rex, output: dog }
  - { id: wrap, output: list(t), inputs: [{ name: in, check: t }] }
steps:
  - connect: [id.output, sink.in]
  - check: [tom.output, id.in]
    want: false
  - connect: [tom.output, id.in]
    want: false
  - connect: [rex.output, id.in]
  - explicitTypes: { block: id, generic: t }
    wantTypes: [dog]
  - connectionTypes: wrap.output
    wantTypes: ["list(*)"]
  - connect: [tom.output, wrap.in]
  - connectionTypes: wrap.output
    wantTypes: ["List(Cat)"]
  - fulfills: ["list(cat)", "list(animal)"]
  - bind: { block: id, generic: t, type: unicorn }
    wantError: not defined
  - bind: { block: id, generic: t, type: "list(u)" }
    wantError: must not contain generics
  - unbind: { block: id, generic: t }
    want: false
  - disconnect: rex.output
  - explicitTypes: { block: id, generic: t }
    wantTypes: [dog]
  - disconnect: id.output
  - delete: wrap
`

func TestRun(t *testing.T) {
	s, err := Parse([]byte(lookAhead))
	require.NoError(t, err)
	assert.Equal(t, "look-ahead", s.Name)

	report, err := s.Run()
	require.NoError(t, err)
	for _, o := range report.Outcomes {
		assert.True(t, o.Passed, "step %d (%s): want %s, got %s", o.Step, o.Action, o.Want, o.Got)
	}
	assert.True(t, report.Passed())
	assert.Len(t, report.Outcomes, 16)
}

func TestFailedExpectations(t *testing.T) {
	s, err := Parse([]byte(`
types:
  animal: {}
  dog: { fulfills: [animal] }
blocks:
  - { id: a, output: dog }
  - { id: b, inputs: [{ name: in, check: animal }] }
steps:
  - connect: [a.output, b.in]
    want: false
  - explicitTypes: { block: b, generic: t }
    wantTypes: [dog]
  - connect: [a.output, b.nope]
  - bind: { block: b, generic: t, type: dog }
    wantError: something
`))
	require.NoError(t, err)
	report, err := s.Run()
	require.NoError(t, err)
	assert.False(t, report.Passed())
	require.Len(t, report.Failures(), 4)
	assert.Equal(t, "true", report.Outcomes[0].Got)
	assert.Equal(t, "[]", report.Outcomes[1].Got)
	assert.Contains(t, report.Outcomes[2].Got, "no slot 'nope'")
	assert.Equal(t, "no error", report.Outcomes[3].Got)
}

func TestParseErrors(t *testing.T) {
	testCases := map[string]string{
		"two actions":   "steps:\n  - { delete: a, disconnect: a.output }",
		"no action":     "steps:\n  - { want: true }",
		"wrong arity":   "steps:\n  - { connect: [a.output] }",
		"both sources":  "hierarchy: h.yaml\ntypes: { animal: {} }",
		"not a mapping": "- a",
	}
	for name, content := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"hierarchies/animals.toml": {Data: []byte("[animal]\n[dog]\nfulfills = [\"animal\"]\n")},
		"scenarios/dog.yaml": {Data: []byte(`
hierarchy: ../hierarchies/animals.toml
blocks:
  - { id: a, output: animal }
  - { id: b, inputs: [{ name: in, check: dog }] }
steps:
  - check: [a.output, b.in]
    want: false
`)},
	}
	s, err := Load(fsys, "scenarios/dog.yaml")
	require.NoError(t, err)
	assert.Equal(t, "dog.yaml", s.Name)

	report, err := s.Run()
	require.NoError(t, err)
	assert.True(t, report.Passed())

	t.Run("missing hierarchy", func(t *testing.T) {
		s, err := Parse([]byte("hierarchy: nowhere.yaml"))
		require.NoError(t, err)
		_, err = s.Run()
		assert.Error(t, err)
	})
}

func TestLoadFileWithSiblingHierarchy(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "hierarchies"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "scenarios"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hierarchies", "animals.toml"),
		[]byte("[animal]\n[dog]\nfulfills = [\"animal\"]\n"), 0o644))
	scenarioPath := filepath.Join(dir, "scenarios", "dog.yaml")
	require.NoError(t, os.WriteFile(scenarioPath, []byte(`
hierarchy: ../hierarchies/animals.toml
blocks:
  - { id: a, output: dog }
  - { id: b, inputs: [{ name: in, check: animal }] }
steps:
  - check: [a.output, b.in]
    want: true
`), 0o644))

	s, err := LoadFile(scenarioPath)
	require.NoError(t, err)
	assert.Equal(t, "dog.yaml", s.Name)

	report, err := s.Run()
	require.NoError(t, err)
	assert.True(t, report.Passed())
}

func TestRunReportsInvalidSteps(t *testing.T) {
	s := &Scenario{
		Name: "built in code",
		Steps: []Step{
			{},
			{Delete: "a", Disconnect: "a.output", WantError: "more than one"},
			{Check: []string{"a.output"}},
		},
	}
	report, err := s.Run()
	require.NoError(t, err)
	require.Len(t, report.Failures(), 3)
	assert.Contains(t, report.Outcomes[0].Got, "step does nothing")
	assert.Contains(t, report.Outcomes[1].Got, "more than one thing")
	assert.Contains(t, report.Outcomes[2].Got, "exactly two arguments")
	assert.Equal(t, 3, report.Outcomes[2].Step)
}
