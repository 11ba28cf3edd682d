package main

import (
	"bytes"
	"embed"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottand/slottype/scenario"
)

// embeds the test folder
//
//go:embed testdata
var testSet embed.FS

func TestScenariosEndToEnd(t *testing.T) {
	files, err := testSet.ReadDir("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}
		t.Run(f.Name(), func(t *testing.T) {
			s, err := scenario.Load(testSet, path.Join("testdata/scenarios", f.Name()))
			require.NoError(t, err)
			report, err := s.Run()
			require.NoError(t, err)
			for _, o := range report.Outcomes {
				assert.True(t, o.Passed, "%s, step %d (%s):\n want: %s\n got:  %s", s.Name, o.Step, o.Action, o.Want, o.Got)
			}
		})
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(append(args, "--no-color"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	out, err := runCLI(t, "check", "testdata/scenarios/lookahead.yaml", "testdata/scenarios/binding.yaml")
	require.NoError(t, err, out)
	assert.Contains(t, out, "PASS look-ahead blocks connection")
	assert.Contains(t, out, "PASS external binding")
}

func TestValidateCommand(t *testing.T) {
	out, err := runCLI(t, "validate", "-j", "2",
		"testdata/hierarchies/animals.yaml",
		"testdata/hierarchies/diamond.toml",
		"testdata/hierarchies/cycle.json",
	)
	assert.Error(t, err)
	assert.Contains(t, out, "ok   testdata/hierarchies/animals.yaml (10 types)")
	assert.Contains(t, out, "ok   testdata/hierarchies/diamond.toml (5 types)")
	assert.Contains(t, out, "FAIL testdata/hierarchies/cycle.json")
	assert.Contains(t, out, "(E007)")
}

func TestCompileAndQueryCommands(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "animals.msgpack")
	out, err := runCLI(t, "compile", "testdata/hierarchies/animals.yaml", "-o", snapshot)
	require.NoError(t, err, out)

	out, err = runCLI(t, "query", "-H", snapshot, "fulfills", "list(dog)", "collection(mammal)")
	require.NoError(t, err, out)
	assert.Contains(t, out, "yes list(dog) fulfills collection(mammal)")

	out, err = runCLI(t, "query", "-H", snapshot, "parents", "dog", "cat")
	require.NoError(t, err, out)
	assert.Equal(t, "mammal\n", out)

	out, err = runCLI(t, "query", "-H", "testdata/hierarchies/diamond.toml", "descendants", "aa", "bb")
	require.NoError(t, err, out)
	assert.Equal(t, "cc\ndd\n", out)

	out, err = runCLI(t, "query", "-H", snapshot, "ancestors", "Dog")
	require.NoError(t, err, out)
	assert.Equal(t, "animal\nmammal\ndog\n", out)

	_, err = runCLI(t, "query", "-H", snapshot, "fulfills", "unicorn", "dog")
	assert.Error(t, err)
}
