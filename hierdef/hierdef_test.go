package hierdef

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottand/slottype/typeerr"
	"github.com/cottand/slottype/typeexpr"
)

var animalTypes = []string{"animal", "mammal", "dog", "cat", "list", "doglist", "consumer"}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, YAML, FormatOf("a/b.JSON"))
	assert.Equal(t, YAML, FormatOf("b.yml"))
	assert.Equal(t, TOML, FormatOf("b.toml"))
	assert.Equal(t, Snapshot, FormatOf("b.msgpack"))
	assert.Equal(t, UnknownFormat, FormatOf("b.txt"))
}

func TestLoadFile(t *testing.T) {
	for _, file := range []string{"animals.json", "animals.yaml", "animals.toml"} {
		t.Run(file, func(t *testing.T) {
			h, err := LoadFile(filepath.Join("testdata", file))
			require.NoError(t, err)
			assert.Equal(t, animalTypes, h.Types())

			ok, err := h.Fulfills(typeexpr.MustParse("doglist"), typeexpr.MustParse("list(mammal)"))
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = h.Fulfills(typeexpr.MustParse("consumer(dog)"), typeexpr.MustParse("consumer(animal)"))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestLoadSnapshot(t *testing.T) {
	h, err := LoadFile(filepath.Join("testdata", "animals.yaml"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "animals.msgpack")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, h.WriteSnapshot(f))
	require.NoError(t, f.Close())

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, h.Types(), loaded.Types())

	_, err = ReadFile(path)
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		file     string
		contains string
		code     typeerr.ErrCode
	}{
		{"unknown_key.toml", "fulfils", typeerr.None},
		{"cycle.yaml", "cycle.yaml", typeerr.Cycle},
		{"list.yaml", "mapping", typeerr.None},
		{"missing.yaml", "missing.yaml", typeerr.None},
	}
	for _, tc := range testCases {
		t.Run(tc.file, func(t *testing.T) {
			_, err := LoadFile(filepath.Join("testdata", tc.file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
			assert.Equal(t, tc.code, typeerr.CodeOf(err))
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	def, err := Decode(strings.NewReader(""), YAML)
	require.NoError(t, err)
	assert.Empty(t, def)

	_, err = Decode(strings.NewReader("{}"), Snapshot)
	assert.Error(t, err)
}

func TestDecodeKeepsOrder(t *testing.T) {
	def, err := Decode(strings.NewReader(`{"zz": {}, "aa": {"fulfills": ["zz"]}, "mm": {}}`), YAML)
	require.NoError(t, err)
	require.Len(t, def, 3)
	assert.Equal(t, "zz", def[0].Name)
	assert.Equal(t, []string{"zz"}, def[1].Fulfills)
	assert.Equal(t, "mm", def[2].Name)
}
