package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRunText(t *testing.T) {
	var report Report
	require.NoError(t, yaml.Unmarshal([]byte(RunText(lookAhead)), &report))
	assert.Equal(t, "look-ahead", report.Scenario)
	assert.True(t, report.Passed())

	var doc map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(RunText("steps: [{}]")), &doc))
	assert.Contains(t, doc["error"], "step does nothing")
}

func TestFulfillsText(t *testing.T) {
	h := "animal: {}\ndog: { fulfills: [animal] }\nbox: { params: [{ name: t, variance: inv }] }"
	testCases := []struct {
		sub, super string
		expected   bool
	}{
		{"dog", "animal", true},
		{"animal", "dog", false},
		{"box(dog)", "box(animal)", false},
		{"box(dog)", "box(t)", true},
	}
	for _, tc := range testCases {
		t.Run(tc.sub+" <: "+tc.super, func(t *testing.T) {
			ok, err := FulfillsText(h, tc.sub, tc.super)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ok)
		})
	}

	_, err := FulfillsText(h, "dog", "cat")
	assert.Error(t, err)
	_, err = FulfillsText("[", "dog", "cat")
	assert.Error(t, err)
}
