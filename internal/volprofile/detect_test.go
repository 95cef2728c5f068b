package volprofile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return raw
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Format
	}{
		{"nested results", string(loadFixture(t, "volume_profile_strategy.json")), FormatNew},
		{"flat results", string(loadFixture(t, "legacy.json")), FormatLegacy},
		{"empty object", `{}`, FormatLegacy},
		{"empty results", `{"results":[]}`, FormatLegacy},
		{"null document", `null`, FormatLegacy},
		{"number document", `42`, FormatLegacy},
		{"invalid json", `{"results":[`, FormatLegacy},
		{"empty input", ``, FormatLegacy},
		{"null nested key", `{"results":[{"strategy_position_output":null,"symbol_analysis_output":{}}]}`, FormatLegacy},
		{"only one nested key", `{"results":[{"symbol_analysis_output":{}}]}`, FormatLegacy},
		{"results is object", `{"results":{"0":{"strategy_position_output":{},"symbol_analysis_output":{}}}}`, FormatLegacy},
		{"shape only", `{"results":[{"strategy_position_output":1,"symbol_analysis_output":"x"}]}`, FormatNew},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectFormat([]byte(tc.raw))
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, DetectFormat([]byte(tc.raw)))
		})
	}
}

func TestClassifyFormat(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Format
	}{
		{"nested results", string(loadFixture(t, "volume_profile_strategy.json")), FormatNew},
		{"flat results", string(loadFixture(t, "legacy.json")), FormatLegacy},
		{"empty results", `{"timestamp":"x","results":[]}`, FormatLegacy},
		{"missing results", `{"timestamp":"x"}`, FormatUnrecognized},
		{"results not array", `{"results":"oops"}`, FormatUnrecognized},
		{"scalar entries", `{"results":[1,2]}`, FormatUnrecognized},
		{"symbol without conclusion", `{"results":[{"symbol":"X"}]}`, FormatUnrecognized},
		{"array document", `[]`, FormatUnrecognized},
		{"invalid json", `not json`, FormatUnrecognized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyFormat([]byte(tc.raw)))
		})
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "new", FormatNew.String())
	assert.Equal(t, "legacy", FormatLegacy.String())
	assert.Equal(t, "unrecognized", FormatUnrecognized.String())
}
