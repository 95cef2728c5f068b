package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const nestedFixture = "../../internal/volprofile/testdata/volume_profile_strategy.json"

func TestRunNormalizeJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runNormalize([]string{nestedFixture}, &out))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	results, ok := doc["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 3)
	first := results[0].(map[string]any)
	assert.Equal(t, "AAPL", first["symbol"])
	assert.Equal(t, "CUR_PRICE_IN_HIGHEST_STACK_RANGE_WITH_ACCEPTABLE_RISK", first["conclusion"])
	cfg := doc["config"].(map[string]any)
	assert.Equal(t, "US", cfg["country"])
}

func TestRunNormalizeYAML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runNormalize([]string{"-format", "yaml", nestedFixture}, &out))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	results, ok := doc["results"].([]any)
	require.True(t, ok)
	assert.Len(t, results, 3)
	assert.Contains(t, out.String(), "conclusion: CUR_PRICE_IN_HIGHEST_STACK_RANGE_WITH_ACCEPTABLE_RISK")
}

func TestRunNormalizeErrors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runNormalize(nil, &out))
	assert.Error(t, runNormalize([]string{"-format", "xml", nestedFixture}, &out))
	assert.Error(t, runNormalize([]string{filepath.Join(t.TempDir(), "missing.json")}, &out))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"foo": 1}`), 0o644))
	assert.Error(t, runNormalize([]string{bad}, &out))
}
