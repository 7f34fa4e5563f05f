package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnvVars_BracedAndDefault(t *testing.T) {
	require.NoError(t, os.Setenv("AGENTRY_TEST_LEVEL", "debug"))
	defer os.Unsetenv("AGENTRY_TEST_LEVEL")

	assert.Equal(t, "debug", expandEnvVars("${AGENTRY_TEST_LEVEL}"))
	assert.Equal(t, "fallback", expandEnvVars("${AGENTRY_TEST_UNSET:-fallback}"))
	assert.Equal(t, "debug", expandEnvVars("$AGENTRY_TEST_LEVEL"))
}

func TestParseValue_CoercesScalars(t *testing.T) {
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, false, parseValue("False"))
	assert.Equal(t, 3, parseValue("3"))
	assert.Equal(t, 1.5, parseValue("1.5"))
	assert.Equal(t, "hello", parseValue("hello"))
}

func TestExpandEnvVarsInData_WalksNestedMaps(t *testing.T) {
	require.NoError(t, os.Setenv("AGENTRY_TEST_NODES", "42"))
	defer os.Unsetenv("AGENTRY_TEST_NODES")

	data := map[string]any{
		"planner": map[string]any{
			"maxExploredNodes": "${AGENTRY_TEST_NODES}",
		},
		"sinks": []any{"stdout", "${AGENTRY_TEST_UNSET:-file}"},
	}

	got := ExpandEnvVarsInData(data).(map[string]any)
	planner := got["planner"].(map[string]any)
	assert.Equal(t, 42, planner["maxExploredNodes"])

	sinks := got["sinks"].([]any)
	assert.Equal(t, "stdout", sinks[0])
	assert.Equal(t, "file", sinks[1])
}
