package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDefaultFlags(t *testing.T) {
	t.Parallel()

	flags := getDefaultFlags()
	assert.Equal(t, "camoufox", flags.serverBinary)
	assert.Equal(t, "stderr", flags.logOutput)
	assert.Empty(t, flags.configPayload)
	assert.Empty(t, flags.logFormat)
	assert.False(t, flags.noColor)
	assert.False(t, flags.verbose)
}

func TestGetFlags(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		env    map[string]string
		mutate func(*globalFlags)
	}{
		{"empty env", nil, func(*globalFlags) {}},
		{
			"config payload", map[string]string{"CAMOUFOX_CONFIG": `{"debug": true}`},
			func(f *globalFlags) { f.configPayload = `{"debug": true}` },
		},
		{
			"server binary", map[string]string{"CAMOUFOX_SERVER_BINARY": "/usr/local/bin/camoufox"},
			func(f *globalFlags) { f.serverBinary = "/usr/local/bin/camoufox" },
		},
		{
			"log output", map[string]string{"CAMOUFOX_LOG_OUTPUT": "none"},
			func(f *globalFlags) { f.logOutput = "none" },
		},
		{
			"log format", map[string]string{"CAMOUFOX_LOG_FORMAT": "json"},
			func(f *globalFlags) { f.logFormat = "json" },
		},
		{"no color needs a value", map[string]string{"CAMOUFOX_NO_COLOR": ""}, func(*globalFlags) {}},
		{
			"no color set", map[string]string{"CAMOUFOX_NO_COLOR": "true"},
			func(f *globalFlags) { f.noColor = true },
		},
		{
			"NO_COLOR disables color even when empty", map[string]string{"NO_COLOR": ""},
			func(f *globalFlags) { f.noColor = true },
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			defaults := getDefaultFlags()
			expected := defaults
			tc.mutate(&expected)
			assert.Equal(t, expected, getFlags(defaults, tc.env))
		})
	}
}

func TestBuildEnvMap(t *testing.T) {
	t.Parallel()

	env := buildEnvMap([]string{
		"CAMOUFOX_DEBUG=true", "EMPTY=", "NOVALUE", "EQ=a=b", "PATH=/usr/bin:/bin",
	})
	assert.Equal(t, map[string]string{
		"CAMOUFOX_DEBUG": "true",
		"EMPTY":          "",
		"NOVALUE":        "",
		"EQ":             "a=b",
		"PATH":           "/usr/bin:/bin",
	}, env)
}
