package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	flags := newApp().Flags

	tests := []struct {
		name        string
		args        []string
		wantKnown   []string
		wantUnknown []string
	}{
		{
			name:      "validate flag",
			args:      []string{"--validate"},
			wantKnown: []string{"--validate"},
		},
		{
			name:        "unknown flag and positional",
			args:        []string{"--fullscreen", "scene.glb", "--validate"},
			wantKnown:   []string{"--validate"},
			wantUnknown: []string{"--fullscreen", "scene.glb"},
		},
		{
			name:      "value flags consume their value",
			args:      []string{"--scene", "data/fox.glb", "-width", "800", "--height=600", "-v"},
			wantKnown: []string{"--scene", "data/fox.glb", "-width", "800", "--height=600", "-v"},
		},
		{
			name:      "bool flag does not consume the next argument",
			args:      []string{"--profile", "--frames", "3"},
			wantKnown: []string{"--profile", "--frames", "3"},
		},
		{
			name:        "terminator and bare dashes",
			args:        []string{"--", "-", "--help"},
			wantKnown:   []string{"--help"},
			wantUnknown: []string{"--", "-"},
		},
		{
			name:      "trailing value flag is left for the parser",
			args:      []string{"--backend"},
			wantKnown: []string{"--backend"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			known, unknown := filterArgs(tt.args, flags)
			assert.Equal(t, tt.wantKnown, known)
			assert.Equal(t, tt.wantUnknown, unknown)
		})
	}
}

func TestRun_Headless(t *testing.T) {
	app := newApp()
	err := app.Run([]string{"oxy-deferred", "--backend", "headless", "--validate", "--frames", "2", "--data", t.TempDir(), "--width", "64", "--height", "32"})
	require.NoError(t, err)
}

func TestRun_UnknownBackend(t *testing.T) {
	app := newApp()
	err := app.Run([]string{"oxy-deferred", "--backend", "vulkan"})
	assert.Error(t, err)
}
