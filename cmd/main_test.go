package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheerer/arcade-button-fx/internal/fx"
	"github.com/scheerer/arcade-button-fx/internal/presets"
)

func TestChecksPass(t *testing.T) {
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			require.NoError(t, c.run())
		})
	}
	assert.Equal(t, 0, runChecks())
}

func TestReplayPreset(t *testing.T) {
	for _, p := range presets.All() {
		config := DryRunConfig{Preset: p.ID, FrameInterval: 20 * time.Millisecond, Duration: time.Second, LogEvery: 25}
		assert.NoError(t, replayPreset(config), p.ID)
	}

	err := replayPreset(DryRunConfig{Preset: "disco", FrameInterval: 20 * time.Millisecond})
	assert.ErrorIs(t, err, presets.ErrUnknownPreset)

	err = replayPreset(DryRunConfig{Preset: presets.DefaultID})
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	lit, brightest := summarize([]fx.RGB{{}, {R: 10}, {R: 200, G: 10}, {B: 100}})
	assert.Equal(t, 3, lit)
	assert.Equal(t, 2, brightest)

	lit, brightest = summarize([]fx.RGB{{}, {}})
	assert.Equal(t, 0, lit)
	assert.Equal(t, 0, brightest)
}
