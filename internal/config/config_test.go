package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/dojotimer/internal/cue"
)

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	// Keep the developer's own config file out of the way.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(flags(t))
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.LogLevel, cfg.LogLevel)
	assert.Equal(t, d.LogFile, cfg.LogFile)
	assert.Equal(t, time.Second, cfg.Tick)
	assert.Equal(t, 3, cfg.CountdownSeconds)
	assert.Equal(t, 99, cfg.InfiniteSets)
	assert.Empty(t, cfg.Listen)
	assert.False(t, cfg.NoAudio)
	assert.Empty(t, cfg.CueAssets)
}

func TestLoadEnv(t *testing.T) {
	fs := flags(t)
	t.Setenv("DOJO_NO_AUDIO", "true")
	t.Setenv("DOJO_TICK", "10ms")
	t.Setenv("DOJO_CUE_FINISH", "/sounds/gong.wav")
	t.Setenv("DOJO_PROGRAMS_DIR", "/srv/programs")

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.True(t, cfg.NoAudio)
	assert.Equal(t, 10*time.Millisecond, cfg.Tick)
	assert.Equal(t, "/srv/programs", cfg.ProgramsDir)
	assert.Equal(t, map[cue.Kind]string{cue.KindFinish: "/sounds/gong.wav"}, cfg.CueAssets)
}

func TestFlagsOverrideEnv(t *testing.T) {
	fs := flags(t, "--tick=20ms", "--listen=:9000")
	t.Setenv("DOJO_TICK", "10ms")
	t.Setenv("DOJO_LISTEN", ":7000")

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, cfg.Tick)
	assert.Equal(t, ":9000", cfg.Listen)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dojo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9090\"\ncountdown-seconds: 5\nno-countdown: true\n"), 0o644))

	cfg, err := Load(flags(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, 5, cfg.CountdownSeconds)
	assert.True(t, cfg.NoCountdown)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(flags(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero infinite sets", []string{"--infinite-sets=0"}},
		{"negative countdown", []string{"--countdown-seconds=-1"}},
		{"zero tick", []string{"--tick=0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(flags(t, tt.args...))
			assert.Error(t, err)
		})
	}
}

func TestLoadNilFlagSet(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Tick)
}
