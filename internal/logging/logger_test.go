package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// restore puts the global logger back the way the test found it.
func restore(t *testing.T) {
	t.Helper()
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		Close()
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestSetup_FileAndLevel(t *testing.T) {
	restore(t)

	path := filepath.Join(t.TempDir(), "app.log")
	Setup(Config{Level: "warn", File: path})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	l := Component("catalog")
	l.Warn().Msg("page failed")
	l.Info().Msg("below level")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"catalog"`)
	assert.Contains(t, string(data), "page failed")
	assert.NotContains(t, string(data), "below level")
}

func TestSetup_InvalidLevel(t *testing.T) {
	restore(t)

	Setup(Config{Level: "chatty", File: filepath.Join(t.TempDir(), "x.log")})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestSetup_ReplacesFile(t *testing.T) {
	restore(t)

	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	Setup(Config{Level: "info", File: first})
	cli := Component("cli")
	cli.Info().Msg("before")
	Setup(Config{Level: "info", File: second})
	tui := Component("tui")
	tui.Info().Msg("after")

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Contains(t, string(data), "before")
	assert.NotContains(t, string(data), "after")

	data, err = os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"tui"`)
}

func TestComponent_FollowsLaterSetup(t *testing.T) {
	restore(t)

	dir := t.TempDir()
	Setup(Config{Level: "info", File: filepath.Join(dir, "boot.log")})
	early := Component("catalog")

	path := filepath.Join(dir, "chat.log")
	Setup(Config{Level: "info", File: path})
	early.Info().Msg("written after reconfiguration")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"catalog"`)
	assert.Contains(t, string(data), "written after reconfiguration")
}
