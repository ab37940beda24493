package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet(s *Settings) *pflag.FlagSet {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	s.RegisterLogFlags(fs)
	s.RegisterServerFlags(fs)
	return fs
}

func TestRegisterServerFlagsDefaults(t *testing.T) {
	var s Settings
	fs := newFlagSet(&s)
	require.NoError(t, fs.Parse(nil))

	assert.Equal(t, Defaults(), s)
}

func TestApplyEnv(t *testing.T) {
	t.Run("environment fills unset flags", func(t *testing.T) {
		t.Setenv("CLUEDO_PORT", "9000")
		t.Setenv("CLUEDO_STORE", "sqlite")
		t.Setenv("CLUEDO_NARRATION_TIMEOUT", "3s")

		var s Settings
		fs := newFlagSet(&s)
		require.NoError(t, fs.Parse(nil))
		require.NoError(t, ApplyEnv(fs, NewViper()))

		assert.Equal(t, 9000, s.Port)
		assert.Equal(t, "sqlite", s.StoreBackend)
		assert.Equal(t, 3*time.Second, s.NarrationTimeout)
		assert.Equal(t, "games.db", s.StorePath())
	})

	t.Run("command line wins", func(t *testing.T) {
		t.Setenv("CLUEDO_PORT", "9000")

		var s Settings
		fs := newFlagSet(&s)
		require.NoError(t, fs.Parse([]string{"--port", "8081"}))
		require.NoError(t, ApplyEnv(fs, NewViper()))

		assert.Equal(t, 8081, s.Port)
	})

	t.Run("legacy names are accepted", func(t *testing.T) {
		t.Setenv("USE_OPENAI", "true")
		t.Setenv("OPENAI_API_KEY", "sk-test")

		var s Settings
		fs := newFlagSet(&s)
		require.NoError(t, fs.Parse(nil))
		require.NoError(t, ApplyEnv(fs, NewViper()))

		assert.True(t, s.NarrationEnabled())
	})

	t.Run("bad values are reported", func(t *testing.T) {
		t.Setenv("CLUEDO_MAX_PLAYERS", "many")

		var s Settings
		fs := newFlagSet(&s)
		require.NoError(t, fs.Parse(nil))
		assert.ErrorContains(t, ApplyEnv(fs, NewViper()), "max-players")
	})
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CLUEDO_TEST_DOTENV=loaded\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CLUEDO_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("CLUEDO_TEST_DOTENV"))

	assert.Error(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
