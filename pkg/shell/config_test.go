package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krillsh/krill/pkg/eval"
)

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "rc.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rc.yaml")
	rc := `
prompt: "%u $ "
recursion_limit: 64
history_file: /tmp/krill-history.db
aliases:
  ll: echo long listing
  g: grep
`
	require.NoError(t, os.WriteFile(path, []byte(rc), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "%u $ ", cfg.Prompt)
	assert.Equal(t, 64, cfg.RecursionLimit)
	assert.Equal(t, "/tmp/krill-history.db", cfg.HistoryFile)
	assert.Equal(t, map[string]string{"ll": "echo long listing", "g": "grep"}, cfg.Aliases)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("aliases: {g: grep}\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Prompt, cfg.Prompt)
	assert.Equal(t, eval.DefaultMaxDepth, cfg.RecursionLimit)
	assert.Equal(t, map[string]string{"g": "grep"}, cfg.Aliases)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompt: [unclosed\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
