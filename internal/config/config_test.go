package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("mapping", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.String("format", "", "")
	return flags
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultMappingFile, cfg.Mapping)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, FormatText, cfg.Format)
	assert.Empty(t, cfg.File)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mapping: from-file.yaml\nverbose: true\n"), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-file.yaml", cfg.Mapping)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, path, cfg.File)

	t.Setenv("DBH_MAPPING", "from-env.yaml")
	cfg, err = Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env.yaml", cfg.Mapping)

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--mapping", "from-flag.yaml", "--format", "yaml"}))
	cfg, err = Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.yaml", cfg.Mapping)
	assert.Equal(t, FormatYAML, cfg.Format)
	// Unset flags don't override the file.
	assert.True(t, cfg.Verbose)
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(DefaultConfigFile, []byte("mapping: local.yaml\n"), 0o600))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "local.yaml", cfg.Mapping)
	assert.Equal(t, DefaultConfigFile, cfg.File)
}

func TestLoad_BadFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_BadFormat(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DBH_FORMAT", "xml")

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestLoad_DSN(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DBH_DSN", "app:secret@tcp(localhost:3306)/app?parseTime=true")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "app:secret@tcp(localhost:3306)/app?parseTime=true", cfg.DSN)

	t.Setenv("DBH_DSN", "not a dsn")
	_, err = Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid dsn")
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
