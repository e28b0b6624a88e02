package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "3000", c.Port)
	assert.Equal(t, "sqlite-purego", c.DBType)
	assert.Equal(t, "/etc/bootmgr/templates/", c.TemplatePath)
	assert.Equal(t, 100000, c.MaxNodeset)
	assert.Equal(t, 1000, c.BatchSize)
	assert.Equal(t, int64(1<<20), c.MaxTemplateBytes)
	assert.True(t, c.IsSQLite())
	assert.Equal(t, ":3000", c.Address())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	cfgFile := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("port: \"8080\"\ntemplate_path: /srv/tpl\nbatch_size: 10\n"), 0o644))

	t.Setenv("BMGR_PORT", "9090")
	t.Setenv("BMGR_MAX_NODESET", "50")

	c, err := Load(cfgFile)
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "/srv/tpl", c.TemplatePath)
	assert.Equal(t, 10, c.BatchSize)
	assert.Equal(t, 50, c.MaxNodeset)
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bootmgr.yaml"), []byte("log_format: console\n"), 0o644))

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "console", c.LogFormat)
}

func TestLoadRejectsInvalid(t *testing.T) {
	chdirTemp(t)

	t.Setenv("BMGR_DB_TYPE", "oracle")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("BMGR_DB_TYPE", "postgres")
	t.Setenv("BMGR_DB_HOST", "db")
	_, err = Load("")
	assert.ErrorContains(t, err, "db_user")

	t.Setenv("BMGR_DB_USER", "bmgr")
	c, err := Load("")
	require.NoError(t, err)
	assert.False(t, c.IsSQLite())

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
