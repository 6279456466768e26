package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "file", cfg.Catalog.Source)
	assert.Equal(t, "database.xlsx", cfg.Catalog.Path)
	assert.True(t, cfg.Report.Compress)
	assert.False(t, cfg.Email.Enabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "landedcost.toml")
	body := `
[server]
port = 9090

[catalog]
source = "db"
reload_interval = "*/15 * * * *"

[report]
logo_required = true
footer = ["Tariff desk", "Pune"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("LANDEDCOST_PORT", "9191")
	t.Setenv("LANDEDCOST_DB_DRIVER", "postgres")
	t.Setenv("LANDEDCOST_AUTO_MIGRATE", "yes")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "db", cfg.Catalog.Source)
	assert.Equal(t, "*/15 * * * *", cfg.Catalog.ReloadInterval)
	assert.Equal(t, "database.xlsx", cfg.Catalog.Path, "unset keys keep defaults")
	assert.True(t, cfg.Report.LogoRequired)
	assert.Equal(t, []string{"Tariff desk", "Pune"}, cfg.Report.Footer)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.True(t, cfg.DB.AutoMigrate)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	t.Setenv("LANDEDCOST_PORT", "eighty")
	_, err = Load("")
	assert.Error(t, err)
}

func TestApplyEnv_Footer(t *testing.T) {
	t.Setenv("LANDEDCOST_REPORT_FOOTER", "Line one | Line two")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Line one", "Line two"}, cfg.Report.Footer)
}
