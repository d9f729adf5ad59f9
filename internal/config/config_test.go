package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetConfigDefaults(t *testing.T) {
	cfg := GetConfig()

	require.Equal(t, "postgres", cfg.Database.Dialect)
	require.Equal(t, "localhost", cfg.Database.Host)
	require.Equal(t, 5432, cfg.Database.Port)
	require.Equal(t, "disable", cfg.Database.SSLMode)

	require.Equal(t, []string{"comment", "remark", "feedback"}, cfg.Report.TextKeywords)
	require.Equal(t, []string{"date", "time"}, cfg.Report.TemporalKeywords)
	require.Empty(t, cfg.Report.TemporalTypes)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.Database.Dialect)
	require.Equal(t, []string{"comment", "remark", "feedback"}, cfg.Report.TextKeywords)
}

func TestLoadConfigFromFile(t *testing.T) {
	content := `
database:
  dialect: sqlserver
  host: db.internal
  port: 1433
report:
  text_keywords:
    - review
    - note
  temporal_types:
    - date
    - datetime2
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "sqlserver", cfg.Database.Dialect)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, 1433, cfg.Database.Port)
	require.Equal(t, []string{"review", "note"}, cfg.Report.TextKeywords)
	// Defaults survive for keys the file does not set.
	require.Equal(t, []string{"date", "time"}, cfg.Report.TemporalKeywords)
	require.Equal(t, []string{"date", "datetime2"}, cfg.Report.TemporalTypes)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("DBFR_DATABASE_DBNAME", "envdb")
	t.Setenv("DBFR_DATABASE_USER", "envuser")
	t.Setenv("DBFR_DATABASE_PASSWORD", "envpass")
	t.Setenv("DBFR_REPORT_TEXT_KEYWORDS", "note,review")
	t.Setenv("DBFR_REPORT_TEMPORAL_TYPES", "date,datetime2")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, "envdb", cfg.Database.DBName)
	require.Equal(t, "envuser", cfg.Database.User)
	require.Equal(t, "envpass", cfg.Database.Password)
	require.Equal(t, []string{"note", "review"}, cfg.Report.TextKeywords)
	require.Equal(t, []string{"date", "datetime2"}, cfg.Report.TemporalTypes)
	// Untouched keys keep their defaults.
	require.Equal(t, "postgres", cfg.Database.Dialect)
	require.Equal(t, []string{"date", "time"}, cfg.Report.TemporalKeywords)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config file")
}
