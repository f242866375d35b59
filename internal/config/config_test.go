package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("JWT_ACCESSSECRET", "access")
	t.Setenv("JWT_REFRESHSECRET", "refresh")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("TERM_SEMESTER", "2")
	t.Setenv("TERM_YEAR", "2023")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "access", cfg.JWT.AccessSecret)
	assert.Equal(t, "refresh", cfg.JWT.RefreshSecret)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, "orgfees", cfg.MongoDB.Database)
	assert.Equal(t, 2, cfg.Term.Semester)
	assert.Equal(t, 2023, cfg.Term.Year)
}

func TestLoadConfigReadsYAMLAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "server:\n  port: \"5000\"\nmongodb:\n  database: fees_test\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_ACCESSSECRET=a\nJWT_REFRESHSECRET=b\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("JWT_ACCESSSECRET")
		os.Unsetenv("JWT_REFRESHSECRET")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "fees_test", cfg.MongoDB.Database)
	assert.Equal(t, "a", cfg.JWT.AccessSecret)
}

func TestLoadConfigIgnoresShellTERM(t *testing.T) {
	t.Setenv("JWT_ACCESSSECRET", "access")
	t.Setenv("JWT_REFRESHSECRET", "refresh")
	t.Setenv("TERM", "xterm-256color")
	t.Setenv("TERM_SEMESTER", "")
	t.Setenv("TERM_YEAR", "")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	semester, year := defaultTerm(time.Now())
	assert.Equal(t, semester, cfg.Term.Semester)
	assert.Equal(t, year, cfg.Term.Year)

	dir := t.TempDir()
	yaml := "schoolTerm:\n  semester: 3\n  year: 2022\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err = LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Term.Semester)
	assert.Equal(t, 2022, cfg.Term.Year)
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_ACCESSSECRET", "")
	t.Setenv("JWT_REFRESHSECRET", "")

	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestDefaultTerm(t *testing.T) {
	cases := []struct {
		date     time.Time
		semester int
		year     int
	}{
		{time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC), 1, 2024},
		{time.Date(2024, time.December, 20, 0, 0, 0, 0, time.UTC), 1, 2024},
		{time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC), 2, 2024},
		{time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC), 2, 2024},
		{time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), 3, 2024},
	}
	for _, tc := range cases {
		semester, year := defaultTerm(tc.date)
		assert.Equal(t, tc.semester, semester, tc.date.String())
		assert.Equal(t, tc.year, year, tc.date.String())
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ORGFEES_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnv("ORGFEES_TEST_VALUE", "default"))
	assert.Equal(t, "default", GetEnv("ORGFEES_TEST_MISSING", "default"))
}
