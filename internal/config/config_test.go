package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Mode)
	assert.Equal(t, "http://localhost:5000/analyze", cfg.Endpoint)
	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, ":5001", cfg.GRPCAddr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Empty(t, cfg.DBDSN)
	assert.Equal(t, 2*time.Second, cfg.CopyAck)
}

func TestNewConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "MODE=remote\nENDPOINT=http://analysis:8080/analyze\nALLOWED_ORIGINS=http://a.test, http://b.test\nCOPY_ACK=1500ms\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "remote", cfg.Mode)
	assert.Equal(t, "http://analysis:8080/analyze", cfg.Endpoint)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 1500*time.Millisecond, cfg.CopyAck)
}

func TestNewConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ENDPOINT=http://file/analyze\n"), 0o600))
	t.Setenv("CLARIFI_ENDPOINT", "http://env/analyze")

	cfg, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env/analyze", cfg.Endpoint)
}

func TestNewConfig_Invalid(t *testing.T) {
	t.Setenv("CLARIFI_MODE", "hybrid")
	_, err := NewConfig("")
	assert.ErrorContains(t, err, "MODE")
}

func TestValidate(t *testing.T) {
	cfg := &Config{Mode: "local", DBDriver: "mysql", CopyAck: time.Second}
	assert.ErrorContains(t, cfg.Validate(), "DB_DRIVER")

	cfg = &Config{Mode: "remote", DBDriver: "postgres", CopyAck: 0}
	assert.ErrorContains(t, cfg.Validate(), "COPY_ACK")
}
