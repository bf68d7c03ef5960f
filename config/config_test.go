package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "msgcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FillsDefaults(t *testing.T) {
	path := writeTempConfig(t, "listen_addr: \":9000\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, TransportUDP, cfg.Transport)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_RejectsUnknownTransport(t *testing.T) {
	path := writeTempConfig(t, "listen_addr: \":9000\"\ntransport: carrier_pigeon\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestValidate_StaticKeyFileRequiresSecureTransport(t *testing.T) {
	cfg := Default()
	cfg.StaticKeyFile = "/tmp/key"
	err := cfg.Validate()
	assert.Error(t, err)

	cfg.Transport = TransportSecureUDP
	assert.NoError(t, cfg.Validate())
}

func TestLogrusLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	assert.Equal(t, logrus.DebugLevel, cfg.LogrusLevel())

	cfg.LogLevel = ""
	assert.Equal(t, logrus.InfoLevel, cfg.LogrusLevel())
}
