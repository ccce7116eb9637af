package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xsj0jsx/thin"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func configContext(t *testing.T, content string) context.Context {
	k, err := LoadConfig(writeConfig(t, content))
	require.NoError(t, err)
	return thin.ContextWithConfiger(context.Background(), k)
}

func TestLoadListenerConfigs(t *testing.T) {
	ctx := configContext(t, `
[[listeners]]
address = 3000

[[listeners]]
address = "[::1]:3001"
protocol = "echo"
tcp_no_delay = false
ipv6_only = true
backlog = 16
`)
	configs, err := loadListenerConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	assert.Equal(t, ListenerConfig{
		Address:    "3000",
		Protocol:   "http",
		TcpNoDelay: true,
		IPv6Only:   false,
		Backlog:    1024,
	}, configs[0])
	assert.Equal(t, ListenerConfig{
		Address:    "[::1]:3001",
		Protocol:   "echo",
		TcpNoDelay: false,
		IPv6Only:   true,
		Backlog:    16,
	}, configs[1])
}

func TestLoadListenerConfigs_Errors(t *testing.T) {
	t.Run("UnknownKey", func(t *testing.T) {
		ctx := configContext(t, `
[[listeners]]
address = "3000"
nodelay = true
`)
		_, err := loadListenerConfigs(ctx)
		assert.ErrorContains(t, err, "nodelay")
	})

	t.Run("MissingAddress", func(t *testing.T) {
		ctx := configContext(t, `
[[listeners]]
protocol = "echo"
`)
		_, err := loadListenerConfigs(ctx)
		assert.ErrorContains(t, err, "address is required")
	})
}

func TestLoadLogConfig(t *testing.T) {
	ctx := configContext(t, `
[log]
format = "json"
`)
	config, err := loadLogConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, LogConfig{Format: "json", Level: "info"}, config)

	config, err = loadLogConfig(configContext(t, "[[listeners]]\naddress = 1\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultLogConfig(), config)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
