package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"flowpath/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "flowpath_config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "empty file gets defaults",
			content: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultListenAddr, cfg.Server.ListenAddr)
				assert.Equal(t, DefaultLogDir, cfg.Log.Dir)
				assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
				assert.Equal(t, ProviderFile, cfg.Provider.Kind)
				assert.Equal(t, DefaultDataDir, cfg.Provider.File.Dir)
				assert.Equal(t, snapshot.DefaultEtcdConfig(), cfg.EtcdConfig())
				assert.Equal(t, snapshot.DefaultOVXConfig(), cfg.OVXConfig())
				assert.Equal(t, 0, cfg.PoolConfig().MaxWorkers)
			},
		},
		{
			name: "etcd provider",
			content: `
[server]
listen_addr = ":9000"

[collector]
max_workers = 8

[provider]
kind = "etcd"

[provider.etcd]
endpoints = ["10.0.0.1:2379", "10.0.0.2:2379"]
dial_timeout_seconds = 2
prefix = "/lab"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ":9000", cfg.Server.ListenAddr)
				assert.Equal(t, 8, cfg.PoolConfig().MaxWorkers)
				assert.Equal(t, snapshot.EtcdConfig{
					Endpoints:   []string{"10.0.0.1:2379", "10.0.0.2:2379"},
					DialTimeout: 2 * time.Second,
					Prefix:      "/lab",
				}, cfg.EtcdConfig())
			},
		},
		{
			name: "ovx provider",
			content: `
[provider]
kind = "ovx"

[provider.ovx]
url = "http://ovx:8080/status"
password = "secret"
timeout_seconds = 3
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, snapshot.OVXConfig{
					URL:      "http://ovx:8080/status",
					User:     "admin",
					Password: "secret",
					Timeout:  3 * time.Second,
				}, cfg.OVXConfig())
			},
		},
		{
			name:    "unknown provider",
			content: "[provider]\nkind = \"mysql\"\n",
			wantErr: true,
		},
		{
			name:    "bad log level",
			content: "[log]\nlevel = \"loud\"\n",
			wantErr: true,
		},
		{
			name:    "invalid toml",
			content: "[server\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	assert.Equal(t, DefaultConfigPath, Path())

	t.Setenv(EnvConfigPath, "/etc/flowpath/flowpath_config.toml")
	assert.Equal(t, "/etc/flowpath/flowpath_config.toml", Path())
}

func TestNewProvider(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[provider.file]\ndir = \""+t.TempDir()+"\"\n"))
	require.NoError(t, err)

	p, closeFn, err := cfg.NewProvider()
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &snapshot.FileProvider{}, p)

	cfg.Provider.Kind = ProviderOVX
	p, closeFn, err = cfg.NewProvider()
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &snapshot.OVXClient{}, p)

	cfg.Provider.Kind = ProviderFile
	cfg.Provider.File.Dir = filepath.Join(t.TempDir(), "absent")
	_, _, err = cfg.NewProvider()
	assert.Error(t, err)
}
