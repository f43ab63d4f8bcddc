package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"flowpath/common"
	"flowpath/snapshot"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

const (
	EnvConfigPath     = "FLOWPATH_CONFIG"
	DefaultConfigPath = "flowpath_config.toml"
	DefaultListenAddr = ":8090"
	DefaultLogDir     = "./logs"
	DefaultLogLevel   = "info"
	DefaultDataDir    = "./snapshots"
)

// Provider kinds
const (
	ProviderFile = "file"
	ProviderEtcd = "etcd"
	ProviderOVX  = "ovx"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
	Collector CollectorConfig `toml:"collector"`
	Provider  ProviderConfig  `toml:"provider"`
}

type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

type LogConfig struct {
	Dir   string `toml:"dir"`
	Level string `toml:"level"`
}

type CollectorConfig struct {
	MaxWorkers int `toml:"max_workers"`
}

type ProviderConfig struct {
	Kind string     `toml:"kind"`
	File FileConfig `toml:"file"`
	Etcd EtcdConfig `toml:"etcd"`
	OVX  OVXConfig  `toml:"ovx"`
}

type FileConfig struct {
	Dir string `toml:"dir"`
}

type EtcdConfig struct {
	Endpoints          []string `toml:"endpoints"`
	DialTimeoutSeconds int      `toml:"dial_timeout_seconds"`
	Prefix             string   `toml:"prefix"`
}

type OVXConfig struct {
	URL            string `toml:"url"`
	User           string `toml:"user"`
	Password       string `toml:"password"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Path returns the configuration file named by FLOWPATH_CONFIG, or the default one
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigPath
}

// LoadConfig reads the TOML configuration file and fills in defaults
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error getting absolute path for %s: %w", path, err)
	}

	log.Infof("Attempting to load configuration from: %s", absPath)

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("error decoding TOML file %s: %w", path, err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.Server.ListenAddr == "" {
		log.Warningf("server listen_addr not specified, using default %s", DefaultListenAddr)
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Log.Dir == "" {
		c.Log.Dir = DefaultLogDir
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}

	switch c.Provider.Kind {
	case "":
		log.Warningf("provider kind not specified, using default %s", ProviderFile)
		c.Provider.Kind = ProviderFile
	case ProviderFile, ProviderEtcd, ProviderOVX:
	default:
		return fmt.Errorf("unknown provider kind %q", c.Provider.Kind)
	}

	if c.Provider.File.Dir == "" {
		c.Provider.File.Dir = DefaultDataDir
	}

	etcdDefaults := snapshot.DefaultEtcdConfig()
	if len(c.Provider.Etcd.Endpoints) == 0 {
		if c.Provider.Kind == ProviderEtcd {
			log.Warningf("etcd endpoints not specified, using default %v", etcdDefaults.Endpoints)
		}
		c.Provider.Etcd.Endpoints = etcdDefaults.Endpoints
	}
	if c.Provider.Etcd.DialTimeoutSeconds <= 0 {
		c.Provider.Etcd.DialTimeoutSeconds = int(etcdDefaults.DialTimeout / time.Second)
	}
	if c.Provider.Etcd.Prefix == "" {
		c.Provider.Etcd.Prefix = etcdDefaults.Prefix
	}

	ovxDefaults := snapshot.DefaultOVXConfig()
	if c.Provider.OVX.URL == "" {
		if c.Provider.Kind == ProviderOVX {
			log.Warningf("ovx url not specified, using default %s", ovxDefaults.URL)
		}
		c.Provider.OVX.URL = ovxDefaults.URL
	}
	if c.Provider.OVX.User == "" {
		c.Provider.OVX.User = ovxDefaults.User
	}
	if c.Provider.OVX.TimeoutSeconds <= 0 {
		c.Provider.OVX.TimeoutSeconds = int(ovxDefaults.Timeout / time.Second)
	}
	return nil
}

func (c *Config) PoolConfig() common.PoolConfig {
	return common.PoolConfig{MaxWorkers: c.Collector.MaxWorkers}
}

func (c *Config) EtcdConfig() snapshot.EtcdConfig {
	return snapshot.EtcdConfig{
		Endpoints:   c.Provider.Etcd.Endpoints,
		DialTimeout: time.Duration(c.Provider.Etcd.DialTimeoutSeconds) * time.Second,
		Prefix:      c.Provider.Etcd.Prefix,
	}
}

func (c *Config) OVXConfig() snapshot.OVXConfig {
	return snapshot.OVXConfig{
		URL:      c.Provider.OVX.URL,
		User:     c.Provider.OVX.User,
		Password: c.Provider.OVX.Password,
		Timeout:  time.Duration(c.Provider.OVX.TimeoutSeconds) * time.Second,
	}
}

// NewProvider builds the snapshot provider selected by the configuration.
// The returned close function releases its connections.
func (c *Config) NewProvider() (snapshot.Provider, func(), error) {
	switch c.Provider.Kind {
	case ProviderEtcd:
		p, err := snapshot.NewEtcdProvider(c.EtcdConfig())
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case ProviderOVX:
		return snapshot.NewOVXClient(c.OVXConfig()), func() {}, nil
	default:
		p, err := snapshot.NewFileProvider(c.Provider.File.Dir)
		if err != nil {
			return nil, nil, err
		}
		return p, func() {}, nil
	}
}
