package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

// Config holds every knob this coordinator reads at startup: node RPC
// access, ZMQ endpoint, Stratum listener settings, storage, notifications,
// and logging. A single TOML file covers the whole set.
type Config struct {
	Network string `toml:"network"`

	RPC struct {
		URL        string `toml:"url"`
		User       string `toml:"user"`
		Password   string `toml:"password"`
		CookiePath string `toml:"cookie_path"`
		TimeoutS   int    `toml:"timeout_s"`
	} `toml:"rpc"`

	ZMQ struct {
		Endpoint string `toml:"endpoint"`
	} `toml:"zmq"`

	Stratum struct {
		Host                      string  `toml:"host"`
		Port                      int     `toml:"port"`
		MaxConnections            int     `toml:"max_connections"`
		Difficulty                float64 `toml:"difficulty"`
		AcceptSuggestedDifficulty bool    `toml:"accept_suggested_difficulty"`
		VersionRollingMask        string  `toml:"version_rolling_mask"`
		CoinbaseTag               string  `toml:"coinbase_tag"`
	} `toml:"stratum"`

	Storage struct {
		SqlitePath string `toml:"sqlite_path"`
	} `toml:"storage"`

	Notify struct {
		DiscordWebhook string `toml:"discord_webhook"`
	} `toml:"notify"`

	Log struct {
		Dir    string `toml:"dir"`
		Level  string `toml:"level"`
		Stdout bool   `toml:"stdout"`
	} `toml:"log"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.Network = "main"
	cfg.RPC.URL = "http://127.0.0.1:8332"
	cfg.RPC.TimeoutS = 15
	cfg.Stratum.Host = "0.0.0.0"
	cfg.Stratum.Port = 3333
	cfg.Stratum.MaxConnections = 4096
	cfg.Stratum.Difficulty = 1024
	cfg.Stratum.VersionRollingMask = fmt.Sprintf("%08x", defaultVersionMask)
	cfg.Stratum.CoinbaseTag = defaultCoinbaseTag
	cfg.Storage.SqlitePath = "data/solopool.db"
	cfg.Log.Stdout = true
	cfg.Log.Level = "info"
	return cfg
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	var fc Config
	if err := tree.Unmarshal(&fc); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	mergeConfig(&cfg, fc)
	if !tree.Has("log.stdout") {
		cfg.Log.Stdout = defaultConfig().Log.Stdout
	}
	return cfg, nil
}

// mergeConfig overlays non-zero fields from fc onto cfg, leaving cfg's
// default for any field that was not actually set in the file. The two
// booleans are copied as-is because a false in fc cannot be told apart from
// an omitted key; loadConfig restores the log.stdout default when the file
// omits it (the accept_suggested_difficulty default is already false).
func mergeConfig(cfg *Config, fc Config) {
	if fc.Network != "" {
		cfg.Network = fc.Network
	}
	if fc.RPC.URL != "" {
		cfg.RPC.URL = fc.RPC.URL
	}
	if fc.RPC.User != "" {
		cfg.RPC.User = fc.RPC.User
	}
	if fc.RPC.Password != "" {
		cfg.RPC.Password = fc.RPC.Password
	}
	if fc.RPC.CookiePath != "" {
		cfg.RPC.CookiePath = fc.RPC.CookiePath
	}
	if fc.RPC.TimeoutS != 0 {
		cfg.RPC.TimeoutS = fc.RPC.TimeoutS
	}
	if fc.ZMQ.Endpoint != "" {
		cfg.ZMQ.Endpoint = fc.ZMQ.Endpoint
	}
	if fc.Stratum.Host != "" {
		cfg.Stratum.Host = fc.Stratum.Host
	}
	if fc.Stratum.Port != 0 {
		cfg.Stratum.Port = fc.Stratum.Port
	}
	if fc.Stratum.MaxConnections != 0 {
		cfg.Stratum.MaxConnections = fc.Stratum.MaxConnections
	}
	if fc.Stratum.Difficulty != 0 {
		cfg.Stratum.Difficulty = fc.Stratum.Difficulty
	}
	cfg.Stratum.AcceptSuggestedDifficulty = fc.Stratum.AcceptSuggestedDifficulty
	if fc.Stratum.VersionRollingMask != "" {
		cfg.Stratum.VersionRollingMask = fc.Stratum.VersionRollingMask
	}
	if fc.Stratum.CoinbaseTag != "" {
		cfg.Stratum.CoinbaseTag = fc.Stratum.CoinbaseTag
	}
	if fc.Storage.SqlitePath != "" {
		cfg.Storage.SqlitePath = fc.Storage.SqlitePath
	}
	if fc.Notify.DiscordWebhook != "" {
		cfg.Notify.DiscordWebhook = fc.Notify.DiscordWebhook
	}
	if fc.Log.Dir != "" {
		cfg.Log.Dir = fc.Log.Dir
	}
	if fc.Log.Level != "" {
		cfg.Log.Level = fc.Log.Level
	}
	cfg.Log.Stdout = fc.Log.Stdout
}

func (c Config) rpcTimeout() time.Duration {
	if c.RPC.TimeoutS <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.RPC.TimeoutS) * time.Second
}

func (c Config) listenAddr() string {
	return fmt.Sprintf("%s:%d", c.Stratum.Host, c.Stratum.Port)
}

func (c Config) versionRollingMask() uint32 {
	var mask uint32
	if _, err := fmt.Sscanf(c.Stratum.VersionRollingMask, "%x", &mask); err != nil {
		return defaultVersionMask
	}
	return mask
}

// rpcCredentials resolves the RPC username/password, optionally reading a
// Bitcoin Core .cookie file when no explicit user/password pair is set.
func (c Config) rpcCredentials() (user, pass string, err error) {
	if c.RPC.User != "" || c.RPC.Password != "" {
		return c.RPC.User, c.RPC.Password, nil
	}
	if c.RPC.CookiePath == "" {
		return "", "", nil
	}
	data, err := os.ReadFile(c.RPC.CookiePath)
	if err != nil {
		return "", "", fmt.Errorf("read rpc cookie %s: %w", c.RPC.CookiePath, err)
	}
	for i, ch := range data {
		if ch == ':' {
			return string(data[:i]), string(data[i+1:]), nil
		}
	}
	return "", "", fmt.Errorf("malformed rpc cookie file %s", c.RPC.CookiePath)
}
