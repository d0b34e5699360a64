package sift

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultConfigPath is consulted when no -config flag is given. A missing
// default file is fine; an explicitly named one must exist.
const DefaultConfigPath = "/etc/sift.conf"

type Config struct {
	LogLevel   string `toml:"log_level"`
	Timeout    string `toml:"timeout"` // per-tool deadline, e.g. "45s"
	ResolveSPF bool   `toml:"resolve_spf"`
	Storage    string `toml:"storage"` // audit hook: file, mysql or sqlite
	Slack      bool   `toml:"slack"`   // notify a channel on rejects

	Greylist  GreylistConfig  `toml:"greylist"`
	Spam      SpamConfig      `toml:"spam"`
	Rspamd    RspamdConfig    `toml:"rspamd"`
	Antivirus AntivirusConfig `toml:"antivirus"`
	DKIM      DKIMConfig      `toml:"dkim"`
}

type GreylistConfig struct {
	Disable bool   `toml:"disable"`
	Command string `toml:"command"`
	Group   string `toml:"group"`
}

type SpamConfig struct {
	Disable bool     `toml:"disable"`
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

type RspamdConfig struct {
	Disable bool   `toml:"disable"`
	Adapter string `toml:"adapter"`
	Client  string `toml:"client"`
}

type AntivirusConfig struct {
	Disable bool     `toml:"disable"`
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

type DKIMConfig struct {
	Disable bool   `toml:"disable"`
	Command string `toml:"command"`
	Dir     string `toml:"dir"`
}

// LoadConfig reads a toml config and fills in defaults. path == "" means
// the default location, which may be absent.
func LoadConfig(path string) (*Config, error) {
	c := &Config{}
	if path == "" {
		path = DefaultConfigPath
		if _, err := os.Stat(path); err != nil {
			c.applyDefaults()
			return c, nil
		}
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.Greylist.Command == "" {
		c.Greylist.Command = "greylist-update"
	}
	if c.Greylist.Group == "" {
		c.Greylist.Group = "_spamd"
	}
	if c.Spam.Command == "" {
		c.Spam.Command = "spamc"
	}
	if c.Spam.Args == nil {
		c.Spam.Args = []string{"-c"}
	}
	if c.Rspamd.Adapter == "" {
		c.Rspamd.Adapter = "rspamd-pipe"
	}
	if c.Rspamd.Client == "" {
		c.Rspamd.Client = "rspamc"
	}
	if c.Antivirus.Command == "" {
		c.Antivirus.Command = "clamdscan"
	}
	if c.Antivirus.Args == nil {
		c.Antivirus.Args = []string{"--no-summary", "--infected", "-"}
	}
	if c.DKIM.Command == "" {
		c.DKIM.Command = "dkimsign"
	}
	if c.DKIM.Dir == "" {
		c.DKIM.Dir = "/etc/mail/dkim"
	}
}

// GetTimeout parses the per-tool deadline, falling back to a minute on a
// bad value.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return defaultToolTimeout
	}
	return d
}

// BuildHooks assembles the audit hook set the config asks for.
func (c *Config) BuildHooks() []Hook {
	var hooks []Hook
	switch c.Storage {
	case "mysql":
		hooks = append(hooks, &HookMysql{})
	case "sqlite":
		hooks = append(hooks, &HookSqlite{})
	case "file":
		hooks = append(hooks, &HookFile{})
	}
	if c.Slack {
		hooks = append(hooks, &HookSlack{})
	}
	return hooks
}
