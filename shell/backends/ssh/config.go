package ssh

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses YAML scalars either as a Go duration string ("90s",
// "3m") or as a bare number of seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}
	return fmt.Errorf("ssh: invalid duration %q", raw)
}

// HostConfig describes how to reach one host. Zero fields fall back to the
// config's defaults, then to the Client defaults.
type HostConfig struct {
	Hostname           string   `yaml:"hostname"`
	User               string   `yaml:"user"`
	Password           string   `yaml:"password"`
	Port               int      `yaml:"port"`
	KeyFile            string   `yaml:"key_file"`
	ConnectTimeout     Duration `yaml:"connect_timeout"`
	MaxConnectAttempts int      `yaml:"max_connect_attempts"`
}

// Config is a YAML inventory of hosts plus shared defaults:
//
//	defaults:
//	  user: root
//	  key_file: /etc/keys/ops
//	  connect_timeout: 90s
//	hosts:
//	  db1:
//	    hostname: 10.0.0.5
//	  db2:
//	    hostname: 10.0.0.6
//	    port: 2222
type Config struct {
	Defaults HostConfig            `yaml:"defaults"`
	Hosts    map[string]HostConfig `yaml:"hosts"`
}

// LoadConfig reads a YAML host inventory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ssh: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// Host resolves the named entry against the defaults. Unknown names
// resolve to the defaults with the name used as the hostname, so ad-hoc
// targets still pick up shared credentials.
func (c *Config) Host(name string) HostConfig {
	resolved := c.Defaults
	entry, ok := c.Hosts[name]
	if !ok {
		resolved.Hostname = name
		return resolved
	}
	if entry.Hostname == "" {
		entry.Hostname = name
	}
	resolved.Hostname = entry.Hostname
	if entry.User != "" {
		resolved.User = entry.User
	}
	if entry.Password != "" {
		resolved.Password = entry.Password
	}
	if entry.Port != 0 {
		resolved.Port = entry.Port
	}
	if entry.KeyFile != "" {
		resolved.KeyFile = entry.KeyFile
	}
	if entry.ConnectTimeout != 0 {
		resolved.ConnectTimeout = entry.ConnectTimeout
	}
	if entry.MaxConnectAttempts != 0 {
		resolved.MaxConnectAttempts = entry.MaxConnectAttempts
	}
	return resolved
}

// NewClient builds a Client from a resolved host entry.
func (h HostConfig) NewClient(opts ...Option) *Client {
	base := make([]Option, 0, 8)
	if h.User != "" {
		base = append(base, WithUser(h.User))
	}
	if h.Password != "" {
		base = append(base, WithPassword(h.Password))
	}
	if h.Port != 0 {
		base = append(base, WithPort(h.Port))
	}
	if h.KeyFile != "" {
		base = append(base, WithKeyFile(h.KeyFile))
	}
	if h.ConnectTimeout != 0 {
		base = append(base, WithConnectTimeout(time.Duration(h.ConnectTimeout)))
	}
	if h.MaxConnectAttempts != 0 {
		base = append(base, WithMaxConnectAttempts(h.MaxConnectAttempts))
	}
	return NewClient(h.Hostname, append(base, opts...)...)
}
