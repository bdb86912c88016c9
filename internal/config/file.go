package config

import "time"

// File represents the structure of the .sectxt configuration file.
// Every field is optional; zero values leave the current setting alone.
//
// Example:
//
//	max_age_days: 180
//	key: security@example.com
//	keyring: ~/.gnupg/security-team.asc
//	timeout: 15s
//	concurrency: 4
type File struct {
	MaxAgeDays      int           `yaml:"max_age_days,omitempty"`
	KeyID           string        `yaml:"key,omitempty"`
	KeyringPath     string        `yaml:"keyring,omitempty"`
	Timeout         time.Duration `yaml:"timeout,omitempty"`
	Concurrency     int           `yaml:"concurrency,omitempty"`
	UserAgent       string        `yaml:"user_agent,omitempty"`
	MaxBodySize     int64         `yaml:"max_body_size,omitempty"`
	TorProxyAddress string        `yaml:"tor_proxy,omitempty"`
	DBDir           string        `yaml:"db_dir,omitempty"`

	// History is a pointer so that "history: false" can switch the
	// default off.
	History *bool `yaml:"history,omitempty"`
}

// Apply copies the settings present in the file onto c.
func (f *File) Apply(c *Config) {
	if f == nil {
		return
	}
	if f.MaxAgeDays != 0 {
		c.MaxAgeDays = f.MaxAgeDays
	}
	if f.KeyID != "" {
		c.KeyID = f.KeyID
	}
	if f.KeyringPath != "" {
		c.KeyringPath = expandHome(f.KeyringPath)
	}
	if f.Timeout != 0 {
		c.Timeout = f.Timeout
	}
	if f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.MaxBodySize != 0 {
		c.MaxBodySize = f.MaxBodySize
	}
	if f.TorProxyAddress != "" {
		c.TorProxyAddress = f.TorProxyAddress
	}
	if f.DBDir != "" {
		c.DBDir = expandHome(f.DBDir)
	}
	if f.History != nil {
		c.SaveToDB = *f.History
	}
}
