// Package config provides the configuration of sectxt runs.
// It defines the expiration policy, signing key selection, network
// settings and report preferences, and loads overrides from a YAML file.
package config
