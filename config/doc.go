// Package config handles application configuration loading and validation.
//
// Configuration is read from a YAML file, overridden by environment
// variables (optionally sourced from a .env file), and validated using
// struct tags.
package config
