// Package config loads the bot settings from a key = value (TOML), YAML or JSON
// file and from environment variables, applies defaults and validates the
// result. The returned Config is built once at startup and treated as
// read-only afterwards.
package config
