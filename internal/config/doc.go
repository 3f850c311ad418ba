// Package config loads, validates, and normalizes lingopod's TOML
// configuration. Defaults are applied first so a missing file still yields
// a usable configuration.
package config
