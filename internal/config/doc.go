// Package config loads, validates, and normalizes mapwatch
// configuration from TOML. Category keyword sets, accepted extensions,
// and all monitor timings are configuration data rather than code.
package config
