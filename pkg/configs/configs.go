// Package configs provides the embedded default configuration file.
package configs

import _ "embed"

// DefaultConfigBytes is the configuration template printed by `kasumi config`.
//
//go:embed config.yml
var DefaultConfigBytes []byte
