// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"netfabric.dev/simulator/internal/simerr"
)

// Load reads and decodes the HCL file at path, then validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, simerr.Wrap(err, simerr.KindConfigParseError, "failed to read config file")
	}
	return LoadBytes(data, path)
}

// LoadBytes decodes and validates an HCL document already in memory,
// filename is used only for diagnostic positions.
func LoadBytes(data []byte, filename string) (*Config, error) {
	var cfg Config
	if err := hclsimple.Decode(filename, data, nil, &cfg); err != nil {
		return nil, simerr.Wrap(err, simerr.KindConfigParseError, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
