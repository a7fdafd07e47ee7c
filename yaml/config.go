// Package yaml loads serp configuration from YAML files.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/serp"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads the YAML file at path and overlays it on
// serp.DefaultConfig. Keys absent from the file keep their defaults.
// Returns ENOTFOUND if the file does not exist.
func LoadConfig(path string) (*serp.Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, serp.Errorf(serp.ENOTFOUND, "config file %q not found", path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML data over the default configuration and
// validates the result. Unknown keys are rejected.
func ParseConfig(data []byte) (*serp.Config, error) {
	cfg := serp.DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, serp.Errorf(serp.EINVALID, "failed to parse config file: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
