package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// runConfig controls the demo run. Precedence (highest wins): defaults,
// then an optional JSONC config file, then explicit CLI flags.
type runConfig struct {
	Shards   int `json:"shards"`
	KeepLast int `json:"keepLast"`
	Workers  int `json:"workers"`
	Events   int `json:"events"`
}

func defaultRunConfig() runConfig {
	return runConfig{Shards: 16, KeepLast: 2, Workers: 8, Events: 20}
}

// loadConfigFile reads a JSON-with-comments config file and merges its
// fields (any present in the file) onto cfg, mirroring the config-file-
// then-flags precedence used elsewhere in this codebase's retrieval pack.
func loadConfigFile(path string, cfg runConfig) (runConfig, error) {
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	standard, err := hujson.Standardize(raw)
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := json.Unmarshal(standard, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}

	return cfg, nil
}
