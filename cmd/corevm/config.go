package main

import "github.com/corelisp/corevm"

// loadConfig builds a Config primed with defaults, then merges
// configPath over it when set (--config on the root command).
func loadConfig() (*corevm.Config, error) {
	cfg := corevm.NewConfig()
	if configPath != "" {
		if err := cfg.LoadYAMLFile(configPath); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
