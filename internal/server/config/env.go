package config

import "github.com/caarlos0/env/v11"

const envPrefix = "QUESTKEEPER_"

// parseEnv overlays QUESTKEEPER_* variables. Unset variables leave the
// current value untouched.
func parseEnv(cfg *Config) error {
	return env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix})
}
