package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays GOPHAUTH_* variables onto config. Unset variables leave
// fields untouched. A nil environ reads the process environment. Malformed
// values panic.
func parseEnv(config *Config, environ map[string]string) {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(config, opts); err != nil {
		panic(err)
	}
}
