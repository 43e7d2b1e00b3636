package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations use
// timex.Duration so both "30m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	Algorithm                   string         `json:"algorithm"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	TokenFallbackDuration       timex.Duration `json:"token_fallback_duration"`
	BcryptCost                  int            `json:"bcrypt_cost"`
	HashWorkers                 int            `json:"hash_workers"`
	AppName                     string         `json:"app_name"`
	AppVersion                  string         `json:"app_version"`
	AppDescription              string         `json:"app_description"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config (or $GOPHAUTH_CONFIG)
// onto config. Keys missing from the file keep their current value. An
// unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.Algorithm, c.Algorithm)
	setString(&config.AppName, c.AppName)
	setString(&config.AppVersion, c.AppVersion)
	setString(&config.AppDescription, c.AppDescription)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.TokenFallbackDuration.Duration != 0 {
		config.TokenFallbackDuration = c.TokenFallbackDuration.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.HashWorkers != 0 {
		config.HashWorkers = c.HashWorkers
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
