package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-l", "127.0.0.1:8081", "-d", "db", "-s", "secret",
			"-t", "5", "-k", "10", "-v", "debug",
		}, expected: &Config{
			EndpointAddrGRPC:            "127.0.0.1:9090",
			EndpointAddrHTTP:            "127.0.0.1:8081",
			DatabaseDSN:                 "db",
			SecretKey:                   "secret",
			AccessTokenValidityDuration: 5 * time.Minute,
			BcryptCost:                  10,
			LogLevel:                    "debug",
		}},
		{name: "unknown flags are ignored", args: []string{"cmd", "-c", "cfg.json", "-x", "1", "-s=inline"},
			expected: &Config{SecretKey: "inline"}},
		{name: "bad int panics", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
