package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "unsupported version",
			mutate:  func(c *Config) { c.Version = 3 },
			wantErr: "unsupported config version 3",
		},
		{
			name:    "empty include pattern",
			mutate:  func(c *Config) { c.Scan.Include = []string{" "} },
			wantErr: "scan.include[0] must not be empty",
		},
		{
			name:    "bad include pattern",
			mutate:  func(c *Config) { c.Scan.Include = []string{"**/*.[css"} },
			wantErr: "scan.include[0] is not a valid pattern",
		},
		{
			name:    "negative rate",
			mutate:  func(c *Config) { c.Scan.MaxFilesPerSecond = -1 },
			wantErr: "scan.max_files_per_second must be >= 0",
		},
		{
			name:    "unknown script mode",
			mutate:  func(c *Config) { c.Script.Mode = "ast" },
			wantErr: "script.mode must be one of",
		},
		{
			name:    "unknown catalog format",
			mutate:  func(c *Config) { c.Catalog.Format = "xml" },
			wantErr: "catalog.format must be one of",
		},
		{
			name:    "bad as_of",
			mutate:  func(c *Config) { c.Catalog.AsOf = "yesterday" },
			wantErr: "catalog.as_of must be RFC3339 or YYYY-MM-DD",
		},
		{
			name:    "unknown output format",
			mutate:  func(c *Config) { c.Output.Format = "sarif" },
			wantErr: "output.format must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
