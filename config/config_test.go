package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("BODY_LIMIT_BYTES", "")
	t.Setenv("BODY_LIMIT_MB", "")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("JWT_SECRET", "fallback")

	cfg := Load()

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 4*1024*1024, cfg.BodyLimitBytes)
	assert.Equal(t, "fallback", cfg.JWTSecret)
	assert.False(t, cfg.IsProduction())
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := Config{DBDriver: DriverSQLite, JWTTTLHours: 4, JWTSecret: "s"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "mongo" }, wantErr: true},
		{name: "production without secret", mutate: func(c *Config) {
			c.Environment = EnvProduction
			c.JWTSecret = ""
		}, wantErr: true},
		{name: "development without secret", mutate: func(c *Config) { c.JWTSecret = "" }},
		{name: "zero ttl", mutate: func(c *Config) { c.JWTTTLHours = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBodyLimitBytesOverride(t *testing.T) {
	t.Setenv("BODY_LIMIT_BYTES", "2048")
	assert.Equal(t, 2048, Load().BodyLimitBytes)
}
