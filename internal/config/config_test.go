package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "data/songbox.db", cfg.Database.Path)
	assert.Equal(t, 30, cfg.Auth.TokenTTLMinutes)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "data/media", cfg.Storage.LocalDir)
	assert.Empty(t, cfg.Auth.JWTSecret, "signing secret must come from the environment")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SONGBOX_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("SONGBOX_AUTH_JWTSECRET", "from-env-secret")
	t.Setenv("SONGBOX_AUTH_TOKENTTLMINUTES", "5")
	t.Setenv("SONGBOX_STORAGE_DRIVER", "s3")
	t.Setenv("SONGBOX_STORAGE_BUCKET", "media-bucket")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "from-env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 5, cfg.Auth.TokenTTLMinutes)
	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, "media-bucket", cfg.Storage.Bucket)
}
