package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "JWT_TTL", "BCRYPT_COST", "STORE_DRIVER", "STATUS_MODE", "ERROR_CHANNEL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "mongo", cfg.StoreDriver)
	assert.Equal(t, "strict", cfg.StatusMode)
	assert.Equal(t, "userhub.errors", cfg.ErrorChannel)
	assert.Nil(t, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("STATUS_MODE", "COMPAT")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "compat", cfg.StatusMode)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("STORE_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
}
