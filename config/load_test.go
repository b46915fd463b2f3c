package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	var c Config
	c.Application.Datasource.PrimaryURL = "postgres://attendance@localhost/attendance"
	c.Application.Security.Secret = "secret"
	c.Application.Redis.Host = "localhost:6379"
	c.Application.WebAuthn.RpID = "attendance.example.com"
	c.Application.WebAuthn.RpOrigins = []string{"https://attendance.example.com"}
	ApplyDefaults(&c)
	return c
}

func TestValidate(t *testing.T) {
	c := validConfig()
	require.NoError(t, c.Validate())

	var empty Config
	ApplyDefaults(&empty)
	err := empty.Validate()
	require.Error(t, err)
	for _, want := range []string{"primary-url", "security.secret", "redis.address", "rp-id", "rp-origins"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_UnknownTimezone(t *testing.T) {
	c := validConfig()
	c.Application.Attendance.Timezone = "Mars/Olympus_Mons"

	assert.ErrorContains(t, c.Validate(), "attendance.timezone")
}

func TestApplyEnv(t *testing.T) {
	c := validConfig()
	env := map[string]string{
		EnvJWTSecret:     "from-env",
		EnvDatasourceURL: "",
		EnvRedisPassword: "",
	}
	c.Application.Redis.Password = "from-file"

	applyEnv(&c, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, "from-env", c.Application.Security.Secret)
	assert.Equal(t, "postgres://attendance@localhost/attendance", c.Application.Datasource.PrimaryURL, "empty value keeps the file setting")
	assert.Empty(t, c.Application.Redis.Password, "a set but empty password clears it")
}
