package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/alasgarovnamig/confhandler"
)

const DefaultConfigPath = "./resources/application.yaml"

// Environment variables that override secrets kept out of application.yaml.
const (
	EnvDatasourceURL = "ATTENDANCE_DATASOURCE_URL"
	EnvJWTSecret     = "ATTENDANCE_JWT_SECRET"
	EnvRedisPassword = "ATTENDANCE_REDIS_PASSWORD"
)

// Load reads path into Conf, then applies environment overrides, defaults and
// validation in that order.
func Load(path string) error {
	if path == "" {
		path = DefaultConfigPath
	}
	if err := confhandler.LoadConfigToStruct(path, &Conf); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	applyEnv(&Conf, os.LookupEnv)
	ApplyDefaults(&Conf)
	return Conf.Validate()
}

func applyEnv(c *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDatasourceURL); ok && v != "" {
		c.Application.Datasource.PrimaryURL = v
	}
	if v, ok := lookup(EnvJWTSecret); ok && v != "" {
		c.Application.Security.Secret = v
	}
	if v, ok := lookup(EnvRedisPassword); ok {
		c.Application.Redis.Password = v
	}
}

// Validate reports every setting the service cannot start without.
func (c *Config) Validate() error {
	app := c.Application
	var errs []error
	if app.Datasource.PrimaryURL == "" {
		errs = append(errs, errors.New("datasource.primary-url is required"))
	}
	if app.Security.Secret == "" {
		errs = append(errs, errors.New("security.secret is required"))
	}
	if app.Redis.Host == "" {
		errs = append(errs, errors.New("redis.address is required"))
	}
	if app.WebAuthn.RpID == "" {
		errs = append(errs, errors.New("webauthn.rp-id is required"))
	}
	if len(app.WebAuthn.RpOrigins) == 0 {
		errs = append(errs, errors.New("webauthn.rp-origins needs at least one origin"))
	}
	if _, err := app.Attendance.Location(); err != nil {
		errs = append(errs, fmt.Errorf("attendance.timezone: %w", err))
	}
	return errors.Join(errs...)
}
