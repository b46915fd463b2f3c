package config

import "time"

var Conf Config

type Config struct {
	Application Application `yaml:"application" json:"application"`
}

type Application struct {
	DisplayName string     `yaml:"display-name" json:"display_name"`
	Server      Server     `yaml:"server" json:"server"`
	Datasource  Datasource `yaml:"datasource" json:"datasource"`
	Migration   string     `yaml:"migration"`
	Security    Security   `yaml:"security" json:"security"`
	Redis       Redis      `yaml:"redis" json:"redis"`
	WebAuthn    WebAuthn   `yaml:"webauthn" json:"webauthn"`
	Attendance  Attendance `yaml:"attendance" json:"attendance"`
	Kafka       Kafka      `yaml:"kafka" json:"kafka"`
	Cors        Cors       `yaml:"cors" json:"cors"`
	Logging     Logging    `yaml:"logging" json:"logging"`
	RateLimit   RateLimit  `yaml:"rate-limit" json:"rate_limit"`
}

type Server struct {
	ContextPath string `yaml:"context-path" json:"context_path"`
	ApiVersion  string `yaml:"api-version" json:"api_version"`
	Port        string `yaml:"port"`
}

type Datasource struct {
	PrimaryURL            string `yaml:"primary-url" json:"primary_url"`
	MaxIdleConnections    int    `yaml:"max-idle-connections" json:"max_idle_connections"`
	MaxOpenConnections    int    `yaml:"max-open-connections" json:"max_open_connections"`
	ConnectionMaxLifetime int    `yaml:"connection-max-lifetime" json:"connection_max_lifetime"`
}

// Security holds the bearer token settings shared with the identity service.
type Security struct {
	Secret string `yaml:"secret" json:"-"`
	Issuer string `yaml:"issuer" json:"issuer"`
}

type Redis struct {
	Host     string `yaml:"address" json:"address"`
	Password string `yaml:"password" json:"-"`
	DB       int    `yaml:"db" json:"db"`
}

type WebAuthn struct {
	RpDisplayName          string   `yaml:"rp-display-name" json:"rp_display_name"`
	RpID                   string   `yaml:"rp-id" json:"rp_id"`
	RpOrigins              []string `yaml:"rp-origins" json:"rp_origins"`
	ChallengeTTLSeconds    int      `yaml:"challenge-ttl-seconds" json:"challenge_ttl_seconds"`
	CeremonyTimeoutSeconds int      `yaml:"ceremony-timeout-seconds" json:"ceremony_timeout_seconds"`
}

type Attendance struct {
	Timezone                  string `yaml:"timezone" json:"timezone"`
	RequireBiometric          bool   `yaml:"require-biometric" json:"require_biometric"`
	VerificationWindowSeconds int    `yaml:"verification-window-seconds" json:"verification_window_seconds"`
	GeofenceEnabled           bool   `yaml:"geofence-enabled" json:"geofence_enabled"`
}

// Location resolves the timezone that decides which calendar day a check-in
// belongs to.
func (a Attendance) Location() (*time.Location, error) {
	return time.LoadLocation(a.Timezone)
}

type Kafka struct {
	Brokers  []string `yaml:"brokers" json:"brokers"`
	Topic    string   `yaml:"topic" json:"topic"`
	ClientID string   `yaml:"client-id" json:"client_id"`
}

type Cors struct {
	AllowOrigins string `yaml:"allow-origins" json:"allow_origins"`
}

type Logging struct {
	Level string `yaml:"level" json:"level"`
}

type RateLimit struct {
	Max           int `yaml:"max" json:"max"`
	WindowSeconds int `yaml:"window-seconds" json:"window_seconds"`
}

// ApplyDefaults fills the zero values the service cannot run without.
func ApplyDefaults(c *Config) {
	app := &c.Application
	if app.Server.Port == "" {
		app.Server.Port = ":8080"
	}
	if app.WebAuthn.RpDisplayName == "" {
		app.WebAuthn.RpDisplayName = "DREAMS Attendance"
	}
	if app.WebAuthn.ChallengeTTLSeconds <= 0 {
		app.WebAuthn.ChallengeTTLSeconds = 300
	}
	if app.WebAuthn.CeremonyTimeoutSeconds <= 0 {
		app.WebAuthn.CeremonyTimeoutSeconds = 60
	}
	if app.Attendance.Timezone == "" {
		app.Attendance.Timezone = "UTC"
	}
	if app.Attendance.VerificationWindowSeconds <= 0 {
		app.Attendance.VerificationWindowSeconds = 120
	}
	if app.Kafka.Topic == "" {
		app.Kafka.Topic = "attendance.events"
	}
	if app.Kafka.ClientID == "" {
		app.Kafka.ClientID = "attendance_ms"
	}
	if app.Cors.AllowOrigins == "" {
		app.Cors.AllowOrigins = "*"
	}
	if app.Logging.Level == "" {
		app.Logging.Level = "info"
	}
	if app.RateLimit.Max <= 0 {
		app.RateLimit.Max = 30
	}
	if app.RateLimit.WindowSeconds <= 0 {
		app.RateLimit.WindowSeconds = 30
	}
}
