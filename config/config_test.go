package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var c Config
	ApplyDefaults(&c)

	app := c.Application
	assert.Equal(t, ":8080", app.Server.Port)
	assert.Equal(t, "DREAMS Attendance", app.WebAuthn.RpDisplayName)
	assert.Equal(t, 300, app.WebAuthn.ChallengeTTLSeconds)
	assert.Equal(t, 60, app.WebAuthn.CeremonyTimeoutSeconds)
	assert.Equal(t, 120, app.Attendance.VerificationWindowSeconds)
	assert.Equal(t, "attendance.events", app.Kafka.Topic)
	assert.Equal(t, "*", app.Cors.AllowOrigins)
	assert.Equal(t, 30, app.RateLimit.Max)

	loc, err := app.Attendance.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestApplyDefaults_KeepsConfiguredValues(t *testing.T) {
	c := Config{Application: Application{
		Server:   Server{Port: ":9090"},
		WebAuthn: WebAuthn{ChallengeTTLSeconds: 120},
		Kafka:    Kafka{Topic: "hr.attendance"},
	}}
	ApplyDefaults(&c)

	assert.Equal(t, ":9090", c.Application.Server.Port)
	assert.Equal(t, 120, c.Application.WebAuthn.ChallengeTTLSeconds)
	assert.Equal(t, "hr.attendance", c.Application.Kafka.Topic)
}

func TestNewWebAuthn_RejectsMissingRPID(t *testing.T) {
	_, err := NewWebAuthn(WebAuthn{RpDisplayName: "DREAMS Attendance", RpOrigins: []string{"https://a.example.com"}})
	assert.ErrorContains(t, err, "rp-id")

	_, err = NewWebAuthn(WebAuthn{RpDisplayName: "DREAMS Attendance", RpID: "a.example.com"})
	assert.ErrorContains(t, err, "rp-origin")

	wa, err := NewWebAuthn(WebAuthn{
		RpDisplayName:          "DREAMS Attendance",
		RpID:                   "a.example.com",
		RpOrigins:              []string{"https://a.example.com"},
		CeremonyTimeoutSeconds: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, "a.example.com", wa.Config.RPID)
}

func TestNewKafkaProducer_NoBrokers(t *testing.T) {
	p, err := NewKafkaProducer(Kafka{})
	require.NoError(t, err)
	assert.Nil(t, p)
}
