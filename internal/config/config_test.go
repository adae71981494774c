package config_test

import (
	"testing"
	"time"

	"digiwave-dashboard/internal/config"

	"github.com/stretchr/testify/assert"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("UPSTREAM_BASE_URL", "http://hris.internal/api/v1")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Session.PollInterval)
	assert.Equal(t, time.Second, cfg.Session.TickInterval)
	assert.Equal(t, 9, cfg.Shift.DefaultStartHour)
	assert.Equal(t, 18, cfg.Shift.DefaultEndHour)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, []string{"admin", "hr"}, cfg.RBAC.DetailsRoles)
	assert.NotNil(t, cfg.Location())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("POLL_INTERVAL", "10s")
	t.Setenv("DEFAULT_SHIFT_START", "21")
	t.Setenv("DEFAULT_SHIFT_END", "6")
	t.Setenv("TIMEZONE", "Asia/Kolkata")
	t.Setenv("KAFKA_BROKER", "kafka:9092")
	t.Setenv("DETAILS_ROLES", "admin, payroll_manager ,")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Session.PollInterval)
	assert.Equal(t, 21, cfg.Shift.DefaultStartHour)
	assert.Equal(t, 6, cfg.Shift.DefaultEndHour)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
	assert.Equal(t, "kafka:9092", cfg.Kafka.Broker)
	assert.Equal(t, []string{"admin", "payroll_manager"}, cfg.RBAC.DetailsRoles)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("malformed values are all reported", func(t *testing.T) {
		setRequired(t)
		t.Setenv("POLL_INTERVAL", "often")
		t.Setenv("DEFAULT_SHIFT_END", "late")

		_, err := config.Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "POLL_INTERVAL")
		assert.Contains(t, err.Error(), "DEFAULT_SHIFT_END")
	})

	t.Run("missing upstream", func(t *testing.T) {
		t.Setenv("UPSTREAM_BASE_URL", "")
		t.Setenv("JWT_SECRET", "secret")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("no details roles", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DETAILS_ROLES", " , ")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("shift hour out of range", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DEFAULT_SHIFT_START", "24")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("poll interval too short", func(t *testing.T) {
		setRequired(t)
		t.Setenv("POLL_INTERVAL", "10ms")
		_, err := config.Load()
		assert.Error(t, err)
	})
}
