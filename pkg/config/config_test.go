package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 30, cfg.Suspension.DefaultRevivalDays)
	assert.Equal(t, 2, cfg.Suspension.NPDPatchDays)
	assert.Equal(t, 30*time.Second, cfg.Suspension.LockTTL)
	assert.Equal(t, "0 */15 * * * *", cfg.AutoRevival.CronSpec)
	assert.True(t, cfg.AutoRevival.Enabled)
	assert.False(t, cfg.MirrorDatabase.Enabled())
	assert.True(t, cfg.Database.Enabled())
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("SUSPENSION_DEFAULT_REVIVAL_DAYS", 0)
	v.Set("SUSPENSION_NPD_PATCH_DAYS", 5)
	v.Set("SUSPENSION_LOCK_TTL", "not-a-duration")
	v.Set("MIRROR_DB_HOST", "mirror.internal")
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := fromViper(v)

	assert.Equal(t, 30, cfg.Suspension.DefaultRevivalDays)
	assert.Equal(t, 5, cfg.Suspension.NPDPatchDays)
	assert.Equal(t, 30*time.Second, cfg.Suspension.LockTTL)
	assert.True(t, cfg.MirrorDatabase.Enabled())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}
