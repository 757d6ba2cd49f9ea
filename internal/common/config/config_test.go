package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  mode: release\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// 文件中的值覆盖默认值，未配置的项保持默认
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "courier-backend", cfg.Server.Name)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestGet_Defaults(t *testing.T) {
	cfg := Get()
	require.NotNil(t, cfg)

	assert.Equal(t, "courier-backend", cfg.Server.Name)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "courier", cfg.Database.Name)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)

	// 追踪默认关闭，采样率全量
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRate)

	// 财务引擎默认值
	assert.Equal(t, "Asia/Shanghai", cfg.Finance.ReportTimezone)
	assert.Equal(t, 200, cfg.Finance.BackfillBatchSize)
	assert.Equal(t, 500, cfg.Finance.BackfillLogEvery)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db.local", Port: 5433, User: "app", Password: "secret",
		Name: "courier", SSLMode: "disable", Timezone: "UTC",
	}
	dsn := d.DSN()
	assert.Contains(t, dsn, "host=db.local")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "dbname=courier")
	assert.Contains(t, dsn, "TimeZone=UTC")
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache.local", Port: 6380}
	assert.Equal(t, "cache.local:6380", r.Addr())
}

func TestJWTConfig_Durations(t *testing.T) {
	j := JWTConfig{AccessTokenExpire: 2, RefreshTokenExpire: 168}
	assert.Equal(t, 2*time.Hour, j.AccessTokenDuration())
	assert.Equal(t, 7*24*time.Hour, j.RefreshTokenDuration())
}

func TestFinanceConfig_Location(t *testing.T) {
	f := FinanceConfig{ReportTimezone: "Asia/Shanghai"}
	loc := f.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "Asia/Shanghai", loc.String())

	// 非法时区回退本地时区而不是报错
	bad := FinanceConfig{ReportTimezone: "Mars/Olympus"}
	assert.Equal(t, time.Local, bad.Location())
}
