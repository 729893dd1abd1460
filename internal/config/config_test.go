package config

import (
	"testing"
	"time"
)

func TestLoadBookingConfigDefaults(t *testing.T) {
	c := LoadBookingConfig()
	if c.HoldWindow != 10*time.Minute || c.CancelWindow != 20*time.Minute {
		t.Fatalf("windows = %v / %v", c.HoldWindow, c.CancelWindow)
	}
	if c.LockBackend != LockBackendRedis || !c.SweepEnabled || c.SweepInterval != 15*time.Minute {
		t.Fatalf("unexpected defaults %+v", c)
	}
}

func TestLoadBookingConfigOverrides(t *testing.T) {
	t.Setenv("HOLD_WINDOW", "5m")
	t.Setenv("CANCEL_WINDOW", "-1m")
	t.Setenv("SWEEP_INTERVAL", "10s")
	t.Setenv("LOCK_BACKEND", "MySQL")
	t.Setenv("SWEEP_ENABLED", "off")

	c := LoadBookingConfig()
	if c.HoldWindow != 5*time.Minute {
		t.Errorf("HoldWindow = %v", c.HoldWindow)
	}
	if c.CancelWindow != 20*time.Minute {
		t.Errorf("negative CANCEL_WINDOW should fall back, got %v", c.CancelWindow)
	}
	if c.SweepInterval != time.Minute {
		t.Errorf("SweepInterval = %v, want the one-minute floor", c.SweepInterval)
	}
	if c.LockBackend != LockBackendMySQL || c.SweepEnabled {
		t.Errorf("LockBackend=%q SweepEnabled=%v", c.LockBackend, c.SweepEnabled)
	}

	t.Setenv("LOCK_BACKEND", "zookeeper")
	if got := LoadBookingConfig().LockBackend; got != LockBackendRedis {
		t.Errorf("unknown backend resolved to %q", got)
	}
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	if got := LoadRedisConfig().Addr; got != "cache:6380" {
		t.Fatalf("Addr = %q", got)
	}
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("REDIS_DB", "2")
	c := LoadRedisConfig()
	if c.Addr != "redis.internal:6379" || c.DB != 2 {
		t.Fatalf("got %+v", c)
	}
}

func TestDisabledRedisReturnsNilClient(t *testing.T) {
	rdb, err := NewRedisClient(RedisConfig{Disabled: true})
	if rdb != nil || err != nil {
		t.Fatalf("got %v, %v", rdb, err)
	}
}

func TestLoadCacheConfigKeepsSafeMethodsOnly(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, post ,HEAD")
	t.Setenv("CACHE_KEY_STRATEGY", "everything")
	c := LoadCacheConfig()
	if !c.Methods["GET"] || !c.Methods["HEAD"] || c.Methods["POST"] {
		t.Fatalf("Methods = %v", c.Methods)
	}
	if c.KeyStrategy != "route_query" {
		t.Fatalf("KeyStrategy = %q", c.KeyStrategy)
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	c := LoadRateLimitConfig()
	if c.Capacity != 1 {
		t.Errorf("Capacity = %d", c.Capacity)
	}
	if c.TTL != 10*time.Second {
		t.Errorf("TTL = %v, want 5 refill intervals", c.TTL)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("X_FLAG", "yes")
	if !envBool("X_FLAG", false) {
		t.Error("yes should be true")
	}
	t.Setenv("X_FLAG", "maybe")
	if envBool("X_FLAG", false) {
		t.Error("unparsable value should keep the default")
	}
}
