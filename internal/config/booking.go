package config

import (
	"strings"
	"time"
)

// Lock backends understood by LOCK_BACKEND.
const (
	LockBackendRedis = "redis"
	LockBackendMySQL = "mysql"
	LockBackendLocal = "local"
)

// BookingConfig tunes the admission and lifecycle rules.
//
//	HOLD_WINDOW     how long a fresh pending reservation blocks other guests (10m)
//	CANCEL_WINDOW   how long after booking a reservation may still be cancelled (20m)
//	SWEEP_INTERVAL  cadence of the automatic checkout sweep (15m)
//	SWEEP_ENABLED   turn the sweep off on secondary replicas (true)
//	LOCK_BACKEND    redis | mysql | local (redis, downgraded to mysql when no Redis)
//	LOCK_TTL        lease on a room lock so a crashed holder cannot wedge a room (10s)
//	LOCK_WAIT       how long admission waits for a busy room before giving up (3s)
type BookingConfig struct {
	HoldWindow    time.Duration
	CancelWindow  time.Duration
	SweepInterval time.Duration
	SweepEnabled  bool
	LockBackend   string
	LockTTL       time.Duration
	LockWait      time.Duration
}

// LoadBookingConfig reads the booking rules from the environment, falling
// back to the defaults listed on BookingConfig.
func LoadBookingConfig() BookingConfig {
	c := BookingConfig{
		HoldWindow:    envDur("HOLD_WINDOW", 10*time.Minute),
		CancelWindow:  envDur("CANCEL_WINDOW", 20*time.Minute),
		SweepInterval: envDur("SWEEP_INTERVAL", 15*time.Minute),
		SweepEnabled:  envBool("SWEEP_ENABLED", true),
		LockBackend:   strings.ToLower(envStr("LOCK_BACKEND", LockBackendRedis)),
		LockTTL:       envDur("LOCK_TTL", 10*time.Second),
		LockWait:      envDur("LOCK_WAIT", 3*time.Second),
	}
	if c.HoldWindow <= 0 {
		c.HoldWindow = 10 * time.Minute
	}
	if c.CancelWindow <= 0 {
		c.CancelWindow = 20 * time.Minute
	}
	if c.SweepInterval < time.Minute {
		c.SweepInterval = time.Minute
	}
	switch c.LockBackend {
	case LockBackendRedis, LockBackendMySQL, LockBackendLocal:
	default:
		c.LockBackend = LockBackendRedis
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 10 * time.Second
	}
	if c.LockWait < 0 {
		c.LockWait = 0
	}
	return c
}
