package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig locates the Redis server shared by the room lock, the rate
// limiter and the response cache.
//
//	REDIS_ADDR            host:port, overridden by REDIS_HOST + REDIS_PORT
//	REDIS_PASSWORD        optional
//	REDIS_DB              database number (0)
//	REDIS_TLS             "true" or "1" dials TLS
//	REDIS_DISABLED        skip Redis entirely
//	REDIS_DIAL_TIMEOUT    start-up ping budget (2s)
type RedisConfig struct {
	Disabled    bool
	Addr        string
	Password    string
	DB          int
	TLS         bool
	DialTimeout time.Duration
}

// LoadRedisConfig reads RedisConfig from the environment.
func LoadRedisConfig() RedisConfig {
	c := RedisConfig{
		Disabled:    envBool("REDIS_DISABLED", false),
		Addr:        envStr("REDIS_ADDR", "localhost:6379"),
		Password:    envStr("REDIS_PASSWORD", ""),
		DB:          envInt("REDIS_DB", 0),
		TLS:         envBool("REDIS_TLS", false),
		DialTimeout: envDur("REDIS_DIAL_TIMEOUT", 2*time.Second),
	}
	if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
		c.Addr = net.JoinHostPort(strings.TrimSpace(host), strings.TrimSpace(port))
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 2 * time.Second
	}
	return c
}

// NewRedisClient connects and pings the server.  It returns (nil, nil) when
// Redis is disabled; callers then fall back to the MySQL lock and run
// without rate limiting or caching.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	if cfg.Disabled {
		return nil, nil
	}
	opts := &redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}
