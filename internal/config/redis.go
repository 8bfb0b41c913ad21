package config

// Redis holds the short-lived OTP ledger and backs the request rate limiter
// on the OTP-sending endpoints. If the connection fails during startup the
// constructor returns nil; callers degrade gracefully (the rate limiter
// becomes a pass-through) or refuse to serve the flows that need the ledger.

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

func redisAddr() string {
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		return host + ":" + port
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// NewRedisClient builds a Redis client from REDIS_HOST/REDIS_PORT (or
// REDIS_ADDR), with REDIS_PASSWORD, REDIS_DB and REDIS_TLS optional. Returns
// nil when the server cannot be reached.
func NewRedisClient() *redis.Client {
	dbNum, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	var tlsConf *tls.Config
	if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}

	// The workload here is small and bursty: a handful of OTP reads and
	// limiter counters per request, nothing long-lived. A small pool with a
	// couple of warm connections covers it.
	client := redis.NewClient(&redis.Options{
		Addr:         redisAddr(),
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           dbNum,
		TLSConfig:    tlsConf,
		PoolSize:     8,
		MinIdleConns: 2,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
