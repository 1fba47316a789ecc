// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"mindbloom/config"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionClient stores web sessions.
	SessionClient *redis.Client
	// CacheClient holds booking flows, chat history and notices.
	CacheClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
}

func mustPing(client *redis.Client, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
}

// InitRedis initializes both Redis clients using the DB numbers from AppConfig.
func InitRedis() {
	SessionClient = newRedisClient(config.AppConfig.RedisSessionDB)
	mustPing(SessionClient, "Session")
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	mustPing(CacheClient, "Cache")
}

// GetSessionClient returns the web session client.
func GetSessionClient() *redis.Client {
	if SessionClient == nil {
		SessionClient = newRedisClient(config.AppConfig.RedisSessionDB)
		mustPing(SessionClient, "Session")
	}
	return SessionClient
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
		mustPing(CacheClient, "Cache")
	}
	return CacheClient
}
