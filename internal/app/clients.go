package app

import (
	"github.com/redis/go-redis/v9"

	"github.com/studiolane/studiolane-backend/internal/logger"
)

func wireRedis(cfg Config, log *logger.Logger) *redis.Client {
	log.Info("Wiring redis client...", "addr", cfg.RedisAddr)
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}
