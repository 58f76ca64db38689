package redis

import (
	"context"
	"log"
	"time"
	"treehouse-service/internal/config"

	"github.com/redis/go-redis/v9"
)

var Redis_Client *redis.Client

func InitRedisClient(cfg *config.RedisConfig) error {
	Redis_Client = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := Redis_Client.Ping(pingCtx).Err(); err != nil {
		log.Printf("Error pinging Redis: %v", err)
		return err
	}

	log.Printf("Successfully connected to Redis at %s", cfg.Address)
	return nil
}

// CloseRedis closes the Redis connection
func CloseRedis() {
	if Redis_Client != nil {
		if err := Redis_Client.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}
}
