package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
	"treehouse-service/internal/database/redis"

	redis_v9 "github.com/redis/go-redis/v9"
)

type RedisRepo struct {
	client *redis_v9.Client
}

func NewRedisRepo() *RedisRepo {
	return &RedisRepo{
		client: redis.Redis_Client,
	}
}

func (r *RedisRepo) SaveStructCached(ctx context.Context, signature, key string, model any, expired time.Duration) (bool, error) {
	val, err := json.Marshal(model)
	key = key + signature
	if err != nil {
		return false, fmt.Errorf("error saving struct to cache: %s", err)
	}
	err = r.client.Set(ctx, key, val, expired*time.Hour).Err()
	if err != nil {
		return false, fmt.Errorf("error saving struct to cached: %s", err)
	}
	return true, nil
}

func (r *RedisRepo) GetStructCached(ctx context.Context, key, signature string, model any) error {
	key = key + signature
	cached, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return fmt.Errorf("error get struct in cache: %s", err)
	}

	return json.Unmarshal(cached, model)
}

func (r *RedisRepo) SaveString(ctx context.Context, key, value string, ltime time.Duration) (bool, error) {
	err := r.client.Set(ctx, key, value, ltime*time.Minute).Err()
	if err != nil {
		return false, fmt.Errorf("error saving string value to cache: %s", err)
	}
	return true, nil
}

func (r *RedisRepo) GetString(ctx context.Context, key string) string {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis_v9.Nil {
			log.Printf("error get string value in cache: %s. Return empty", err)
		}
		return ""
	}
	return value
}

func (r *RedisRepo) DeleteKey(ctx context.Context, key string) error {
	result := r.client.Del(ctx, key)
	if result.Err() != nil {
		return fmt.Errorf("error deleting key %s: %w", key, result.Err())
	}
	return nil
}
