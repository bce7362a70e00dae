package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"lekhajokha/backend/internal/domain"
)

const customerViewKey = "lekhajokha:customer-views"

type RedisCustomerViewCache struct {
	client *redis.Client
}

func NewRedisCustomerViewCache(addr string, password string, db int) *RedisCustomerViewCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisCustomerViewCache{client: client}
}

func (c *RedisCustomerViewCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCustomerViewCache) Close() error {
	return c.client.Close()
}

func (c *RedisCustomerViewCache) Get(ctx context.Context) ([]domain.CustomerView, bool, error) {
	val, err := c.client.Get(ctx, customerViewKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var views []domain.CustomerView
	if err := json.Unmarshal([]byte(val), &views); err != nil {
		return nil, false, err
	}
	return views, true, nil
}

func (c *RedisCustomerViewCache) Set(ctx context.Context, views []domain.CustomerView, ttl time.Duration) error {
	if views == nil {
		views = []domain.CustomerView{}
	}
	payload, err := json.Marshal(views)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, customerViewKey, payload, ttl).Err()
}

func (c *RedisCustomerViewCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, customerViewKey).Err()
}
