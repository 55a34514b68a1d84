package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jnphilipp/computer/pkg/logger"
)

type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) SetForecast(ctx context.Context, key string, summary interface{}, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast: %w", err)
	}

	err = c.client.Set(ctx, fmt.Sprintf("forecast:%s", key), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set forecast cache: %w", err)
	}

	logger.Debug("Forecast cached", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (c *Client) GetForecast(ctx context.Context, key string, summary interface{}) (bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf("forecast:%s", key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get forecast cache: %w", err)
	}

	err = json.Unmarshal(data, summary)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal forecast: %w", err)
	}

	logger.Debug("Forecast cache hit", zap.String("key", key))
	return true, nil
}
