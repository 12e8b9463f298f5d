package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const salesListKey = "sales:list"

func InitRedis(logger *zap.Logger) (*redis.Client, error) {
	host := getEnv("REDIS_HOST", "localhost")
	port := getEnv("REDIS_PORT", "6379")
	password := getEnv("REDIS_PASSWORD", "")

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established")
	return rdb, nil
}

// GetSalesList returns the cached sales listing, or an error on a miss.
func GetSalesList(ctx context.Context, rdb *redis.Client) ([]byte, error) {
	return rdb.Get(ctx, salesListKey).Bytes()
}

func SetSalesList(ctx context.Context, rdb *redis.Client, sales interface{}, ttl time.Duration) error {
	data, err := json.Marshal(sales)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, salesListKey, data, ttl).Err()
}

// InvalidateSalesList drops the cached listing after a new sale is written.
func InvalidateSalesList(ctx context.Context, rdb *redis.Client) error {
	return rdb.Del(ctx, salesListKey).Err()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
