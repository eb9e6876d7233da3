// Package ratelimit ограничивает число попыток по ключу (гостевая отмена бронирования).
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RealTimGFM/ScheduleBooker/internal/config"
)

const keyPrefix = "schedulebooker:ratelimit:"

// ErrNilClient возвращается, когда Redis-клиент не передан
var ErrNilClient = errors.New("ratelimit: redis client is nil")

// NewRedisClient создает клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// RedisLimiter счетчик попыток в фиксированном окне, общий для всех инстансов сервиса
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter создает лимитер: не более limit попыток за window на ключ
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Allow регистрирует попытку и возвращает false, если лимит в текущем окне исчерпан
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.client == nil {
		return false, ErrNilClient
	}

	key = keyPrefix + key

	// INCR и TTL одной транзакцией; NX не сдвигает уже идущее окно
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("ratelimit: incr %s: %w", key, err)
	}
	count := incr.Val()

	return count <= int64(l.limit), nil
}
