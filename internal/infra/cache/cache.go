package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

const locationsKey = "cache:locations:active"

// LocationsCache кэш списка активных локаций поверх Redis.
// Промах кэша возвращает (nil, nil), ошибки Redis пробрасываются
// вызывающему, решение деградировать до БД принимает сервис.
type LocationsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocationsCache создает кэш локаций с заданным TTL
func NewLocationsCache(addr, password string, db int, ttl time.Duration) *LocationsCache {
	return &LocationsCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

// GetLocations читает список локаций из кэша. Промах — (nil, nil).
func (c *LocationsCache) GetLocations(ctx context.Context) ([]*domain.Location, error) {
	data, err := c.client.Get(ctx, locationsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("cache: get locations: %w", err)
	}

	var locations []*domain.Location
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, fmt.Errorf("cache: unmarshal locations: %w", err)
	}

	return locations, nil
}

// SetLocations сохраняет список локаций в кэш с TTL
func (c *LocationsCache) SetLocations(ctx context.Context, locations []*domain.Location) error {
	payload, err := json.Marshal(locations)
	if err != nil {
		return fmt.Errorf("cache: marshal locations: %w", err)
	}

	if err := c.client.Set(ctx, locationsKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set locations: %w", err)
	}

	return nil
}

// Invalidate сбрасывает кэш локаций
func (c *LocationsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, locationsKey).Err(); err != nil {
		return fmt.Errorf("cache: invalidate locations: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (c *LocationsCache) Close() error {
	return c.client.Close()
}
