package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"bus-tracker/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisPositions keeps the last known position per vehicle in a
// route-keyed hash so multiple server instances share one live view.
// Entries expire after TTL without a fresh write for the route.
type RedisPositions struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPositions(addr string, ttl time.Duration) (*RedisPositions, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisPositions{client: client, ttl: ttl}, nil
}

func routePositionsKey(routeID int) string {
	return fmt.Sprintf("route:%d:positions", routeID)
}

func (r *RedisPositions) StorePosition(ctx context.Context, record *models.PositionRecord) error {
	b, err := json.Marshal(record)
	if err != nil {
		return err
	}

	key := routePositionsKey(record.RouteID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(record.VehicleID), b)
	pipe.Expire(ctx, key, r.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// RemovePosition drops the vehicle's field from the route's hash, used
// when the vehicle is reassigned to another route.
func (r *RedisPositions) RemovePosition(ctx context.Context, routeID, vehicleID int) error {
	return r.client.HDel(ctx, routePositionsKey(routeID), strconv.Itoa(vehicleID)).Err()
}

func (r *RedisPositions) LastPositions(ctx context.Context, routeID int) ([]*models.PositionRecord, error) {
	values, err := r.client.HVals(ctx, routePositionsKey(routeID)).Result()
	if err != nil {
		return nil, err
	}

	var records []*models.PositionRecord
	for _, v := range values {
		record := &models.PositionRecord{}
		if err := json.Unmarshal([]byte(v), record); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *RedisPositions) Close() error {
	return r.client.Close()
}
