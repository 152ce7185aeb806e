package realtime

import (
	"context"
	"sync"
	"time"

	"bus-tracker/internal/models"
	"bus-tracker/pkg/logger"
)

// Store is the durable backing for positions and chat messages. All
// calls may fail; the gateway logs and moves on.
type Store interface {
	UpsertPosition(ctx context.Context, record *models.PositionRecord) error
	InsertMessage(ctx context.Context, message *models.ChatMessage) error
	QueryLastPositions(ctx context.Context, routeID int) ([]*models.PositionRecord, error)
}

// SharedPositions is an optional fast store for last-known positions
// shared across server instances (Redis in production). May be nil.
type SharedPositions interface {
	StorePosition(ctx context.Context, record *models.PositionRecord) error
	RemovePosition(ctx context.Context, routeID, vehicleID int) error
	LastPositions(ctx context.Context, routeID int) ([]*models.PositionRecord, error)
}

// Gateway records positions and messages on a best-effort basis.
// Writes are detached from the caller and bounded by a timeout so a
// stalled store can never delay or break the fan-out path.
type Gateway struct {
	store   Store
	shared  SharedPositions
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewGateway(store Store, shared SharedPositions, timeout time.Duration) *Gateway {
	return &Gateway{
		store:   store,
		shared:  shared,
		timeout: timeout,
	}
}

// SavePosition returns immediately; the write happens in the
// background and a failure is logged, never surfaced. When prev shows
// the vehicle was serving another route, its entry under that route is
// removed from the shared store so no route lists it twice.
func (g *Gateway) SavePosition(record, prev *models.PositionRecord) {
	g.detach(func(ctx context.Context) {
		if g.shared != nil {
			if prev != nil && prev.RouteID != record.RouteID {
				if err := g.shared.RemovePosition(ctx, prev.RouteID, record.VehicleID); err != nil {
					logger.Error("Error removing vehicle %d from route %d in shared store: %v", record.VehicleID, prev.RouteID, err)
				}
			}
			if err := g.shared.StorePosition(ctx, record); err != nil {
				logger.Error("Error storing position for vehicle %d in shared store: %v", record.VehicleID, err)
			}
		}
		if err := g.store.UpsertPosition(ctx, record); err != nil {
			logger.Error("Error persisting position for vehicle %d: %v", record.VehicleID, err)
		}
	})
}

// SaveMessage is fire-and-forget like SavePosition; the room is the
// source of truth for delivery, not the database.
func (g *Gateway) SaveMessage(message *models.ChatMessage) {
	g.detach(func(ctx context.Context) {
		if err := g.store.InsertMessage(ctx, message); err != nil {
			logger.Error("Error persisting message %s for route %d: %v", message.ClientID, message.RouteID, err)
		}
	})
}

// LastPositions serves the snapshot fallback when the in-memory cache
// has nothing for the route: shared store first, database second.
func (g *Gateway) LastPositions(routeID int) []*models.PositionRecord {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	if g.shared != nil {
		records, err := g.shared.LastPositions(ctx, routeID)
		if err != nil {
			logger.Error("Error reading shared positions for route %d: %v", routeID, err)
		} else if len(records) > 0 {
			return records
		}
	}

	records, err := g.store.QueryLastPositions(ctx, routeID)
	if err != nil {
		logger.Debug("No persisted positions for route %d: %v", routeID, err)
		return nil
	}
	return records
}

// Flush waits for in-flight background writes. Used on shutdown and
// in tests; the realtime path never calls it.
func (g *Gateway) Flush() {
	g.wg.Wait()
}

func (g *Gateway) detach(fn func(ctx context.Context)) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
		defer cancel()
		fn(ctx)
	}()
}
