package services

import (
	"context"
	"errors"
	"fmt"

	"bus-tracker/internal/database"
	"bus-tracker/internal/models"
)

type RouteService struct {
	db database.Database
}

func NewRouteService(db database.Database) *RouteService {
	return &RouteService{db: db}
}

func (s *RouteService) ListRoutes(ctx context.Context) ([]*models.Route, error) {
	return s.db.ListRoutes(ctx)
}

func (s *RouteService) CreateRoute(ctx context.Context, req *models.CreateRouteRequest) (*models.Route, error) {
	if req.Name == "" || req.Kind == "" || len(req.Waypoints) == 0 {
		return nil, fmt.Errorf("name, kind and waypoints are required")
	}

	return s.db.CreateRoute(ctx, req)
}

// LastPositions returns the last known position of every tracked
// vehicle. An empty table is not an error to API consumers.
func (s *RouteService) LastPositions(ctx context.Context) ([]*models.PositionRecord, error) {
	records, err := s.db.AllLastPositions(ctx)
	if errors.Is(err, database.ErrNoPositions) {
		return []*models.PositionRecord{}, nil
	}
	return records, err
}
