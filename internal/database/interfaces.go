package database

import (
	"context"

	"bus-tracker/internal/models"
)

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
}

type RouteRepository interface {
	ListRoutes(ctx context.Context) ([]*models.Route, error)
	CreateRoute(ctx context.Context, req *models.CreateRouteRequest) (*models.Route, error)
	GetRouteByID(ctx context.Context, id int) (*models.Route, error)
}

type PositionRepository interface {
	UpsertPosition(ctx context.Context, record *models.PositionRecord) error
	QueryLastPositions(ctx context.Context, routeID int) ([]*models.PositionRecord, error)
	AllLastPositions(ctx context.Context) ([]*models.PositionRecord, error)
}

type MessageRepository interface {
	InsertMessage(ctx context.Context, message *models.ChatMessage) error
	ListMessagesByRoute(ctx context.Context, routeID, limit int) ([]*models.ChatMessage, error)
}

type FeedbackRepository interface {
	InsertFeedback(ctx context.Context, userID int, req *models.CreateFeedbackRequest) (*models.Feedback, error)
	ListFeedback(ctx context.Context) ([]*models.Feedback, error)
}

type Database interface {
	UserRepository
	RouteRepository
	PositionRepository
	MessageRepository
	FeedbackRepository
	Close() error
}
