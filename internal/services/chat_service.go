package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bus-tracker/internal/database"
	"bus-tracker/internal/models"
	"bus-tracker/internal/moderation"
)

const historyLimit = 100

// ChatService backs the REST chat surface: history reads and the
// non-realtime send path. The realtime path goes through the event
// router instead.
type ChatService struct {
	db database.Database
}

func NewChatService(db database.Database) *ChatService {
	return &ChatService{db: db}
}

func (s *ChatService) History(ctx context.Context, routeID int) ([]*models.ChatMessage, error) {
	if routeID <= 0 {
		return nil, fmt.Errorf("invalid route")
	}
	return s.db.ListMessagesByRoute(ctx, routeID, historyLimit)
}

func (s *ChatService) Send(ctx context.Context, authorID int, routeID int, clientID, text string) (*models.ChatMessage, error) {
	if routeID <= 0 {
		return nil, fmt.Errorf("route is required")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("message is empty")
	}
	if moderation.ContainsBadWords(text) {
		return nil, fmt.Errorf("message contains inappropriate language")
	}

	message := &models.ChatMessage{
		ClientID:  clientID,
		AuthorID:  &authorID,
		RouteID:   routeID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.db.InsertMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	return message, nil
}
