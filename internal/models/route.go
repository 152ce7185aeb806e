package models

import (
	"encoding/json"
	"time"
)

// Route is one direction of a bus line; Waypoints is the ordered list
// of coordinates stored as JSONB.
type Route struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Waypoints json.RawMessage `json:"waypoints"`
	CreatedAt time.Time       `json:"created_at"`
}

type CreateRouteRequest struct {
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Waypoints json.RawMessage `json:"waypoints"`
}

type Feedback struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateFeedbackRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}
