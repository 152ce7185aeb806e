package models

import "time"

// ChatMessage is one message attributed to a route. ClientID is
// generated by the sending client and lets it match the ack and drop
// duplicate echoes; the server never deduplicates across sessions.
type ChatMessage struct {
	ID         int       `json:"id,omitempty"`
	ClientID   string    `json:"client_id"`
	AuthorID   *int      `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	RouteID    int       `json:"route_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}
