package handlers

import (
	"net/http"
	"strings"

	"bus-tracker/internal/auth"
	"bus-tracker/internal/config"
	"bus-tracker/internal/realtime"
	"bus-tracker/pkg/logger"

	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	authService *auth.Service
	router      *realtime.Router
	sendBuffer  int
	upgrader    websocket.Upgrader
}

func NewWebSocketHandlers(authService *auth.Service, router *realtime.Router, cfg *config.Config) *WebSocketHandlers {
	return &WebSocketHandlers{
		authService: authService,
		router:      router,
		sendBuffer:  cfg.Realtime.SendBuffer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

// HandleWebSocket upgrades the connection and starts the session
// pumps. Authentication is opportunistic: a missing or invalid token
// produces an anonymous session rather than a rejected connection, so
// riders can follow positions without an account.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	var identity *auth.Identity
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			tokenStr = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if tokenStr != "" {
		verified, err := h.authService.Verify(tokenStr)
		if err != nil {
			logger.Debug("Invalid token on connect, continuing as anonymous: %v", err)
		} else {
			identity = verified
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	session := realtime.NewSession(conn, identity, h.router, h.sendBuffer)
	logger.Info("Session %s connected (authenticated=%t)", session.ID, session.Authenticated())

	go session.WritePump()
	go session.ReadPump()
}
