package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"bus-tracker/internal/services"
	"bus-tracker/pkg/logger"
)

type ChatHandlers struct {
	chatService *services.ChatService
}

func NewChatHandlers(chatService *services.ChatService) *ChatHandlers {
	return &ChatHandlers{chatService: chatService}
}

// History handles GET /api/chat/{routeID}.
func (h *ChatHandlers) History(w http.ResponseWriter, r *http.Request) {
	routeID, err := strconv.Atoi(r.PathValue("routeID"))
	if err != nil {
		http.Error(w, "invalid route", http.StatusBadRequest)
		return
	}

	messages, err := h.chatService.History(r.Context(), routeID)
	if err != nil {
		logger.Error("Error loading chat history for route %d: %v", routeID, err)
		http.Error(w, "error loading messages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

type sendMessageRequest struct {
	RouteID  int    `json:"route_id"`
	ClientID string `json:"client_id"`
	Text     string `json:"text"`
}

// Send handles POST /api/chat/send, the non-realtime send path.
func (h *ChatHandlers) Send(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r)
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	message, err := h.chatService.Send(r.Context(), user.ID, req.RouteID, req.ClientID, req.Text)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(message)
}
