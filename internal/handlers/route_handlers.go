package handlers

import (
	"encoding/json"
	"net/http"

	"bus-tracker/internal/models"
	"bus-tracker/internal/services"
	"bus-tracker/pkg/logger"
)

type RouteHandlers struct {
	routeService *services.RouteService
}

func NewRouteHandlers(routeService *services.RouteService) *RouteHandlers {
	return &RouteHandlers{routeService: routeService}
}

func (h *RouteHandlers) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.routeService.ListRoutes(r.Context())
	if err != nil {
		logger.Error("Error listing routes: %v", err)
		http.Error(w, "error listing routes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(routes)
}

func (h *RouteHandlers) CreateRoute(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	route, err := h.routeService.CreateRoute(r.Context(), &req)
	if err != nil {
		logger.Error("Error creating route: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(route)
}

// LastPositions serves the last persisted position per vehicle; live
// updates flow over the WebSocket instead.
func (h *RouteHandlers) LastPositions(w http.ResponseWriter, r *http.Request) {
	records, err := h.routeService.LastPositions(r.Context())
	if err != nil {
		logger.Error("Error listing positions: %v", err)
		http.Error(w, "error listing positions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}
