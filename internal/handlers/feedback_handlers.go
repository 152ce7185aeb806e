package handlers

import (
	"encoding/json"
	"net/http"

	"bus-tracker/internal/database"
	"bus-tracker/internal/models"
	"bus-tracker/pkg/logger"
)

type FeedbackHandlers struct {
	db database.Database
}

func NewFeedbackHandlers(db database.Database) *FeedbackHandlers {
	return &FeedbackHandlers{db: db}
}

func (h *FeedbackHandlers) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r)
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Stars < 1 || req.Stars > 5 {
		http.Error(w, "stars must be between 1 and 5", http.StatusBadRequest)
		return
	}

	feedback, err := h.db.InsertFeedback(r.Context(), user.ID, &req)
	if err != nil {
		logger.Error("Error creating feedback: %v", err)
		http.Error(w, "error saving feedback", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(feedback)
}

func (h *FeedbackHandlers) List(w http.ResponseWriter, r *http.Request) {
	feedbacks, err := h.db.ListFeedback(r.Context())
	if err != nil {
		logger.Error("Error listing feedback: %v", err)
		http.Error(w, "error listing feedback", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(feedbacks)
}
