package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/coral-stay/api/internal/enum"
	"github.com/coral-stay/api/internal/middleware"
	"github.com/coral-stay/api/internal/recommend"
	"github.com/coral-stay/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Suggester defines what the recommendation handler needs. Satisfied by
// *recommend.Client.
type Suggester interface {
	Suggest(ctx context.Context, req recommend.Request) (recommend.Suggestions, error)
}

// recommendUserStore is the slice of the user store this handler reads.
type recommendUserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (store.User, error)
}

// RecommendationHandler serves AI dining suggestions for customers.
type RecommendationHandler struct {
	suggester Suggester
	users     recommendUserStore
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(suggester Suggester, users recommendUserStore) *RecommendationHandler {
	return &RecommendationHandler{suggester: suggester, users: users}
}

// RegisterRoutes registers the recommendation endpoint.
func (h *RecommendationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Suggest)
}

// --- Request types ---

type suggestRequest struct {
	ReservationDates string `json:"reservation_dates"`
	Preferences      string `json:"preferences"`
}

// --- Handlers ---

// Suggest asks the model for dish, drink and dessert ideas based on the
// customer's stored preferences.
func (h *RecommendationHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	if claims.Role != enum.RoleCustomer {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only customers get recommendations"})
		return
	}

	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	user, err := h.users.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		log.Printf("ERROR: get user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	// Preferences from the request win; stored profile preferences are
	// the fallback.
	preferences := strings.TrimSpace(req.Preferences)
	if preferences == "" {
		preferences = strings.TrimSpace(user.Preferences)
	}
	if len(preferences) < 10 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "preferences must be at least 10 characters"})
		return
	}

	suggestions, err := h.suggester.Suggest(r.Context(), recommend.Request{
		ReservationDates: req.ReservationDates,
		Preferences:      preferences,
		Profile:          fmt.Sprintf("Name: %s", user.Name),
	})
	if err != nil {
		if errors.Is(err, recommend.ErrNoAPIKey) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "recommendations are not available"})
			return
		}
		log.Printf("ERROR: fetch suggestions: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "recommendation service failed"})
		return
	}

	writeJSON(w, http.StatusOK, suggestions)
}
