package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/votelane/reco-service/internal/recommend"
	"github.com/votelane/reco-service/internal/transport/http/response"
)

type RecommendationHandler struct {
	svc *recommend.Service
}

func NewRecommendationHandler(svc *recommend.Service) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

// ForYou handles GET /api/recommendations?userId=&limit=&offset=.
// Recommendation reads always answer 200 with a best-effort envelope.
func (h *RecommendationHandler) ForYou(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	limit, offset := pageParams(r)

	response.JSON(w, http.StatusOK, h.svc.ForYou(r.Context(), userID, limit, offset))
}

// Trending handles GET /api/recommendations/trending.
func (h *RecommendationHandler) Trending(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	response.JSON(w, http.StatusOK, h.svc.Trending(r.Context(), limit, offset))
}

// Popular handles GET /api/recommendations/popular.
func (h *RecommendationHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	response.JSON(w, http.StatusOK, h.svc.Popular(r.Context(), limit, offset))
}

// Similar handles GET /api/recommendations/similar/{electionId}.
func (h *RecommendationHandler) Similar(w http.ResponseWriter, r *http.Request) {
	electionID := chi.URLParam(r, "electionId")
	limit, _ := pageParams(r)
	response.JSON(w, http.StatusOK, h.svc.Similar(r.Context(), electionID, limit))
}

// ByCategory handles GET /api/recommendations/category/{categoryId}.
func (h *RecommendationHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "categoryId")
	limit, offset := pageParams(r)
	response.JSON(w, http.StatusOK, h.svc.ByCategory(r.Context(), category, limit, offset))
}

// Lottery handles GET /api/recommendations/lottery?minPrize=.
func (h *RecommendationHandler) Lottery(w http.ResponseWriter, r *http.Request) {
	limit, _ := pageParams(r)

	minPrize := 0.0
	if v := r.URL.Query().Get("minPrize"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			minPrize = parsed
		}
	}

	response.JSON(w, http.StatusOK, h.svc.Lottery(r.Context(), minPrize, limit))
}

// Audience handles GET /api/recommendations/audience/{electionId}.
func (h *RecommendationHandler) Audience(w http.ResponseWriter, r *http.Request) {
	electionID := chi.URLParam(r, "electionId")
	limit, _ := pageParams(r)
	response.JSON(w, http.StatusOK, h.svc.Audience(r.Context(), electionID, limit))
}

func pageParams(r *http.Request) (int, int) {
	limit := 0
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	return limit, offset
}
