package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/todmy/botcheck/internal/analyzer"
	"github.com/todmy/botcheck/pkg/models"
)

// AnalyzeRequest is the scoring request body.
type AnalyzeRequest struct {
	Messages []models.Message   `json:"messages"`
	Profile  *models.Profile    `json:"profile,omitempty"`
	Weights  map[string]float64 `json:"weights,omitempty"`
	GuildID  string             `json:"guild_id,omitempty"`
	UserID   string             `json:"user_id,omitempty"`
}

// handleAnalyze scores a message batch and, when both guild and user ids
// are present, appends the result to the score history. A store failure is
// logged but never fails the scoring response.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Messages) == 0 {
		respondError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}

	result := s.engine.Analyze(r.Context(), req.Messages, req.Profile, analyzer.Weights(req.Weights))

	if req.GuildID != "" && req.UserID != "" {
		score := &models.Score{
			GuildID:       req.GuildID,
			UserID:        req.UserID,
			TotalScore:    result.TotalScore,
			TimingScore:   result.TimingScore,
			StyleScore:    result.StyleScore,
			BehaviorScore: result.BehaviorScore,
			AIScore:       result.AIScore,
			ProfileScore:  result.ProfileScore,
			NetworkScore:  result.NetworkScore,
			Confidence:    result.Confidence,
			SampleSize:    result.MessageCount,
			AnalyzedAt:    result.AnalyzedAt,
		}
		if err := s.scoreRepo.Create(r.Context(), score); err != nil {
			s.logger.Warn().Err(err).
				Str("guild_id", req.GuildID).
				Str("user_id", req.UserID).
				Msg("failed to store score")
		}
	}

	respondJSON(w, http.StatusOK, result)
}

// handleGetUserScore returns the latest persisted score for a user.
func (s *Server) handleGetUserScore(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user id is required")
		return
	}

	score, err := s.scoreRepo.LatestByUser(r.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to fetch score")
		respondError(w, http.StatusInternalServerError, "failed to fetch score")
		return
	}

	if score == nil {
		respondError(w, http.StatusNotFound, "score not found")
		return
	}

	respondJSON(w, http.StatusOK, score)
}

// handleGetUserHistory returns up to 100 recent scores for a user.
func (s *Server) handleGetUserHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user id is required")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	scores, err := s.scoreRepo.HistoryByUser(r.Context(), userID, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to fetch history")
		respondError(w, http.StatusInternalServerError, "failed to fetch history")
		return
	}

	if scores == nil {
		scores = []*models.Score{}
	}
	respondJSON(w, http.StatusOK, scores)
}

// handleGetStats returns history-wide statistics.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.scoreRepo.Stats(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch stats")
		respondError(w, http.StatusInternalServerError, "failed to fetch stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
