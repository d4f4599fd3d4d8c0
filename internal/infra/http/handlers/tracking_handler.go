package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/leadgram/leadgram/internal/usecase"
)

type TrackingHandler struct {
	track       *usecase.TrackEventUseCase
	rateLimiter *RateLimiter
}

func NewTrackingHandler(track *usecase.TrackEventUseCase) *TrackingHandler {
	return &TrackingHandler{
		track:       track,
		rateLimiter: NewRateLimiter(60, time.Minute), // 60 req/min por IP
	}
}

type trackResponse struct {
	Success bool   `json:"success"`
	LeadID  string `json:"lead_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type inviteResponse struct {
	Success    bool   `json:"success"`
	InviteLink string `json:"invite_link,omitempty"`
	Error      string `json:"error,omitempty"`
}

// TrackEvent ingests browser pixel events. Visitor identity comes from the
// lead_email/lead_source cookies set by the landing page.
func (h *TrackingHandler) TrackEvent(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)
	if !h.rateLimiter.Allow(clientIP) {
		writeTrackError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	var input usecase.TrackEventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeTrackError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if cookie, err := r.Cookie("lead_email"); err == nil {
		input.Email = cookie.Value
	}
	if cookie, err := r.Cookie("lead_source"); err == nil {
		input.Source = cookie.Value
	}
	if input.UserAgent == "" {
		input.UserAgent = r.UserAgent()
	}
	if input.Referrer == "" {
		input.Referrer = r.Referer()
	}

	leadID, err := h.track.Execute(r.Context(), input)
	if err != nil {
		writeTrackError(w, trackStatusCode(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(trackResponse{Success: true, LeadID: leadID})
}

func (h *TrackingHandler) GenerateInvite(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)
	if !h.rateLimiter.Allow(clientIP) {
		writeTrackError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	var input usecase.InviteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeTrackError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	link, err := h.track.GenerateInvite(r.Context(), input)
	if err != nil {
		writeTrackError(w, trackStatusCode(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(inviteResponse{Success: true, InviteLink: link})
}

// FacebookEvent forwards pixel conversions for identified leads. A missing
// or unknown lead_email cookie is acknowledged with success=false so the
// pixel never retries.
func (h *TrackingHandler) FacebookEvent(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)
	if !h.rateLimiter.Allow(clientIP) {
		writeTrackError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	var input usecase.FacebookEventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeTrackError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if cookie, err := r.Cookie("lead_email"); err == nil {
		input.Email = cookie.Value
	}

	if err := h.track.TrackFacebookEvent(r.Context(), input); err != nil {
		if errors.Is(err, usecase.ErrLeadNotFound) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(trackResponse{Success: false, Error: "Lead not found"})
			return
		}
		writeTrackError(w, trackStatusCode(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(trackResponse{Success: true})
}

func trackStatusCode(err error) int {
	switch err {
	case usecase.ErrMissingParameters:
		return http.StatusBadRequest
	case usecase.ErrInvalidAPIKey:
		return http.StatusUnauthorized
	case usecase.ErrChannelNotFound, usecase.ErrBotNotFound:
		return http.StatusNotFound
	case usecase.ErrTrackingDisabled:
		return http.StatusForbidden
	}

	if usecase.IsDomainError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeTrackError(w http.ResponseWriter, status int, message string) {
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(trackResponse{Success: false, Error: message})
}
