package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/leadgram/leadgram/internal/infra/http/middleware"
	"github.com/leadgram/leadgram/internal/usecase"
)

// CronHandler is the external scheduler entry point. Each call runs one tick
// of the scheduled message engine and one sweep of the welcome queue.
type CronHandler struct {
	Scheduled *usecase.ProcessScheduledMessagesUseCase
	Welcome   *usecase.ProcessWelcomeQueueUseCase
	Secret    string
}

func NewCronHandler(scheduled *usecase.ProcessScheduledMessagesUseCase, welcome *usecase.ProcessWelcomeQueueUseCase, secret string) *CronHandler {
	return &CronHandler{
		Scheduled: scheduled,
		Welcome:   welcome,
		Secret:    secret,
	}
}

type cronResponse struct {
	Success   bool                        `json:"success"`
	Scheduled *usecase.ProcessResult      `json:"scheduled,omitempty"`
	Welcome   *usecase.WelcomeQueueResult `json:"welcome,omitempty"`
	Error     string                      `json:"error,omitempty"`
}

func (h *CronHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(cronResponse{Success: false, Error: "Unauthorized"})
		return
	}

	ctx := r.Context()

	scheduled, err := h.Scheduled.Execute(ctx)
	if err != nil {
		log.Printf("❌ Scheduled message tick failed: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(cronResponse{Success: false, Error: "Internal server error"})
		return
	}

	welcome, err := h.Welcome.Execute(ctx)
	if err != nil {
		log.Printf("❌ Welcome queue sweep failed: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(cronResponse{Success: false, Scheduled: scheduled, Error: "Internal server error"})
		return
	}

	for _, r := range scheduled.Results {
		switch {
		case r.Success:
			middleware.RecordMessageSent("scheduled")
		case r.Error != "":
			middleware.RecordIntegrationError("telegram")
		}
	}
	for i := 0; i < welcome.Processed-welcome.Failed; i++ {
		middleware.RecordMessageSent("welcome")
	}

	log.Printf("✅ Cron tick: %d scheduled, %d welcome entries", scheduled.Processed, welcome.Processed)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(cronResponse{
		Success:   true,
		Scheduled: scheduled,
		Welcome:   welcome,
	})
}

// authorized compares the bearer token in constant time. An unset secret
// disables the endpoint entirely.
func (h *CronHandler) authorized(r *http.Request) bool {
	if h.Secret == "" {
		return false
	}

	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(h.Secret)) == 1
}
