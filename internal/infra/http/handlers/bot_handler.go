package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leadgram/leadgram/internal/entity"
	"github.com/leadgram/leadgram/internal/usecase"
)

type BotHandler struct {
	BotRepo  entity.BotRepositoryInterface
	Telegram usecase.TelegramAPI
}

func NewBotHandler(botRepo entity.BotRepositoryInterface, api usecase.TelegramAPI) *BotHandler {
	return &BotHandler{
		BotRepo:  botRepo,
		Telegram: api,
	}
}

type setWebhookRequest struct {
	WebhookURL string `json:"webhook_url"`
}

type setWebhookResponse struct {
	Success    bool   `json:"success"`
	WebhookURL string `json:"webhook_url,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SetWebhook registers the ingestion endpoint with Telegram for one bot and
// records the result on the bot row.
func (h *BotHandler) SetWebhook(w http.ResponseWriter, r *http.Request) {
	botID := chi.URLParam(r, "id")

	var req setWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeWebhookError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.WebhookURL == "" {
		writeWebhookError(w, http.StatusBadRequest, "webhook_url is required")
		return
	}

	bot, err := h.BotRepo.FindByID(r.Context(), botID)
	if err != nil {
		writeWebhookError(w, http.StatusNotFound, "Bot not found")
		return
	}

	if err := h.Telegram.SetWebhook(r.Context(), bot.Token, req.WebhookURL); err != nil {
		log.Printf("❌ setWebhook failed for bot %s: %v", botID, err)

		if updateErr := h.BotRepo.UpdateWebhook(r.Context(), botID, req.WebhookURL, "error"); updateErr != nil {
			log.Printf("⚠️ Could not record webhook error for bot %s: %v", botID, updateErr)
		}

		writeWebhookError(w, http.StatusBadGateway, "Telegram rejected the webhook")
		return
	}

	if err := h.BotRepo.UpdateWebhook(r.Context(), botID, req.WebhookURL, "active"); err != nil {
		log.Printf("⚠️ Could not record webhook for bot %s: %v", botID, err)
	}

	log.Printf("✅ Webhook registered for bot %s: %s", botID, req.WebhookURL)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(setWebhookResponse{Success: true, WebhookURL: req.WebhookURL})
}

func writeWebhookError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(setWebhookResponse{Success: false, Error: message})
}
