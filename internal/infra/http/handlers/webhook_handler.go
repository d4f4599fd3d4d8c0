package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/leadgram/leadgram/internal/infra/http/middleware"
	"github.com/leadgram/leadgram/internal/infra/integration/telegram"
	"github.com/leadgram/leadgram/internal/usecase"
)

type WebhookHandler struct {
	Ingest *usecase.IngestUpdateUseCase
}

func NewWebhookHandler(ingest *usecase.IngestUpdateUseCase) *WebhookHandler {
	return &WebhookHandler{Ingest: ingest}
}

type webhookResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Handle receives Telegram update deliveries. Lookup failures are answered
// with 200 so Telegram does not keep redelivering an update that will never
// resolve; only infrastructure errors get a 500.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Bad JSON", 400)
		return
	}

	err := h.Ingest.Execute(r.Context(), &update)

	w.Header().Set("Content-Type", "application/json")

	switch {
	case err == nil:
		middleware.RecordTelegramUpdate(updateType(&update), "ok")
		w.WriteHeader(200)
		json.NewEncoder(w).Encode(webhookResponse{Success: true})

	case usecase.IsDomainError(err):
		middleware.RecordTelegramUpdate(updateType(&update), "acknowledged")
		log.Printf("⚠️ Webhook update %d acknowledged with error: %v", update.UpdateID, err)
		w.WriteHeader(200)
		json.NewEncoder(w).Encode(webhookResponse{Success: false, Error: err.Error()})

	default:
		middleware.RecordTelegramUpdate(updateType(&update), "error")
		log.Printf("❌ Webhook update %d failed: %v", update.UpdateID, err)
		w.WriteHeader(500)
		json.NewEncoder(w).Encode(webhookResponse{Success: false, Error: "Internal server error"})
	}
}

func updateType(update *telegram.Update) string {
	switch {
	case update.Message == nil:
		return "other"
	case len(update.Message.NewChatMembers) > 0:
		return "new_members"
	case update.Message.LeftChatMember != nil:
		return "left_member"
	default:
		return "other"
	}
}
