package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/leadgram/leadgram/internal/entity"
	"github.com/leadgram/leadgram/internal/usecase"
)

type ScheduleHandler struct {
	Schedule *usecase.ScheduleMessageUseCase
	MsgRepo  entity.ScheduledMessageRepositoryInterface
}

func NewScheduleHandler(schedule *usecase.ScheduleMessageUseCase, msgRepo entity.ScheduledMessageRepositoryInterface) *ScheduleHandler {
	return &ScheduleHandler{
		Schedule: schedule,
		MsgRepo:  msgRepo,
	}
}

type scheduleResponse struct {
	Success bool                     `json:"success"`
	Message *entity.ScheduledMessage `json:"message,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

type listMessagesResponse struct {
	Success  bool                       `json:"success"`
	Messages []*entity.ScheduledMessage `json:"messages"`
	Error    string                     `json:"error,omitempty"`
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.ScheduleMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(scheduleResponse{Success: false, Error: "Invalid JSON"})
		return
	}

	msg, err := h.Schedule.Execute(r.Context(), input)
	if err != nil {
		if usecase.IsDomainError(err) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(scheduleResponse{Success: false, Error: err.Error()})
			return
		}

		log.Printf("❌ Schedule create failed: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(scheduleResponse{Success: false, Error: "Internal server error"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(scheduleResponse{Success: true, Message: msg})
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := entity.ScheduledMessageFilters{
		BotID:     r.URL.Query().Get("bot_id"),
		ChannelID: r.URL.Query().Get("channel_id"),
		Status:    r.URL.Query().Get("status"),
	}

	messages, err := h.MsgRepo.List(r.Context(), filters)
	if err != nil {
		log.Printf("❌ Schedule list failed: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(listMessagesResponse{Success: false, Error: "Internal server error"})
		return
	}

	if messages == nil {
		messages = []*entity.ScheduledMessage{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(listMessagesResponse{Success: true, Messages: messages})
}
