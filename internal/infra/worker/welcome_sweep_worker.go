package worker

import (
	"context"
	"log"
	"time"

	"github.com/leadgram/leadgram/internal/usecase"
)

// WelcomeSweepWorker periodically drains overdue welcome queue entries. It
// backs up the broker consumer: entries whose delayed delivery was lost (or
// that were pending across a restart) still go out.
type WelcomeSweepWorker struct {
	sweep        *usecase.ProcessWelcomeQueueUseCase
	tickInterval time.Duration
}

func NewWelcomeSweepWorker(sweep *usecase.ProcessWelcomeQueueUseCase) *WelcomeSweepWorker {
	return &WelcomeSweepWorker{
		sweep:        sweep,
		tickInterval: 1 * time.Minute,
	}
}

func (w *WelcomeSweepWorker) Start(ctx context.Context) {
	log.Println("🕒 Welcome sweep worker started (1min interval)")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.run(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Welcome sweep worker stopped")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *WelcomeSweepWorker) run(ctx context.Context) {
	result, err := w.sweep.Execute(ctx)
	if err != nil {
		log.Printf("❌ Welcome sweep failed: %v", err)
		return
	}

	if result.Processed > 0 {
		log.Printf("✅ Welcome sweep delivered %d entries (%d failed)", result.Processed-result.Failed, result.Failed)
	}
}
