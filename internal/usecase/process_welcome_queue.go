package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/leadgram/leadgram/internal/entity"
)

const defaultWelcomeBatchSize = 50

type WelcomeQueueResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// WelcomeDeliverer dispatches an already-claimed queue entry.
type WelcomeDeliverer interface {
	DeliverClaimed(ctx context.Context, entry *entity.WelcomeQueueEntry) error
}

// ProcessWelcomeQueueUseCase is the backlog sweep: it claims overdue pending
// entries and fires them. It runs from the cron trigger and from the ticker
// worker, covering restarts and lost broker deliveries.
type ProcessWelcomeQueueUseCase struct {
	WelcomeRepo entity.WelcomeQueueRepositoryInterface
	Welcome     WelcomeDeliverer
	BatchSize   int
	Now         func() time.Time
}

func NewProcessWelcomeQueueUseCase(welcomeRepo entity.WelcomeQueueRepositoryInterface, welcome WelcomeDeliverer) *ProcessWelcomeQueueUseCase {
	return &ProcessWelcomeQueueUseCase{
		WelcomeRepo: welcomeRepo,
		Welcome:     welcome,
		BatchSize:   defaultWelcomeBatchSize,
		Now:         time.Now,
	}
}

func (uc *ProcessWelcomeQueueUseCase) Execute(ctx context.Context) (*WelcomeQueueResult, error) {
	entries, err := uc.WelcomeRepo.ClaimDue(ctx, uc.Now(), uc.batchSize())
	if err != nil {
		return nil, fmt.Errorf("claim due welcome entries: %w", err)
	}

	result := &WelcomeQueueResult{Processed: len(entries)}
	for _, entry := range entries {
		if err := uc.Welcome.DeliverClaimed(ctx, entry); err != nil {
			result.Failed++
		}
	}

	return result, nil
}

func (uc *ProcessWelcomeQueueUseCase) batchSize() int {
	if uc.BatchSize > 0 {
		return uc.BatchSize
	}
	return defaultWelcomeBatchSize
}
