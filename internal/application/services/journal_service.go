package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/bimakw/staking-gateway/internal/domain/contracts"
	"github.com/bimakw/staking-gateway/internal/domain/entities"
	"github.com/bimakw/staking-gateway/internal/domain/repositories"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 500
)

// JournalService records phase events and serves them back for diagnostics
type JournalService struct {
	repo   repositories.JournalRepository
	logger *zap.Logger
}

// NewJournalService creates a new journal service
func NewJournalService(repo repositories.JournalRepository, logger *zap.Logger) *JournalService {
	return &JournalService{
		repo:   repo,
		logger: logger,
	}
}

// Notify stores event. A failing journal never fails the action.
func (s *JournalService) Notify(ctx context.Context, event entities.PhaseEvent) {
	message := event.Message
	if event.Phase == entities.PhaseFailed && event.Error != "" {
		message = message + " (" + event.Error + ")"
	}

	entry := &entities.JournalEntry{
		ActionID: event.ActionID,
		Action:   event.Action,
		Phase:    string(event.Phase),
		TxHash:   event.TxHash,
		Message:  message,
	}
	if err := s.repo.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("Failed to record journal entry",
			zap.String("action_id", event.ActionID),
			zap.String("phase", string(event.Phase)),
			zap.Error(err),
		)
	}
}

// Recent returns the newest entries first
func (s *JournalService) Recent(ctx context.Context, limit int) ([]entities.JournalEntry, error) {
	if limit <= 0 {
		limit = defaultJournalLimit
	}
	if limit > maxJournalLimit {
		limit = maxJournalLimit
	}
	return s.repo.Recent(ctx, limit)
}

// ByAction returns every recorded phase of one action
func (s *JournalService) ByAction(ctx context.Context, actionID string) ([]entities.JournalEntry, error) {
	actionID = strings.TrimSpace(actionID)
	if actionID == "" {
		return nil, contracts.Validationf("action id is required")
	}
	return s.repo.ByAction(ctx, actionID)
}
