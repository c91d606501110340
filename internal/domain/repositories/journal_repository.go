package repositories

import (
	"context"

	"github.com/bimakw/staking-gateway/internal/domain/entities"
)

// JournalRepository defines the interface for the transaction journal
type JournalRepository interface {
	// Record stores a phase event
	Record(ctx context.Context, entry *entities.JournalEntry) error

	// Recent returns the newest entries first
	Recent(ctx context.Context, limit int) ([]entities.JournalEntry, error)

	// ByAction returns the entries of one action in insertion order
	ByAction(ctx context.Context, actionID string) ([]entities.JournalEntry, error)
}
