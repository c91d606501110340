package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/staking-gateway/internal/domain/entities"
	"github.com/bimakw/staking-gateway/internal/domain/repositories"
)

// Ensure JournalRepo implements JournalRepository
var _ repositories.JournalRepository = (*JournalRepo)(nil)

const maxJournalLimit = 500

// JournalRepo implements JournalRepository using PostgreSQL
type JournalRepo struct {
	db *sqlx.DB
}

// NewJournalRepo creates a new journal repository
func NewJournalRepo(db *sqlx.DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// Record inserts a phase event and fills in its id and creation time
func (r *JournalRepo) Record(ctx context.Context, entry *entities.JournalEntry) error {
	query := `
		INSERT INTO tx_journal (action_id, action, phase, tx_hash, message)
		VALUES (:action_id, :action, :phase, :tx_hash, :message)
		RETURNING id, created_at
	`

	rows, err := r.db.NamedQueryContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("failed to record journal entry: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&entry.ID, &entry.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan journal entry: %w", err)
		}
	}
	return rows.Err()
}

// Recent returns the newest entries first
func (r *JournalRepo) Recent(ctx context.Context, limit int) ([]entities.JournalEntry, error) {
	if limit <= 0 || limit > maxJournalLimit {
		limit = maxJournalLimit
	}

	query := `
		SELECT id, action_id, action, phase, tx_hash, message, created_at
		FROM tx_journal
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	var entries []entities.JournalEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get journal entries: %w", err)
	}
	return entries, nil
}

// ByAction returns the entries of one action in insertion order
func (r *JournalRepo) ByAction(ctx context.Context, actionID string) ([]entities.JournalEntry, error) {
	query := `
		SELECT id, action_id, action, phase, tx_hash, message, created_at
		FROM tx_journal
		WHERE action_id = $1
		ORDER BY id ASC
	`

	var entries []entities.JournalEntry
	if err := r.db.SelectContext(ctx, &entries, query, actionID); err != nil {
		return nil, fmt.Errorf("failed to get journal for action %s: %w", actionID, err)
	}
	return entries, nil
}
