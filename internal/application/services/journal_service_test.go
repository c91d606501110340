package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bimakw/staking-gateway/internal/domain/contracts"
	"github.com/bimakw/staking-gateway/internal/domain/entities"
	"github.com/bimakw/staking-gateway/internal/testutil"
)

func TestJournalService_RecordsEveryPhase(t *testing.T) {
	repo := testutil.NewMockJournalRepository()
	journal := NewJournalService(repo, zap.NewNop())

	factory := testutil.NewMockFactory()
	tx := NewTransactionService(testutil.NewMockProvider(), factory, journal, testutil.ContractsConfig(), zap.NewNop())
	tx.newID = func() string { return "action-1" }

	_, err := tx.ClaimReward(context.Background(), 0)
	require.NoError(t, err)

	entries, err := journal.ByAction(context.Background(), "action-1")
	require.NoError(t, err)

	phases := make([]string, len(entries))
	for i, e := range entries {
		phases[i] = e.Phase
		assert.Equal(t, ActionClaimReward, e.Action)
	}
	assert.Equal(t, []string{"started", "estimating", "submitted", "confirmed"}, phases)
	assert.NotEmpty(t, entries[3].TxHash)
}

func TestJournalService_FailedEntryCarriesError(t *testing.T) {
	repo := testutil.NewMockJournalRepository()
	journal := NewJournalService(repo, zap.NewNop())

	journal.Notify(context.Background(), entities.PhaseEvent{
		ActionID: "a",
		Action:   ActionBuyToken,
		Phase:    entities.PhaseFailed,
		Message:  "no token available for sale",
		Error:    "no token available for sale",
	})

	recent, err := journal.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "no token available for sale (no token available for sale)", recent[0].Message)
}

func TestJournalService_RecordFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	repo := testutil.NewMockJournalRepository()
	repo.RecordFunc = func(ctx context.Context, entry *entities.JournalEntry) error {
		return errors.New("connection refused")
	}
	journal := NewJournalService(repo, zap.New(core))

	journal.Notify(context.Background(), entities.PhaseEvent{ActionID: "a", Phase: entities.PhaseStarted})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Failed to record journal entry", logs.All()[0].Message)
}

func TestJournalService_RecentLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{"default", 0, defaultJournalLimit},
		{"negative", -5, defaultJournalLimit},
		{"within range", 10, 10},
		{"capped", 10000, maxJournalLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockJournalRepository()
			var got int
			repo.RecentFunc = func(ctx context.Context, limit int) ([]entities.JournalEntry, error) {
				got = limit
				return nil, nil
			}

			_, err := NewJournalService(repo, zap.NewNop()).Recent(context.Background(), tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestJournalService_ByActionRequiresID(t *testing.T) {
	repo := testutil.NewMockJournalRepository()

	_, err := NewJournalService(repo, zap.NewNop()).ByAction(context.Background(), " ")
	assert.ErrorIs(t, err, contracts.ErrValidation)
	assert.Empty(t, repo.Calls)
}
