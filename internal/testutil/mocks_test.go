package testutil

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/staking-gateway/internal/domain/contracts"
	"github.com/bimakw/staking-gateway/internal/domain/entities"
)

func TestCallLog_Order(t *testing.T) {
	f := NewMockFactory()
	ctx := context.Background()

	tx, err := f.DepositTok.Transact(ctx, contracts.TxOpts{}, "approve")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tx.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.Staking.EstimateGas(ctx, nil, "deposit"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"deposit.transact:approve", "deposit.wait:approve", "staking.estimate:deposit"}
	methods := f.Log.Methods()
	if len(methods) != len(expected) {
		t.Fatalf("expected %d calls, got %d", len(expected), len(methods))
	}
	for i, m := range expected {
		if methods[i] != m {
			t.Errorf("call %d: expected %s, got %s", i, m, methods[i])
		}
	}

	if f.Log.Index("staking.estimate:deposit") != 2 {
		t.Errorf("expected estimate at index 2, got %d", f.Log.Index("staking.estimate:deposit"))
	}
	if f.Log.Count("deposit.transact:approve") != 1 {
		t.Errorf("expected one approve, got %d", f.Log.Count("deposit.transact:approve"))
	}
}

func TestMockHandle_MissingResult(t *testing.T) {
	h := NewMockHandle(NewCallLog(), "token", BobAddress)

	_, err := h.Call(context.Background(), "name")
	if !errors.Is(err, contracts.ErrContractCall) {
		t.Errorf("expected contract call error, got %v", err)
	}
}

func TestMockFactory_Lookup(t *testing.T) {
	f := NewMockFactory()
	reward := NewMockHandle(f.Log, "reward", RewardTokenAddress)
	f.AddToken(reward)

	if got := f.Token(common.HexToAddress(RewardTokenAddress), nil); got != reward {
		t.Error("expected the registered reward handle")
	}
	if got := f.Token(common.HexToAddress(DepositTokenAddress), nil); got != f.DepositTok {
		t.Error("expected the deposit handle")
	}
	if f.ConnectCount != 2 {
		t.Errorf("expected 2 connects, got %d", f.ConnectCount)
	}
}

func TestSetupToken(t *testing.T) {
	h := SetupToken(NewMockHandle(NewCallLog(), "token", BobAddress), "Token", "TKN",
		TokenWithDecimals(6),
		TokenWithBalance(AliceAddress, big.NewInt(42)),
	)
	ctx := context.Background()

	out, err := h.Call(ctx, "decimals")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].(uint8) != 6 {
		t.Errorf("expected 6 decimals, got %v", out[0])
	}

	out, err = h.Call(ctx, "balanceOf", common.HexToAddress(AliceAddress))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].(*big.Int).Int64() != 42 {
		t.Errorf("expected balance 42, got %v", out[0])
	}
}

func TestRecordingNotifier(t *testing.T) {
	n := NewRecordingNotifier()
	n.Notify(context.Background(), entities.PhaseEvent{Phase: entities.PhaseStarted})
	n.Notify(context.Background(), entities.PhaseEvent{Phase: entities.PhaseConfirmed})

	phases := n.Phases()
	if len(phases) != 2 || phases[1] != entities.PhaseConfirmed {
		t.Errorf("unexpected phases %v", phases)
	}
	if n.Last().Phase != entities.PhaseConfirmed {
		t.Errorf("expected last phase confirmed, got %s", n.Last().Phase)
	}
}

func TestMockJournalRepository_Recent(t *testing.T) {
	repo := NewMockJournalRepository()
	ctx := context.Background()

	for _, phase := range []string{"started", "submitted", "confirmed"} {
		if err := repo.Record(ctx, &entities.JournalEntry{ActionID: "a", Phase: phase}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	recent, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 2 || recent[0].Phase != "confirmed" {
		t.Errorf("expected newest first, got %+v", recent)
	}
}
