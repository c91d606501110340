package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/staking-gateway/internal/application/services"
	"github.com/bimakw/staking-gateway/internal/config"
	"github.com/bimakw/staking-gateway/internal/domain/contracts"
	"github.com/bimakw/staking-gateway/internal/domain/entities"
	"github.com/bimakw/staking-gateway/internal/testutil"
)

func setupDashboardHandlerTest() (chi.Router, *testutil.MockFactory) {
	factory := testutil.NewMockFactory()
	logger := zap.NewNop()

	testutil.SetupStaking(factory.Staking, testutil.OwnerAddress, []testutil.PoolRecord{{
		DepositToken:    testutil.DepositTokenAddress,
		RewardToken:     testutil.DepositTokenAddress,
		DepositedAmount: testutil.Wei("10"),
		APY:             5,
		LockDays:        7,
	}}, nil)
	testutil.SetupToken(factory.DepositTok, "Stake Token", "STK",
		testutil.TokenWithBalance(testutil.StakingAddress, testutil.Wei("10")),
	)
	factory.AddToken(testutil.SetupToken(
		testutil.NewMockHandle(factory.Log, "reward", testutil.RewardTokenAddress), "Reward Token", "RWD",
	))
	testutil.SetupSale(factory.ICOHandle, testutil.OwnerAddress, 7, testutil.SaleDetails{
		Name:       "Sale Token",
		Symbol:     "SAL",
		Balance:    testutil.Wei("100"),
		Supply:     testutil.Wei("1000"),
		TokenPrice: testutil.Wei("0.01"),
		TokenAddr:  testutil.DepositTokenAddress,
	})

	service := services.NewDashboardService(
		testutil.NewMockProvider(),
		factory,
		testutil.NewMockBalanceReader(),
		testutil.ContractsConfig(),
		config.ReaderConfig{Concurrency: 2},
		logger,
	)

	r := chi.NewRouter()
	NewDashboardHandler(service, logger).RegisterRoutes(r)
	return r, factory
}

func TestDashboardHandler_GetDashboard(t *testing.T) {
	r, _ := setupDashboardHandlerTest()

	req := httptest.NewRequest(http.MethodGet, "/dashboard/"+testutil.AliceAddress, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var dashboard entities.Dashboard
	if err := json.NewDecoder(rec.Body).Decode(&dashboard); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(dashboard.Pools) != 1 {
		t.Fatalf("expected 1 pool, got %d", len(dashboard.Pools))
	}
	if dashboard.TotalDepositedAmount != 10 {
		t.Errorf("expected total 10, got %v", dashboard.TotalDepositedAmount)
	}
	if dashboard.ContractTokenBalance != "0" {
		t.Errorf("expected contract token balance 0, got %s", dashboard.ContractTokenBalance)
	}
}

func TestDashboardHandler_GetDashboard_InvalidAddress(t *testing.T) {
	r, factory := setupDashboardHandlerTest()

	req := httptest.NewRequest(http.MethodGet, "/dashboard/not-an-address", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if factory.Log.Len() != 0 {
		t.Errorf("expected no contract calls, got %v", factory.Log.Methods())
	}
}

func TestDashboardHandler_GetDashboard_ChainError(t *testing.T) {
	r, factory := setupDashboardHandlerTest()
	// without a call hook every read is answered with a chain error
	factory.Staking.CallFunc = nil

	req := httptest.NewRequest(http.MethodGet, "/dashboard/"+testutil.AliceAddress, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", rec.Code)
	}

	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestDashboardHandler_GetToken(t *testing.T) {
	r, _ := setupDashboardHandlerTest()

	req := httptest.NewRequest(http.MethodGet, "/tokens/"+testutil.DepositTokenAddress+"?holder="+testutil.StakingAddress, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var token entities.Token
	json.NewDecoder(rec.Body).Decode(&token)
	if token.Symbol != "STK" {
		t.Errorf("expected STK, got %s", token.Symbol)
	}
	if token.Balance != "10.0" {
		t.Errorf("expected balance 10.0, got %s", token.Balance)
	}
}

func TestDashboardHandler_GetToken_MissingHolder(t *testing.T) {
	r, _ := setupDashboardHandlerTest()

	req := httptest.NewRequest(http.MethodGet, "/tokens/"+testutil.DepositTokenAddress, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestDashboardHandler_GetSale(t *testing.T) {
	r, _ := setupDashboardHandlerTest()

	req := httptest.NewRequest(http.MethodGet, "/sale", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var sale entities.Sale
	json.NewDecoder(rec.Body).Decode(&sale)
	if sale.SoldTokens != 7 {
		t.Errorf("expected 7 sold tokens, got %d", sale.SoldTokens)
	}
	if sale.Token == nil {
		t.Fatal("expected sale token details with a wallet")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", contracts.Validationf("amount is required"), http.StatusBadRequest},
		{"no address", contracts.ErrNoAddress, http.StatusBadRequest},
		{"sale supply", contracts.ErrInsufficientSaleSupply, http.StatusConflict},
		{"wallet", contracts.ErrWalletNotFound, http.StatusServiceUnavailable},
		{"chain", &contracts.ChainError{Op: "deposit", Reason: "locked"}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}
