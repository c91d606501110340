package services

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bimakw/staking-gateway/internal/config"
	"github.com/bimakw/staking-gateway/internal/domain/contracts"
	"github.com/bimakw/staking-gateway/internal/domain/entities"
	"github.com/bimakw/staking-gateway/internal/testutil"
)

const lockUntil = 1705314600 // 01/15/2024, 10:30:00 UTC

func testPools() []testutil.PoolRecord {
	return []testutil.PoolRecord{
		{
			DepositToken:    testutil.DepositTokenAddress,
			RewardToken:     testutil.RewardTokenAddress,
			DepositedAmount: testutil.Wei("100"),
			APY:             10,
			LockDays:        30,
			UserAmount:      testutil.Wei("5"),
			LastRewardAt:    big.NewInt(lockUntil),
			LockUntil:       lockUntil,
			PendingReward:   testutil.Wei("0.25"),
		},
		{
			DepositToken:    testutil.DepositTokenAddress,
			RewardToken:     testutil.RewardTokenAddress,
			DepositedAmount: testutil.Wei("150.5"),
			APY:             20,
			LockDays:        90,
		},
	}
}

func notificationRecord(typeOf string, ts int64) contracts.NotificationRecord {
	return contracts.NotificationRecord{
		PoolID:    big.NewInt(0),
		Amount:    testutil.Wei("1"),
		User:      common.HexToAddress(testutil.AliceAddress),
		TypeOf:    typeOf,
		TimeStamp: big.NewInt(ts),
	}
}

func setupDashboardTest(pools []testutil.PoolRecord, notifications []contracts.NotificationRecord) (*DashboardService, *testutil.MockFactory, *testutil.MockProvider, *testutil.MockBalanceReader) {
	factory := testutil.NewMockFactory()
	provider := testutil.NewMockProvider()
	balances := testutil.NewMockBalanceReader()

	testutil.SetupStaking(factory.Staking, testutil.OwnerAddress, pools, notifications)
	testutil.SetupToken(factory.DepositTok, "Stake Token", "STK",
		testutil.TokenWithBalance(testutil.AliceAddress, testutil.Wei("50")),
		testutil.TokenWithBalance(testutil.StakingAddress, testutil.Wei("300")),
	)
	factory.AddToken(testutil.SetupToken(
		testutil.NewMockHandle(factory.Log, "reward", testutil.RewardTokenAddress), "Reward Token", "RWD",
		testutil.TokenWithBalance(testutil.StakingAddress, testutil.Wei("1000")),
	))

	service := NewDashboardService(
		provider,
		factory,
		balances,
		testutil.ContractsConfig(),
		config.ReaderConfig{Concurrency: 2},
		zap.NewNop(),
	)
	return service, factory, provider, balances
}

func TestDashboardService_LoadDashboard(t *testing.T) {
	service, _, _, _ := setupDashboardTest(testPools(), nil)

	dashboard, err := service.LoadDashboard(context.Background(), testutil.AliceAddress)
	require.NoError(t, err)

	require.Len(t, dashboard.Pools, 2)
	assert.Equal(t, "10", dashboard.Pools[0].APY)
	assert.Equal(t, "20", dashboard.Pools[1].APY)
	assert.Equal(t, "100.0", dashboard.Pools[0].DepositedAmount)
	assert.Equal(t, "150.5", dashboard.Pools[1].DepositedAmount)
	assert.Equal(t, 250.5, dashboard.TotalDepositedAmount)

	first := dashboard.Pools[0]
	assert.Equal(t, "30", first.LockDays)
	assert.Equal(t, "5.0", first.UserAmount)
	assert.Equal(t, "0.25", first.UserReward)
	assert.Equal(t, "01/15/2024, 10:30:00", first.LockUntil)
	assert.Equal(t, "0.0000000017053146", first.LastRewardAt)
	assert.Equal(t, "STK", first.DepositToken.Symbol)
	assert.Equal(t, "RWD", first.RewardToken.Symbol)
	assert.Equal(t, "50.0", first.DepositToken.Balance)

	assert.Equal(t, strings.ToLower(testutil.OwnerAddress), dashboard.ContractOwner)
	assert.Equal(t, common.HexToAddress(testutil.StakingAddress).Hex(), dashboard.ContractAddress)
	assert.Equal(t, "RWD", dashboard.RewardToken.Symbol)
	assert.Equal(t, "300.0", dashboard.DepositToken.ContractTokenBalance)
	assert.Equal(t, "49.5", dashboard.ContractTokenBalance)
}

func TestDashboardService_LoadDashboard_NotificationsNewestFirst(t *testing.T) {
	notifications := []contracts.NotificationRecord{
		notificationRecord("A", lockUntil),
		notificationRecord("B", lockUntil+60),
		notificationRecord("C", lockUntil+120),
	}
	service, _, _, _ := setupDashboardTest(testPools(), notifications)

	dashboard, err := service.LoadDashboard(context.Background(), testutil.AliceAddress)
	require.NoError(t, err)

	require.Len(t, dashboard.Notifications, 3)
	assert.Equal(t, "C", dashboard.Notifications[0].TypeOf)
	assert.Equal(t, "B", dashboard.Notifications[1].TypeOf)
	assert.Equal(t, "A", dashboard.Notifications[2].TypeOf)
	assert.Equal(t, "01/15/2024, 10:30:00", dashboard.Notifications[2].TimeStamp)
	assert.Equal(t, "1.0", dashboard.Notifications[0].Amount)
}

func TestDashboardService_LoadDashboard_ZeroPools(t *testing.T) {
	service, _, _, _ := setupDashboardTest(nil, nil)

	dashboard, err := service.LoadDashboard(context.Background(), testutil.AliceAddress)
	require.NoError(t, err)

	assert.Empty(t, dashboard.Pools)
	assert.Equal(t, 0.0, dashboard.TotalDepositedAmount)
	assert.Equal(t, "300", dashboard.ContractTokenBalance)
}

func TestDashboardService_LoadDashboard_NoAddress(t *testing.T) {
	service, factory, _, _ := setupDashboardTest(testPools(), nil)

	_, err := service.LoadDashboard(context.Background(), "")
	assert.ErrorIs(t, err, contracts.ErrNoAddress)
	assert.Equal(t, 0, factory.Log.Len())

	_, err = service.LoadDashboard(context.Background(), "0x1234")
	assert.ErrorIs(t, err, contracts.ErrValidation)
	assert.Equal(t, 0, factory.Log.Len())
}

func TestDashboardService_LoadDashboard_ReadFailureAborts(t *testing.T) {
	service, factory, _, _ := setupDashboardTest(testPools(), nil)

	next := factory.Staking.CallFunc
	factory.Staking.CallFunc = func(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
		if method == "pendingReward" && args[0].(*big.Int).Int64() == 1 {
			return nil, &contracts.ChainError{Op: method, Reason: "pool paused"}
		}
		return next(ctx, method, args...)
	}

	dashboard, err := service.LoadDashboard(context.Background(), testutil.AliceAddress)
	assert.Nil(t, dashboard)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrContractCall)
	assert.Equal(t, "pool paused", ReportError(err))
}

func TestDashboardService_LoadDashboard_TokenReadOncePerPass(t *testing.T) {
	service, factory, _, _ := setupDashboardTest(testPools(), nil)

	_, err := service.LoadDashboard(context.Background(), testutil.AliceAddress)
	require.NoError(t, err)
	assert.Equal(t, 1, factory.Log.Count("deposit.call:name"))
	assert.Equal(t, 1, factory.Log.Count("reward.call:name"))

	_, err = service.LoadDashboard(context.Background(), testutil.AliceAddress)
	require.NoError(t, err)
	assert.Equal(t, 2, factory.Log.Count("deposit.call:name"), "tokens must not be cached across passes")
}

func TestDashboardService_LoadDashboard_WithoutWallet(t *testing.T) {
	service, factory, provider, _ := setupDashboardTest(testPools(), nil)
	provider.SignerFunc = func(ctx context.Context) (*contracts.Signer, error) {
		return nil, contracts.ErrWalletNotFound
	}

	dashboard, err := service.LoadDashboard(context.Background(), testutil.AliceAddress)
	require.NoError(t, err)
	assert.Len(t, dashboard.Pools, 2)
	assert.Nil(t, factory.Signers[0])
}

func TestDashboardService_LoadToken(t *testing.T) {
	service, factory, _, _ := setupDashboardTest(nil, nil)
	usdc := "0x3000000000000000000000000000000000000006"
	factory.AddToken(testutil.SetupToken(
		testutil.NewMockHandle(factory.Log, "usdc", usdc), "USD Coin", "USDC",
		testutil.TokenWithDecimals(6),
		testutil.TokenWithSupply(big.NewInt(5_000_000_000)),
		testutil.TokenWithBalance(testutil.BobAddress, big.NewInt(1_500_000)),
	))

	token, err := service.LoadToken(context.Background(), usdc, testutil.BobAddress)
	require.NoError(t, err)

	assert.Equal(t, "USDC", token.Symbol)
	assert.Equal(t, 6, token.Decimals)
	assert.Equal(t, "5000.0", token.TotalSupply)
	assert.Equal(t, "1.5", token.Balance)
	assert.Equal(t, "0.0", token.ContractTokenBalance)
	assert.Equal(t, common.HexToAddress(usdc).Hex(), token.Address)
}

func TestDashboardService_LoadToken_InvalidHolder(t *testing.T) {
	service, _, _, _ := setupDashboardTest(nil, nil)

	_, err := service.LoadToken(context.Background(), testutil.DepositTokenAddress, "bob")
	assert.ErrorIs(t, err, contracts.ErrValidation)
}

func TestDashboardService_LoadSale(t *testing.T) {
	service, factory, _, balances := setupDashboardTest(nil, nil)
	testutil.SetupSale(factory.ICOHandle, testutil.OwnerAddress, 42, testutil.SaleDetails{
		Name:       "Sale Token",
		Symbol:     "SALE",
		Balance:    testutil.Wei("5000"),
		Supply:     testutil.Wei("10000"),
		TokenPrice: testutil.Wei("0.001"),
		TokenAddr:  testutil.SaleTokenAddress,
	})
	factory.AddToken(testutil.SetupToken(
		testutil.NewMockHandle(factory.Log, "sale", testutil.SaleTokenAddress), "Sale Token", "SALE",
		testutil.TokenWithBalance(testutil.AliceAddress, testutil.Wei("12")),
	))
	balances.Balances[common.HexToAddress(testutil.AliceAddress)] = testutil.Wei("2.5")

	sale, err := service.LoadSale(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "5000.0", sale.TokenBalance)
	assert.Equal(t, "10000.0", sale.Supply)
	assert.Equal(t, "0.001", sale.TokenPrice)
	assert.Equal(t, int64(42), sale.SoldTokens)
	assert.Equal(t, strings.ToLower(testutil.OwnerAddress), sale.Owner)
	assert.Equal(t, common.HexToAddress(testutil.SaleTokenAddress).Hex(), sale.TokenAddress)

	require.NotNil(t, sale.Token)
	assert.Equal(t, "12.0", sale.Token.Balance)
	assert.Equal(t, "2.5", sale.Token.NativeBalance)
	assert.Equal(t, 18, sale.Token.Decimals)
}

func TestDashboardService_LoadSale_WithoutWallet(t *testing.T) {
	service, factory, provider, _ := setupDashboardTest(nil, nil)
	provider.SignerFunc = func(ctx context.Context) (*contracts.Signer, error) {
		return nil, contracts.ErrWalletNotFound
	}
	testutil.SetupSale(factory.ICOHandle, testutil.OwnerAddress, 0, testutil.SaleDetails{
		Name:      "Sale Token",
		Symbol:    "SALE",
		TokenAddr: testutil.SaleTokenAddress,
	})

	sale, err := service.LoadSale(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sale.Token)
	assert.Equal(t, "0.0", sale.TokenBalance)
}

func TestToNotification(t *testing.T) {
	n := toNotification(contracts.NotificationRecord{
		PoolID: big.NewInt(3),
		Amount: testutil.Wei("2.5"),
		TypeOf: "Deposit",
	})

	assert.Equal(t, entities.Notification{
		PoolID: 3,
		Amount: "2.5",
		User:   common.Address{}.Hex(),
		TypeOf: "Deposit",
	}, n)
}
