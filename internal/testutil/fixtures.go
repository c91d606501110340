package testutil

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/staking-gateway/internal/config"
	"github.com/bimakw/staking-gateway/internal/domain/contracts"
	"github.com/bimakw/staking-gateway/internal/units"
)

// Common test addresses
const (
	StakingAddress      = "0x1000000000000000000000000000000000000001"
	ICOAddress          = "0x1000000000000000000000000000000000000002"
	DepositTokenAddress = "0x1000000000000000000000000000000000000003"
	RewardTokenAddress  = "0x1000000000000000000000000000000000000004"
	SaleTokenAddress    = "0x1000000000000000000000000000000000000005"
	AliceAddress        = "0x1111111111111111111111111111111111111111"
	BobAddress          = "0x2222222222222222222222222222222222222222"
	OwnerAddress        = "0xAbCdEf0000000000000000000000000000000001"
	LogoURL             = "https://example.com/logo.png"
)

// ContractsConfig returns a configuration pointing at the test addresses
func ContractsConfig() config.ContractsConfig {
	return config.ContractsConfig{
		StakingManagerAddress: StakingAddress,
		ICOAddress:            ICOAddress,
		DepositTokenAddress:   DepositTokenAddress,
		RewardTokenAddress:    RewardTokenAddress,
		TokenLogoURL:          LogoURL,
	}
}

// Wei converts a decimal amount to 18 decimal base units
func Wei(amount string) *big.Int {
	return units.MustBaseUnits(amount, units.DefaultDecimals)
}

// TokenOption customises a token handle
type TokenOption func(*tokenState)

type tokenState struct {
	name     string
	symbol   string
	decimals uint8
	supply   *big.Int
	balances map[common.Address]*big.Int
}

func TokenWithDecimals(decimals uint8) TokenOption {
	return func(s *tokenState) {
		s.decimals = decimals
	}
}

func TokenWithSupply(supply *big.Int) TokenOption {
	return func(s *tokenState) {
		s.supply = supply
	}
}

// TokenWithBalance sets the balance of holder
func TokenWithBalance(holder string, balance *big.Int) TokenOption {
	return func(s *tokenState) {
		s.balances[common.HexToAddress(holder)] = balance
	}
}

// SetupToken makes h answer the ERC-20 views. Unknown holders have a zero
// balance and the allowance is unlimited unless Results overrides it.
func SetupToken(h *MockHandle, name, symbol string, opts ...TokenOption) *MockHandle {
	s := &tokenState{
		name:     name,
		symbol:   symbol,
		decimals: 18,
		supply:   Wei("1000000"),
		balances: make(map[common.Address]*big.Int),
	}
	for _, opt := range opts {
		opt(s)
	}

	h.CallFunc = func(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
		if out, ok := h.Results[method]; ok {
			return out, nil
		}
		switch method {
		case "name":
			return []interface{}{s.name}, nil
		case "symbol":
			return []interface{}{s.symbol}, nil
		case "decimals":
			return []interface{}{s.decimals}, nil
		case "totalSupply":
			return []interface{}{s.supply}, nil
		case "balanceOf":
			holder := args[0].(common.Address)
			if b, ok := s.balances[holder]; ok {
				return []interface{}{b}, nil
			}
			return []interface{}{big.NewInt(0)}, nil
		}
		return nil, &contracts.ChainError{Op: method, Message: fmt.Sprintf("unexpected call %s on %s", method, h.Name)}
	}
	return h
}

// PoolRecord is the raw on-chain state of one pool and the caller position
type PoolRecord struct {
	DepositToken    string
	RewardToken     string
	DepositedAmount *big.Int
	APY             int64
	LockDays        int64
	UserAmount      *big.Int
	LastRewardAt    *big.Int
	LockUntil       int64
	PendingReward   *big.Int
}

// SetupStaking makes h answer the staking manager views for the given pools
func SetupStaking(h *MockHandle, owner string, pools []PoolRecord, notifications []contracts.NotificationRecord) *MockHandle {
	h.CallFunc = func(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
		if out, ok := h.Results[method]; ok {
			return out, nil
		}
		switch method {
		case "owner":
			return []interface{}{common.HexToAddress(owner)}, nil
		case "poolCount":
			return []interface{}{big.NewInt(int64(len(pools)))}, nil
		case "getNotifications":
			return []interface{}{notifications}, nil
		}

		idx := int(args[0].(*big.Int).Int64())
		if idx >= len(pools) {
			return nil, &contracts.ChainError{Op: method, Reason: "invalid pool"}
		}
		p := pools[idx]
		switch method {
		case "poolInfo":
			return []interface{}{
				common.HexToAddress(p.DepositToken),
				common.HexToAddress(p.RewardToken),
				orZero(p.DepositedAmount),
				big.NewInt(p.APY),
				big.NewInt(p.LockDays),
			}, nil
		case "userInfo":
			return []interface{}{orZero(p.UserAmount), orZero(p.LastRewardAt), big.NewInt(p.LockUntil)}, nil
		case "pendingReward":
			return []interface{}{orZero(p.PendingReward)}, nil
		}
		return nil, &contracts.ChainError{Op: method, Message: "unexpected call"}
	}
	return h
}

// SaleDetails is the raw getTokenDetails output
type SaleDetails struct {
	Name       string
	Symbol     string
	Balance    *big.Int
	Supply     *big.Int
	TokenPrice *big.Int
	TokenAddr  string
}

// SetupSale makes h answer the token sale views
func SetupSale(h *MockHandle, owner string, sold int64, d SaleDetails) *MockHandle {
	h.Results["getTokenDetails"] = []interface{}{
		d.Name, d.Symbol, orZero(d.Balance), orZero(d.Supply), orZero(d.TokenPrice), common.HexToAddress(d.TokenAddr),
	}
	h.Results["tokenAddress"] = []interface{}{common.HexToAddress(d.TokenAddr)}
	h.Results["owner"] = []interface{}{common.HexToAddress(owner)}
	h.Results["soldTokens"] = []interface{}{big.NewInt(sold)}
	return h
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
