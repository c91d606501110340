package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/bimakw/staking-gateway/internal/config"
	"github.com/bimakw/staking-gateway/internal/domain/contracts"
	"github.com/bimakw/staking-gateway/internal/domain/entities"
	"github.com/bimakw/staking-gateway/internal/units"
)

// Action names carried by phase events
const (
	ActionDeposit            = "deposit"
	ActionWithdraw           = "withdraw"
	ActionClaimReward        = "claimReward"
	ActionCreatePool         = "createPool"
	ActionModifyPool         = "modifyPool"
	ActionSweep              = "sweep"
	ActionTransferToken      = "transferToken"
	ActionAddTokenToWallet   = "addTokenToWallet"
	ActionBuyToken           = "buyToken"
	ActionWithdrawAllTokens  = "withdrawAllTokens"
	ActionUpdateTokenAddress = "updateTokenAddress"
	ActionUpdateTokenPrice   = "updateTokenPrice"
	ActionCopyAddress        = "copyAddress"
)

const watchAssetMethod = "wallet_watchAsset"

// minSaleBalance is the remaining sale balance, in whole tokens, at or
// below which buying is refused
var minSaleBalance = decimal.NewFromInt(1)

// TransactionService sequences approve, estimate, submit and confirm for
// every mutating action and reports each phase to the notifier
type TransactionService struct {
	provider  contracts.WalletProvider
	factory   contracts.Factory
	notifier  Notifier
	contracts config.ContractsConfig
	logger    *zap.Logger
	newID     func() string
	now       func() time.Time
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	provider contracts.WalletProvider,
	factory contracts.Factory,
	notifier Notifier,
	contractsCfg config.ContractsConfig,
	logger *zap.Logger,
) *TransactionService {
	if notifier == nil {
		notifier = MultiNotifier{}
	}
	return &TransactionService{
		provider:  provider,
		factory:   factory,
		notifier:  notifier,
		contracts: contractsCfg,
		logger:    logger,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// action tracks one run of a mutating action
type action struct {
	svc  *TransactionService
	ctx  context.Context
	id   string
	name string
}

func (a *action) emit(phase entities.Phase, message, txHash string) {
	a.svc.notifier.Notify(a.ctx, entities.PhaseEvent{
		ActionID: a.id,
		Action:   a.name,
		Phase:    phase,
		Message:  message,
		TxHash:   txHash,
		At:       a.svc.now().UTC(),
	})
}

// signer acquires a fresh signer for the action
func (a *action) signer() (*contracts.Signer, error) {
	if a.svc.provider == nil {
		return nil, contracts.ErrWalletNotFound
	}
	return a.svc.provider.Signer(a.ctx)
}

// send estimates gas when asked, submits the call and waits for it
func (a *action) send(h contracts.Handle, value *big.Int, estimate bool, method string, args ...interface{}) (*entities.Receipt, error) {
	var gasLimit uint64
	if estimate {
		a.emit(entities.PhaseEstimating, "Estimating gas for "+method, "")
		gas, err := h.EstimateGas(a.ctx, value, method, args...)
		if err != nil {
			return nil, err
		}
		gasLimit = gas
	}

	tx, err := h.Transact(a.ctx, contracts.TxOpts{GasLimit: gasLimit, Value: value}, method, args...)
	if err != nil {
		return nil, err
	}
	a.emit(entities.PhaseSubmitted, "Transaction submitted", tx.Hash().Hex())

	return tx.Wait(a.ctx)
}

// run wraps fn with the started, confirmed and failed phases
func (s *TransactionService) run(
	ctx context.Context,
	name, success string,
	fn func(a *action) (*entities.Receipt, error),
) (*entities.Receipt, error) {
	ctx, span := tracer.Start(ctx, "tx."+name)
	defer span.End()

	a := &action{svc: s, ctx: ctx, id: s.newID(), name: name}
	span.SetAttributes(attribute.String("action_id", a.id))
	a.emit(entities.PhaseStarted, "Calling contract ...", "")

	receipt, err := fn(a)
	if err != nil {
		msg := ReportError(err)
		s.logger.Error("Action failed",
			zap.String("action", name),
			zap.String("action_id", a.id),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)

		s.notifier.Notify(ctx, entities.PhaseEvent{
			ActionID: a.id,
			Action:   name,
			Phase:    entities.PhaseFailed,
			Message:  msg,
			Error:    err.Error(),
			At:       s.now().UTC(),
		})
		return nil, err
	}

	var txHash string
	if receipt != nil {
		txHash = receipt.TxHash
		span.SetAttributes(attribute.String("tx_hash", txHash))
	}
	a.emit(entities.PhaseConfirmed, success, txHash)
	return receipt, nil
}

func parseAmount(field, amount string, decimals int32) (*big.Int, error) {
	if strings.TrimSpace(amount) == "" {
		return nil, contracts.Validationf("%s is required", field)
	}
	n, err := units.ToBaseUnits(amount, decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", contracts.ErrValidation, field, err)
	}
	return n, nil
}

// Deposit stakes amount into a pool, approving the staking manager first
// when the allowance of user is too low
func (s *TransactionService) Deposit(ctx context.Context, poolID uint64, amount, user string) (*entities.Receipt, error) {
	return s.run(ctx, ActionDeposit, "Token staked successfully.", func(a *action) (*entities.Receipt, error) {
		amountWei, err := parseAmount("amount", amount, units.DefaultDecimals)
		if err != nil {
			return nil, err
		}

		signer, err := a.signer()
		if err != nil {
			return nil, err
		}

		owner := signer.Address
		if strings.TrimSpace(user) != "" {
			if owner, err = parseAddress("user address", user); err != nil {
				return nil, err
			}
		}

		staking := s.factory.StakingManager(signer)
		token := s.factory.DepositToken(signer)

		allowance, err := callBig(a.ctx, token, "allowance", owner, staking.Address())
		if err != nil {
			return nil, err
		}

		if allowance.Cmp(amountWei) < 0 {
			a.emit(entities.PhaseApproving, "Approving token ...", "")
			tx, err := token.Transact(a.ctx, contracts.TxOpts{}, "approve", staking.Address(), amountWei)
			if err != nil {
				return nil, err
			}
			if _, err := tx.Wait(a.ctx); err != nil {
				return nil, err
			}
			a.emit(entities.PhaseApproved, "Token approved", tx.Hash().Hex())
		}

		return a.send(staking, nil, true, "deposit", new(big.Int).SetUint64(poolID), amountWei)
	})
}

// Withdraw takes amount out of a pool
func (s *TransactionService) Withdraw(ctx context.Context, poolID uint64, amount string) (*entities.Receipt, error) {
	return s.run(ctx, ActionWithdraw, "Token withdrawn successfully.", func(a *action) (*entities.Receipt, error) {
		amountWei, err := parseAmount("amount", amount, units.DefaultDecimals)
		if err != nil {
			return nil, err
		}

		signer, err := a.signer()
		if err != nil {
			return nil, err
		}

		staking := s.factory.StakingManager(signer)
		return a.send(staking, nil, true, "withdraw", new(big.Int).SetUint64(poolID), amountWei)
	})
}

// ClaimReward claims the pending reward of a pool
func (s *TransactionService) ClaimReward(ctx context.Context, poolID uint64) (*entities.Receipt, error) {
	return s.run(ctx, ActionClaimReward, "Reward claimed successfully.", func(a *action) (*entities.Receipt, error) {
		signer, err := a.signer()
		if err != nil {
			return nil, err
		}

		staking := s.factory.StakingManager(signer)
		return a.send(staking, nil, true, "claimReward", new(big.Int).SetUint64(poolID))
	})
}

// CreatePool adds a staking pool. All parameters are required.
func (s *TransactionService) CreatePool(ctx context.Context, params entities.PoolParams) (*entities.Receipt, error) {
	return s.run(ctx, ActionCreatePool, "Pool created successfully.", func(a *action) (*entities.Receipt, error) {
		if strings.TrimSpace(params.DepositToken) == "" || strings.TrimSpace(params.RewardToken) == "" ||
			strings.TrimSpace(params.APY) == "" || strings.TrimSpace(params.LockDays) == "" {
			return nil, contracts.Validationf("please provide all the details")
		}

		depositToken, err := parseAddress("deposit token", params.DepositToken)
		if err != nil {
			return nil, err
		}
		rewardToken, err := parseAddress("reward token", params.RewardToken)
		if err != nil {
			return nil, err
		}
		apy, err := parseInteger("apy", params.APY)
		if err != nil {
			return nil, err
		}
		lockDays, err := parseInteger("lock days", params.LockDays)
		if err != nil {
			return nil, err
		}

		signer, err := a.signer()
		if err != nil {
			return nil, err
		}

		staking := s.factory.StakingManager(signer)
		return a.send(staking, nil, true, "addPool", depositToken, rewardToken, apy, lockDays)
	})
}

// ModifyPool changes the APY of a pool
func (s *TransactionService) ModifyPool(ctx context.Context, poolID uint64, apy string) (*entities.Receipt, error) {
	return s.run(ctx, ActionModifyPool, "Pool modified successfully.", func(a *action) (*entities.Receipt, error) {
		newAPY, err := parseInteger("apy", apy)
		if err != nil {
			return nil, err
		}

		signer, err := a.signer()
		if err != nil {
			return nil, err
		}

		staking := s.factory.StakingManager(signer)
		return a.send(staking, nil, true, "modifyPool", new(big.Int).SetUint64(poolID), newAPY)
	})
}

// Sweep moves tokens held by the staking manager to its owner
func (s *TransactionService) Sweep(ctx context.Context, params entities.SweepParams) (*entities.Receipt, error) {
	return s.run(ctx, ActionSweep, "Transaction completed successfully.", func(a *action) (*entities.Receipt, error) {
		if strings.TrimSpace(params.Token) == "" || strings.TrimSpace(params.Amount) == "" {
			return nil, contracts.Validationf("data is missing")
		}

		token, err := parseAddress("token", params.Token)
		if err != nil {
			return nil, err
		}
		amountWei, err := parseAmount("amount", params.Amount, units.DefaultDecimals)
		if err != nil {
			return nil, err
		}

		signer, err := a.signer()
		if err != nil {
			return nil, err
		}

		staking := s.factory.StakingManager(signer)
		return a.send(staking, nil, true, "sweep", token, amountWei)
	})
}

// TransferToken sends deposit tokens to another account
func (s *TransactionService) TransferToken(ctx context.Context, amount, to string) (*entities.Receipt, error) {
	return s.run(ctx, ActionTransferToken, "Token transferred successfully.", func(a *action) (*entities.Receipt, error) {
		amountWei, err := parseAmount("amount", amount, units.DefaultDecimals)
		if err != nil {
			return nil, err
		}
		recipient, err := parseAddress("recipient", to)
		if err != nil {
			return nil, err
		}

		signer, err := a.signer()
		if err != nil {
			return nil, err
		}

		token := s.factory.DepositToken(signer)
		return a.send(token, nil, false, "transfer", recipient, amountWei)
	})
}

// AddTokenToWallet asks the wallet to display the deposit token
func (s *TransactionService) AddTokenToWallet(ctx context.Context) (*entities.WatchAssetRequest, error) {
	var req *entities.WatchAssetRequest

	_, err := s.run(ctx, ActionAddTokenToWallet, "Token added to wallet successfully.", func(a *action) (*entities.Receipt, error) {
		signer, err := a.signer()
		if err != nil {
			return nil, err
		}

		token := s.factory.DepositToken(signer)

		symbol, err := callString(a.ctx, token, "symbol")
		if err != nil {
			return nil, err
		}
		decimals, err := callDecimals(a.ctx, token)
		if err != nil {
			return nil, err
		}

		req = &entities.WatchAssetRequest{
			Type: "ERC20",
			Options: entities.WatchAssetOptions{
				Address:  token.Address().Hex(),
				Symbol:   symbol,
				Decimals: int(decimals),
				Image:    s.contracts.TokenLogoURL,
			},
		}

		var added bool
		if err := s.provider.Request(a.ctx, watchAssetMethod, &added, req); err != nil {
			return nil, fmt.Errorf("failed to add token to wallet: %w", err)
		}
		if !added {
			return nil, errors.New("failed to add token to wallet")
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ensureSaleSupply reads the sale state and refuses to continue when the
// remaining balance is too low
func ensureSaleSupply(ctx context.Context, ico contracts.Handle) (saleDetails, error) {
	details, err := readSaleDetails(ctx, ico)
	if err != nil {
		return saleDetails{}, err
	}

	available := decimal.NewFromBigInt(details.balance, -units.DefaultDecimals)
	if available.LessThanOrEqual(minSaleBalance) {
		return saleDetails{}, contracts.ErrInsufficientSaleSupply
	}
	return details, nil
}

// BuyToken buys quantity whole tokens from the sale, paying price times
// quantity in the native coin
func (s *TransactionService) BuyToken(ctx context.Context, quantity string) (*entities.Receipt, error) {
	return s.run(ctx, ActionBuyToken, "Tokens bought successfully.", func(a *action) (*entities.Receipt, error) {
		qty, err := parseInteger("quantity", quantity)
		if err != nil {
			return nil, err
		}
		if qty.Sign() == 0 {
			return nil, contracts.Validationf("quantity must be positive")
		}

		signer, err := a.signer()
		if err != nil {
			return nil, err
		}

		ico := s.factory.ICO(signer)
		details, err := ensureSaleSupply(a.ctx, ico)
		if err != nil {
			return nil, err
		}

		price := decimal.NewFromBigInt(details.price, -units.DefaultDecimals)
		total := price.Mul(decimal.NewFromBigInt(qty, 0))
		value, err := units.ToBaseUnits(total.String(), units.DefaultDecimals)
		if err != nil {
			return nil, fmt.Errorf("failed to compute payment: %w", err)
		}

		return a.send(ico, value, true, "buyToken", qty)
	})
}

// WithdrawAllTokens returns the unsold tokens to the sale owner
func (s *TransactionService) WithdrawAllTokens(ctx context.Context) (*entities.Receipt, error) {
	return s.run(ctx, ActionWithdrawAllTokens, "Tokens withdrawn successfully.", func(a *action) (*entities.Receipt, error) {
		signer, err := a.signer()
		if err != nil {
			return nil, err
		}

		ico := s.factory.ICO(signer)
		if _, err := ensureSaleSupply(a.ctx, ico); err != nil {
			return nil, err
		}

		return a.send(ico, nil, true, "withdrawAllTokens")
	})
}

// UpdateTokenAddress points the sale at another token
func (s *TransactionService) UpdateTokenAddress(ctx context.Context, address string) (*entities.Receipt, error) {
	return s.run(ctx, ActionUpdateTokenAddress, "Transaction completed successfully.", func(a *action) (*entities.Receipt, error) {
		token, err := parseAddress("token address", address)
		if err != nil {
			return nil, err
		}

		signer, err := a.signer()
		if err != nil {
			return nil, err
		}

		ico := s.factory.ICO(signer)
		return a.send(ico, nil, true, "updateToken", token)
	})
}

// UpdateTokenPrice sets the sale price, given in whole native coins
func (s *TransactionService) UpdateTokenPrice(ctx context.Context, price string) (*entities.Receipt, error) {
	return s.run(ctx, ActionUpdateTokenPrice, "Transaction completed successfully.", func(a *action) (*entities.Receipt, error) {
		priceWei, err := parseAmount("price", price, units.DefaultDecimals)
		if err != nil {
			return nil, err
		}

		signer, err := a.signer()
		if err != nil {
			return nil, err
		}

		ico := s.factory.ICO(signer)
		return a.send(ico, nil, true, "updateTokenSalePrice", priceWei)
	})
}

// CopyAddress returns the checksummed form of address and reports it as copied
func (s *TransactionService) CopyAddress(ctx context.Context, address string) (string, error) {
	var checksummed string

	_, err := s.run(ctx, ActionCopyAddress, "Copied successfully.", func(a *action) (*entities.Receipt, error) {
		addr, err := parseAddress("address", address)
		if err != nil {
			return nil, err
		}
		checksummed = addr.Hex()
		return nil, nil
	})
	if err != nil {
		return "", err
	}
	return checksummed, nil
}
