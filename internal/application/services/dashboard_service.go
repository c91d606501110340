package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/staking-gateway/internal/config"
	"github.com/bimakw/staking-gateway/internal/domain/contracts"
	"github.com/bimakw/staking-gateway/internal/domain/entities"
	"github.com/bimakw/staking-gateway/internal/units"
)

var tracer = otel.Tracer("github.com/bimakw/staking-gateway/internal/application/services")

// DashboardService assembles view models from contract reads
type DashboardService struct {
	provider    contracts.WalletProvider
	factory     contracts.Factory
	balances    contracts.BalanceReader
	contracts   config.ContractsConfig
	concurrency int
	logger      *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	provider contracts.WalletProvider,
	factory contracts.Factory,
	balances contracts.BalanceReader,
	contractsCfg config.ContractsConfig,
	readerCfg config.ReaderConfig,
	logger *zap.Logger,
) *DashboardService {
	concurrency := readerCfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &DashboardService{
		provider:    provider,
		factory:     factory,
		balances:    balances,
		contracts:   contractsCfg,
		concurrency: concurrency,
		logger:      logger,
	}
}

// readSigner returns the active signer, or nil when reads run without a wallet
func (s *DashboardService) readSigner(ctx context.Context) (*contracts.Signer, error) {
	if s.provider == nil {
		return nil, nil
	}
	signer, err := s.provider.Signer(ctx)
	if errors.Is(err, contracts.ErrWalletNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get signer: %w", err)
	}
	return signer, nil
}

// LoadToken reads an ERC-20 token as seen by holder
func (s *DashboardService) LoadToken(ctx context.Context, address, holder string) (*entities.Token, error) {
	tokenAddr, err := parseAddress("token address", address)
	if err != nil {
		return nil, err
	}
	holderAddr, err := parseAddress("holder address", holder)
	if err != nil {
		return nil, err
	}

	signer, err := s.readSigner(ctx)
	if err != nil {
		return nil, err
	}

	token, err := s.loadToken(ctx, signer, tokenAddr, holderAddr)
	if err != nil {
		s.logger.Error("Failed to load token",
			zap.String("token", tokenAddr.Hex()),
			zap.Error(err),
		)
		return nil, err
	}
	return token, nil
}

func (s *DashboardService) loadToken(ctx context.Context, signer *contracts.Signer, address, holder common.Address) (*entities.Token, error) {
	h := s.factory.Token(address, signer)
	staking := common.HexToAddress(s.contracts.StakingManagerAddress)

	var (
		name, symbol                     string
		decimals                         int32
		supply, balance, contractBalance *big.Int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		name, err = callString(gCtx, h, "name")
		return err
	})
	g.Go(func() (err error) {
		symbol, err = callString(gCtx, h, "symbol")
		return err
	})
	g.Go(func() (err error) {
		decimals, err = callDecimals(gCtx, h)
		return err
	})
	g.Go(func() (err error) {
		supply, err = callBig(gCtx, h, "totalSupply")
		return err
	})
	g.Go(func() (err error) {
		balance, err = callBig(gCtx, h, "balanceOf", holder)
		return err
	})
	g.Go(func() (err error) {
		contractBalance, err = callBig(gCtx, h, "balanceOf", staking)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load token %s: %w", address.Hex(), err)
	}

	return &entities.Token{
		Name:                 name,
		Symbol:               symbol,
		Address:              address.Hex(),
		Decimals:             int(decimals),
		TotalSupply:          units.ToDecimal(supply, decimals),
		Balance:              units.ToDecimal(balance, decimals),
		ContractTokenBalance: units.ToDecimal(contractBalance, decimals),
	}, nil
}

// tokenCache shares token reads between the pools of one dashboard load
type tokenCache struct {
	mu      sync.Mutex
	entries map[common.Address]*tokenEntry
	load    func(ctx context.Context, address common.Address) (*entities.Token, error)
}

type tokenEntry struct {
	once  sync.Once
	token *entities.Token
	err   error
}

func newTokenCache(load func(ctx context.Context, address common.Address) (*entities.Token, error)) *tokenCache {
	return &tokenCache{
		entries: make(map[common.Address]*tokenEntry),
		load:    load,
	}
}

func (c *tokenCache) get(ctx context.Context, address common.Address) (*entities.Token, error) {
	c.mu.Lock()
	e, ok := c.entries[address]
	if !ok {
		e = &tokenEntry{}
		c.entries[address] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.token, e.err = c.load(ctx, address)
	})
	return e.token, e.err
}

// LoadDashboard reads every pool, the caller's positions and the activity log
func (s *DashboardService) LoadDashboard(ctx context.Context, userAddress string) (dashboard *entities.Dashboard, err error) {
	ctx, span := tracer.Start(ctx, "dashboard.load")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if strings.TrimSpace(userAddress) == "" {
		return nil, contracts.ErrNoAddress
	}
	user, err := parseAddress("user address", userAddress)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user", user.Hex()))

	dashboard, err = s.loadDashboard(ctx, user)
	if err != nil {
		s.logger.Error("Failed to load dashboard",
			zap.String("user", user.Hex()),
			zap.Error(err),
		)
		return nil, err
	}
	return dashboard, nil
}

func (s *DashboardService) loadDashboard(ctx context.Context, user common.Address) (*entities.Dashboard, error) {
	signer, err := s.readSigner(ctx)
	if err != nil {
		return nil, err
	}
	staking := s.factory.StakingManager(signer)

	var (
		owner     common.Address
		records   []contracts.NotificationRecord
		poolCount *big.Int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		owner, err = callAddress(gCtx, staking, "owner")
		return err
	})
	g.Go(func() error {
		out, err := callOutputs(gCtx, staking, 1, "getNotifications")
		if err != nil {
			return err
		}
		records, err = asNotifications(out[0])
		return err
	})
	g.Go(func() (err error) {
		poolCount, err = callBig(gCtx, staking, "poolCount")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read staking manager: %w", err)
	}
	if !poolCount.IsInt64() || poolCount.Sign() < 0 {
		return nil, fmt.Errorf("unexpected pool count %s", poolCount)
	}

	tokens := newTokenCache(func(ctx context.Context, address common.Address) (*entities.Token, error) {
		return s.loadToken(ctx, signer, address, user)
	})

	pools := make([]entities.Pool, poolCount.Int64())
	var rewardToken, depositToken *entities.Token

	g, gCtx = errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range pools {
		i := i
		g.Go(func() error {
			pool, err := s.loadPool(gCtx, staking, tokens, int64(i), user)
			if err != nil {
				return fmt.Errorf("failed to load pool %d: %w", i, err)
			}
			pools[i] = *pool
			return nil
		})
	}
	g.Go(func() (err error) {
		rewardToken, err = tokens.get(gCtx, common.HexToAddress(s.contracts.RewardTokenAddress))
		return err
	})
	g.Go(func() (err error) {
		depositToken, err = tokens.get(gCtx, common.HexToAddress(s.contracts.DepositTokenAddress))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, p := range pools {
		amount, err := units.Parse(p.DepositedAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid deposited amount %q: %w", p.DepositedAmount, err)
		}
		total = total.Add(amount)
	}

	contractBalance, err := units.Parse(depositToken.ContractTokenBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid contract balance %q: %w", depositToken.ContractTokenBalance, err)
	}

	notifications := make([]entities.Notification, len(records))
	for i, r := range records {
		// newest first
		notifications[len(records)-1-i] = toNotification(r)
	}

	return &entities.Dashboard{
		ContractOwner:        strings.ToLower(owner.Hex()),
		ContractAddress:      staking.Address().Hex(),
		Notifications:        notifications,
		Pools:                pools,
		TotalDepositedAmount: total.InexactFloat64(),
		RewardToken:          rewardToken,
		DepositToken:         depositToken,
		ContractTokenBalance: contractBalance.Sub(total).String(),
	}, nil
}

func (s *DashboardService) loadPool(
	ctx context.Context,
	staking contracts.Handle,
	tokens *tokenCache,
	index int64,
	user common.Address,
) (*entities.Pool, error) {
	pid := big.NewInt(index)

	info, err := callOutputs(ctx, staking, 5, "poolInfo", pid)
	if err != nil {
		return nil, err
	}
	depositAddr, err := asAddress("poolInfo", info[0])
	if err != nil {
		return nil, err
	}
	rewardAddr, err := asAddress("poolInfo", info[1])
	if err != nil {
		return nil, err
	}
	deposited, err := asBig("poolInfo", info[2])
	if err != nil {
		return nil, err
	}
	apy, err := asBig("poolInfo", info[3])
	if err != nil {
		return nil, err
	}
	lockDays, err := asBig("poolInfo", info[4])
	if err != nil {
		return nil, err
	}

	var (
		position                  []interface{}
		reward                    *big.Int
		depositToken, rewardToken *entities.Token
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		position, err = callOutputs(gCtx, staking, 3, "userInfo", pid, user)
		return err
	})
	g.Go(func() (err error) {
		reward, err = callBig(gCtx, staking, "pendingReward", pid, user)
		return err
	})
	g.Go(func() (err error) {
		depositToken, err = tokens.get(gCtx, depositAddr)
		return err
	})
	g.Go(func() (err error) {
		rewardToken, err = tokens.get(gCtx, rewardAddr)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	userAmount, err := asBig("userInfo", position[0])
	if err != nil {
		return nil, err
	}
	lastRewardAt, err := asBig("userInfo", position[1])
	if err != nil {
		return nil, err
	}
	lockUntil, err := asBig("userInfo", position[2])
	if err != nil {
		return nil, err
	}

	return &entities.Pool{
		DepositTokenAddress: depositAddr.Hex(),
		RewardTokenAddress:  rewardAddr.Hex(),
		DepositToken:        depositToken,
		RewardToken:         rewardToken,
		DepositedAmount:     units.ToDecimal(deposited, int32(depositToken.Decimals)),
		APY:                 apy.String(),
		LockDays:            lockDays.String(),
		UserAmount:          units.ToDecimal(userAmount, int32(depositToken.Decimals)),
		UserReward:          units.ToDecimal(reward, int32(rewardToken.Decimals)),
		LockUntil:           units.FormatTimestamp(lockUntil.Uint64()),
		LastRewardAt:        units.ToDecimal(lastRewardAt, units.DefaultDecimals),
	}, nil
}

func toNotification(r contracts.NotificationRecord) entities.Notification {
	n := entities.Notification{
		Amount: units.ToDecimal(r.Amount, units.DefaultDecimals),
		User:   r.User.Hex(),
		TypeOf: r.TypeOf,
	}
	if r.PoolID != nil {
		n.PoolID = r.PoolID.Int64()
	}
	if r.TimeStamp != nil {
		n.TimeStamp = units.FormatTimestamp(r.TimeStamp.Uint64())
	}
	return n
}

// LoadSale reads the token sale state. Token details for the signer are
// included when a wallet is available.
func (s *DashboardService) LoadSale(ctx context.Context) (sale *entities.Sale, err error) {
	ctx, span := tracer.Start(ctx, "sale.load")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	sale, err = s.loadSale(ctx)
	if err != nil {
		s.logger.Error("Failed to load sale", zap.Error(err))
		return nil, err
	}
	return sale, nil
}

func (s *DashboardService) loadSale(ctx context.Context) (*entities.Sale, error) {
	signer, err := s.readSigner(ctx)
	if err != nil {
		return nil, err
	}
	ico := s.factory.ICO(signer)

	var (
		details saleDetails
		owner   common.Address
		sold    *big.Int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		details, err = readSaleDetails(gCtx, ico)
		return err
	})
	g.Go(func() (err error) {
		owner, err = callAddress(gCtx, ico, "owner")
		return err
	})
	g.Go(func() (err error) {
		sold, err = callBig(gCtx, ico, "soldTokens")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read token sale: %w", err)
	}

	sale := &entities.Sale{
		TokenBalance: units.ToDecimal(details.balance, units.DefaultDecimals),
		Name:         details.name,
		Symbol:       details.symbol,
		Supply:       units.ToDecimal(details.supply, units.DefaultDecimals),
		TokenPrice:   units.ToDecimal(details.price, units.DefaultDecimals),
		TokenAddress: details.token.Hex(),
		Owner:        strings.ToLower(owner.Hex()),
		SoldTokens:   sold.Int64(),
	}

	if signer != nil {
		token, err := s.loadSaleToken(ctx, signer, details.token)
		if err != nil {
			return nil, err
		}
		sale.Token = token
	}
	return sale, nil
}

func (s *DashboardService) loadSaleToken(ctx context.Context, signer *contracts.Signer, address common.Address) (*entities.SaleToken, error) {
	h := s.factory.Token(address, signer)

	var (
		name, symbol            string
		decimals                int32
		supply, balance, native *big.Int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		name, err = callString(gCtx, h, "name")
		return err
	})
	g.Go(func() (err error) {
		symbol, err = callString(gCtx, h, "symbol")
		return err
	})
	g.Go(func() (err error) {
		decimals, err = callDecimals(gCtx, h)
		return err
	})
	g.Go(func() (err error) {
		supply, err = callBig(gCtx, h, "totalSupply")
		return err
	})
	g.Go(func() (err error) {
		balance, err = callBig(gCtx, h, "balanceOf", signer.Address)
		return err
	})
	g.Go(func() (err error) {
		native, err = s.balances.BalanceAt(gCtx, signer.Address)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load sale token %s: %w", address.Hex(), err)
	}

	return &entities.SaleToken{
		Address:       address.Hex(),
		Name:          name,
		Symbol:        symbol,
		Decimals:      int(decimals),
		Supply:        units.ToDecimal(supply, decimals),
		Balance:       units.ToDecimal(balance, decimals),
		NativeBalance: units.ToDecimal(native, units.DefaultDecimals),
	}, nil
}

type saleDetails struct {
	name    string
	symbol  string
	balance *big.Int
	supply  *big.Int
	price   *big.Int
	token   common.Address
}

func readSaleDetails(ctx context.Context, ico contracts.Handle) (saleDetails, error) {
	out, err := callOutputs(ctx, ico, 6, "getTokenDetails")
	if err != nil {
		return saleDetails{}, err
	}

	var d saleDetails
	var ok bool
	if d.name, ok = out[0].(string); !ok {
		return saleDetails{}, fmt.Errorf("getTokenDetails: unexpected name type %T", out[0])
	}
	if d.symbol, ok = out[1].(string); !ok {
		return saleDetails{}, fmt.Errorf("getTokenDetails: unexpected symbol type %T", out[1])
	}
	if d.balance, err = asBig("getTokenDetails", out[2]); err != nil {
		return saleDetails{}, err
	}
	if d.supply, err = asBig("getTokenDetails", out[3]); err != nil {
		return saleDetails{}, err
	}
	if d.price, err = asBig("getTokenDetails", out[4]); err != nil {
		return saleDetails{}, err
	}
	if d.token, err = asAddress("getTokenDetails", out[5]); err != nil {
		return saleDetails{}, err
	}
	return d, nil
}
