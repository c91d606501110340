package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bimakw/staking-gateway/internal/config"
)

// Client wraps the Ethereum client with retry logic and call throttling
type Client struct {
	rpcClient *rpc.Client
	client    *ethclient.Client
	config    config.EthereumConfig
	limiter   *rate.Limiter
	logger    *zap.Logger
	chainID   *big.Int
}

// NewClient creates a new Ethereum client
func NewClient(cfg config.EthereumConfig, logger *zap.Logger) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryDelay
	retryClient.RetryWaitMax = 5 * cfg.RetryDelay
	retryClient.HTTPClient.Timeout = cfg.RequestTimeout
	retryClient.Logger = nil

	rpcClient, err := rpc.DialOptions(ctx, cfg.RPCURL, rpc.WithHTTPClient(retryClient.StandardClient()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum node: %w", err)
	}
	client := ethclient.NewClient(rpcClient)

	chainID, err := client.ChainID(ctx)
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	if chainID.Int64() != cfg.ChainID {
		rpcClient.Close()
		return nil, fmt.Errorf("chain ID mismatch: expected %d, got %d", cfg.ChainID, chainID.Int64())
	}

	logger.Info("Connected to Ethereum node",
		zap.String("rpc_url", cfg.RPCURL),
		zap.Int64("chain_id", chainID.Int64()),
	)

	return &Client{
		rpcClient: rpcClient,
		client:    client,
		config:    cfg,
		limiter:   newLimiter(cfg.CallsPerSecond),
		logger:    logger,
		chainID:   chainID,
	}, nil
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Close closes the Ethereum client connection
func (c *Client) Close() {
	c.rpcClient.Close()
}

// CallContract executes an eth_call. Reverts are returned at once, transport
// failures are retried.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var out []byte
	err := c.withRetry(ctx, "eth_call", func() error {
		var err error
		out, err = c.client.CallContract(ctx, msg, blockNumber)
		return err
	})
	return out, err
}

// CodeAt returns the contract code at the given account
func (c *Client) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	var out []byte
	err := c.withRetry(ctx, "eth_getCode", func() error {
		var err error
		out, err = c.client.CodeAt(ctx, account, blockNumber)
		return err
	})
	return out, err
}

// EstimateGas estimates the gas needed by msg. It is not retried since a
// failed estimate is almost always a revert.
func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return c.client.EstimateGas(ctx, msg)
}

// BalanceAt returns the native balance of an account at the latest block
func (c *Client) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	var out *big.Int
	err := c.withRetry(ctx, "eth_getBalance", func() error {
		var err error
		out, err = c.client.BalanceAt(ctx, account, nil)
		return err
	})
	return out, err
}

// WaitMined blocks until tx is included in a block
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, c.client, tx)
}

// Request sends a raw JSON-RPC request
func (c *Client) Request(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	return c.rpcClient.CallContext(ctx, result, method, params...)
}

// HealthCheck checks that the node answers
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.client.BlockNumber(ctx)
	return err
}

// ChainID returns the chain ID
func (c *Client) ChainID() *big.Int {
	return c.chainID
}

// EthClient returns the underlying ethclient for advanced operations
func (c *Client) EthClient() *ethclient.Client {
	return c.client
}

func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error

	for i := 0; i <= c.config.MaxRetries; i++ {
		if err = c.limiter.Wait(ctx); err != nil {
			return err
		}

		err = fn()
		if err == nil || !isRetryable(err) {
			return err
		}

		c.logger.Warn("RPC request failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", i+1),
			zap.Error(err),
		)

		if i < c.config.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}
	}

	return fmt.Errorf("%s failed after %d retries: %w", op, c.config.MaxRetries, err)
}

// isRetryable reports whether err came from the transport rather than
// from contract execution
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		return false
	}
	var rpcErr rpc.Error
	return !errors.As(err, &rpcErr)
}
