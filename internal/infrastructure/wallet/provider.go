package wallet

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/bimakw/staking-gateway/internal/config"
	"github.com/bimakw/staking-gateway/internal/domain/contracts"
)

const (
	methodAccounts        = "eth_accounts"
	methodRequestAccounts = "eth_requestAccounts"
	methodWatchAsset      = "wallet_watchAsset"
)

// Requester sends raw JSON-RPC requests to the node
type Requester interface {
	Request(ctx context.Context, result interface{}, method string, params ...interface{}) error
}

// Ensure KeyProvider implements WalletProvider
var _ contracts.WalletProvider = (*KeyProvider)(nil)

// KeyProvider is a wallet backed by a single private key
type KeyProvider struct {
	key     *ecdsa.PrivateKey
	chainID *big.Int
	node    Requester
	logger  *zap.Logger
}

// NewKeyProvider creates a provider from the configured key. An empty key
// gives a provider whose Signer always fails with ErrWalletNotFound.
func NewKeyProvider(cfg config.WalletConfig, chainID *big.Int, node Requester, logger *zap.Logger) (*KeyProvider, error) {
	p := &KeyProvider{
		chainID: chainID,
		node:    node,
		logger:  logger,
	}

	raw := strings.TrimPrefix(strings.TrimSpace(cfg.PrivateKey), "0x")
	if raw == "" {
		logger.Warn("No wallet key configured, transactions are disabled")
		return p, nil
	}

	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse wallet key: %w", err)
	}
	p.key = key

	logger.Info("Wallet loaded", zap.String("address", crypto.PubkeyToAddress(key.PublicKey).Hex()))
	return p, nil
}

// Signer builds a fresh transactor for the key on every call
func (p *KeyProvider) Signer(ctx context.Context) (*contracts.Signer, error) {
	if p == nil || p.key == nil {
		return nil, contracts.ErrWalletNotFound
	}

	opts, err := bind.NewKeyedTransactorWithChainID(p.key, p.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx

	return &contracts.Signer{Address: opts.From, Opts: opts}, nil
}

// Request answers account and asset methods locally and forwards the rest
// to the node
func (p *KeyProvider) Request(ctx context.Context, method string, result interface{}, params ...interface{}) error {
	if p == nil || p.key == nil {
		return contracts.ErrWalletNotFound
	}

	switch method {
	case methodAccounts, methodRequestAccounts:
		address := crypto.PubkeyToAddress(p.key.PublicKey).Hex()
		return assign(result, []string{address})
	case methodWatchAsset:
		// A key wallet has no asset list to update, so the request is accepted as is.
		p.logger.Info("Asset registered with wallet", zap.Any("params", params))
		return assign(result, true)
	}

	if p.node == nil {
		return fmt.Errorf("method %s not supported without a node", method)
	}
	return p.node.Request(ctx, result, method, params...)
}

// assign copies v into result the way the rpc client decodes responses
func assign(result interface{}, v interface{}) error {
	if result == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, result)
}
