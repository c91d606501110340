package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/bimakw/staking-gateway/internal/config"
	"github.com/bimakw/staking-gateway/internal/domain/contracts"
	"github.com/bimakw/staking-gateway/internal/domain/entities"
)

// Backend is the part of the node a bound contract needs beyond bind's own interfaces
type Backend interface {
	bind.ContractCaller
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Ensure the factory and handles implement the domain interfaces
var (
	_ contracts.Factory = (*ContractFactory)(nil)
	_ contracts.Handle  = (*BoundHandle)(nil)
	_ Backend           = (*Client)(nil)
)

// ContractFactory binds the configured contracts to signers
type ContractFactory struct {
	backend    Backend
	transactor bind.ContractTransactor
	filterer   bind.ContractFilterer

	stakingManager common.Address
	ico            common.Address
	depositToken   common.Address

	stakingABI abi.ABI
	icoABI     abi.ABI
	erc20ABI   abi.ABI
}

// NewContractFactory creates a factory for the contracts in cfg
func NewContractFactory(client *Client, cfg config.ContractsConfig) (*ContractFactory, error) {
	return newContractFactory(client, client.EthClient(), client.EthClient(), cfg)
}

func newContractFactory(
	backend Backend,
	transactor bind.ContractTransactor,
	filterer bind.ContractFilterer,
	cfg config.ContractsConfig,
) (*ContractFactory, error) {
	for name, addr := range map[string]string{
		"staking manager": cfg.StakingManagerAddress,
		"token ICO":       cfg.ICOAddress,
		"deposit token":   cfg.DepositTokenAddress,
		"reward token":    cfg.RewardTokenAddress,
	} {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid %s address %q", name, addr)
		}
	}

	stakingABI, err := StakingManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse staking manager abi: %w", err)
	}
	icoABI, err := TokenICOABI()
	if err != nil {
		return nil, fmt.Errorf("parse token ico abi: %w", err)
	}
	erc20, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}

	return &ContractFactory{
		backend:        backend,
		transactor:     transactor,
		filterer:       filterer,
		stakingManager: common.HexToAddress(cfg.StakingManagerAddress),
		ico:            common.HexToAddress(cfg.ICOAddress),
		depositToken:   common.HexToAddress(cfg.DepositTokenAddress),
		stakingABI:     stakingABI,
		icoABI:         icoABI,
		erc20ABI:       erc20,
	}, nil
}

// Connect binds an address and ABI to a signer. No network call is made.
func (f *ContractFactory) Connect(address common.Address, parsed abi.ABI, signer *contracts.Signer) contracts.Handle {
	return &BoundHandle{
		address: address,
		abi:     parsed,
		bound:   bind.NewBoundContract(address, parsed, f.backend, f.transactor, f.filterer),
		backend: f.backend,
		signer:  signer,
	}
}

// StakingManager binds the staking pool manager
func (f *ContractFactory) StakingManager(signer *contracts.Signer) contracts.Handle {
	return f.Connect(f.stakingManager, f.stakingABI, signer)
}

// ICO binds the token sale contract
func (f *ContractFactory) ICO(signer *contracts.Signer) contracts.Handle {
	return f.Connect(f.ico, f.icoABI, signer)
}

// DepositToken binds the configured staking token
func (f *ContractFactory) DepositToken(signer *contracts.Signer) contracts.Handle {
	return f.Token(f.depositToken, signer)
}

// Token binds any ERC-20 token
func (f *ContractFactory) Token(address common.Address, signer *contracts.Signer) contracts.Handle {
	return f.Connect(address, f.erc20ABI, signer)
}

// BoundHandle is a contract bound to one signer
type BoundHandle struct {
	address common.Address
	abi     abi.ABI
	bound   *bind.BoundContract
	backend Backend
	signer  *contracts.Signer
}

// Address returns the contract address
func (h *BoundHandle) Address() common.Address {
	return h.address
}

// Call invokes a view method and returns its unpacked outputs
func (h *BoundHandle) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: h.from()}
	if err := h.bound.Call(opts, &out, method, args...); err != nil {
		return nil, NewChainError(method, err)
	}
	return out, nil
}

// EstimateGas estimates the gas of a state changing method
func (h *BoundHandle) EstimateGas(ctx context.Context, value *big.Int, method string, args ...interface{}) (uint64, error) {
	data, err := h.abi.Pack(method, args...)
	if err != nil {
		return 0, fmt.Errorf("pack %s: %w", method, err)
	}

	to := h.address
	gas, err := h.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  h.from(),
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return 0, NewChainError("estimateGas."+method, err)
	}
	return gas, nil
}

// Transact signs and submits a state changing method
func (h *BoundHandle) Transact(ctx context.Context, o contracts.TxOpts, method string, args ...interface{}) (contracts.PendingTx, error) {
	if h.signer == nil || h.signer.Opts == nil {
		return nil, contracts.ErrWalletNotFound
	}

	opts := *h.signer.Opts
	opts.Context = ctx
	opts.GasLimit = o.GasLimit
	opts.Value = o.Value

	tx, err := h.bound.Transact(&opts, method, args...)
	if err != nil {
		return nil, NewChainError(method, err)
	}

	return &pendingTx{tx: tx, method: method, backend: h.backend}, nil
}

func (h *BoundHandle) from() common.Address {
	if h.signer == nil {
		return common.Address{}
	}
	return h.signer.Address
}

type pendingTx struct {
	tx      *types.Transaction
	method  string
	backend Backend
}

func (p *pendingTx) Hash() common.Hash {
	return p.tx.Hash()
}

// Wait blocks until the transaction is mined. A reverted transaction is an error.
func (p *pendingTx) Wait(ctx context.Context) (*entities.Receipt, error) {
	receipt, err := p.backend.WaitMined(ctx, p.tx)
	if err != nil {
		return nil, NewChainError(p.method, err)
	}

	if receipt.Status == types.ReceiptStatusFailed {
		return nil, &contracts.ChainError{
			Op:      p.method,
			Message: fmt.Sprintf("transaction %s reverted", receipt.TxHash.Hex()),
		}
	}

	return toReceipt(receipt), nil
}

func toReceipt(r *types.Receipt) *entities.Receipt {
	out := &entities.Receipt{
		TxHash:  r.TxHash.Hex(),
		Status:  r.Status,
		GasUsed: r.GasUsed,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	return out
}
