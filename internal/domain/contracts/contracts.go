// Package contracts describes how the application talks to deployed
// contracts and to the wallet that signs for it.
package contracts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/staking-gateway/internal/domain/entities"
)

// Signer is an authenticated account able to submit transactions
type Signer struct {
	Address common.Address
	Opts    *bind.TransactOpts
}

// WalletProvider hands out signers and forwards wallet requests
type WalletProvider interface {
	// Signer returns the currently active account. It is not cached.
	Signer(ctx context.Context) (*Signer, error)

	// Request sends a wallet RPC method such as wallet_watchAsset
	Request(ctx context.Context, method string, result interface{}, params ...interface{}) error
}

// TxOpts overrides transaction fields on submission
type TxOpts struct {
	GasLimit uint64
	Value    *big.Int
}

// PendingTx is a submitted transaction
type PendingTx interface {
	Hash() common.Hash

	// Wait blocks until the transaction is mined
	Wait(ctx context.Context) (*entities.Receipt, error)
}

// Handle exposes every method of a contract ABI bound to one signer
type Handle interface {
	Address() common.Address
	Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error)
	EstimateGas(ctx context.Context, value *big.Int, method string, args ...interface{}) (uint64, error)
	Transact(ctx context.Context, opts TxOpts, method string, args ...interface{}) (PendingTx, error)
}

// Factory binds the known contracts to a signer
type Factory interface {
	Connect(address common.Address, parsed abi.ABI, signer *Signer) Handle
	StakingManager(signer *Signer) Handle
	ICO(signer *Signer) Handle
	DepositToken(signer *Signer) Handle
	Token(address common.Address, signer *Signer) Handle
}

// BalanceReader reads native coin balances
type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
}

// NotificationRecord mirrors the Notification struct of the staking manager
type NotificationRecord struct {
	PoolID    *big.Int
	Amount    *big.Int
	User      common.Address
	TypeOf    string
	TimeStamp *big.Int
}
