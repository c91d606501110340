package contracts

import (
	"errors"
	"fmt"
)

var (
	// ErrWalletNotFound means no wallet provider or key is available
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrNoAddress means a per-account view was requested without an account
	ErrNoAddress = errors.New("no address provided")

	// ErrValidation means required action input is missing or malformed
	ErrValidation = errors.New("validation error")

	// ErrContractCall means a read or write was rejected by the chain or transport
	ErrContractCall = errors.New("contract call failed")

	// ErrInsufficientSaleSupply means the sale contract has too few tokens left
	ErrInsufficientSaleSupply = errors.New("no token available for sale")
)

// ChainError is the normalised form of every failure coming back from the
// node or wallet
type ChainError struct {
	// Op is the contract method or RPC call that failed
	Op string
	// Reason is the decoded revert reason, if the node returned one
	Reason string
	// Message is the top level message of the failure
	Message string
	Err     error
}

func (e *ChainError) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("%s reverted: %s", e.Op, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	default:
		return fmt.Sprintf("%s failed", e.Op)
	}
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// Is makes every ChainError match ErrContractCall
func (e *ChainError) Is(target error) bool {
	return target == ErrContractCall
}

// Validationf builds an ErrValidation with a message
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
