package ethereum

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/bimakw/staking-gateway/internal/domain/contracts"
)

const revertPrefix = "execution reverted: "

// NewChainError normalises a node or transport failure. Errors that are
// already normalised are returned unchanged.
func NewChainError(op string, err error) error {
	if err == nil {
		return nil
	}

	var chainErr *contracts.ChainError
	if errors.As(err, &chainErr) {
		return err
	}

	return &contracts.ChainError{
		Op:      op,
		Reason:  revertReason(err),
		Message: err.Error(),
		Err:     err,
	}
}

// revertReason extracts the Error(string) reason from JSON-RPC error data,
// falling back to the reason embedded in the node message
func revertReason(err error) string {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if hexData, ok := dataErr.ErrorData().(string); ok {
			if data, decErr := hexutil.Decode(hexData); decErr == nil {
				if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return reason
				}
			}
		}
	}

	msg := err.Error()
	if i := strings.Index(msg, revertPrefix); i >= 0 {
		return strings.TrimSpace(msg[i+len(revertPrefix):])
	}
	return ""
}
