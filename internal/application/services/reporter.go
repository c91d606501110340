package services

import (
	"errors"
	"strings"

	"github.com/bimakw/staking-gateway/internal/domain/contracts"
)

// FallbackMessage is shown when a failure carries no usable message
const FallbackMessage = "Something went wrong, please try again."

// ReportError turns a failure into a message for the user. It prefers the
// revert reason, then the wrapped cause, then the top level message.
func ReportError(err error) (msg string) {
	defer func() {
		if recover() != nil {
			msg = FallbackMessage
		}
	}()

	if err == nil {
		return FallbackMessage
	}

	var chainErr *contracts.ChainError
	if errors.As(err, &chainErr) {
		if chainErr == nil {
			return FallbackMessage
		}
		if chainErr.Reason != "" {
			return chainErr.Reason
		}
		if chainErr.Err != nil {
			if m := strings.TrimSpace(chainErr.Err.Error()); m != "" {
				return m
			}
		}
		if chainErr.Message != "" {
			return chainErr.Message
		}
		return FallbackMessage
	}

	if m := strings.TrimSpace(err.Error()); m != "" {
		return m
	}
	return FallbackMessage
}

// ShortenAddress abbreviates an address for display
func ShortenAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:8] + " ... " + address[len(address)-4:]
}
