package services

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/staking-gateway/internal/domain/contracts"
)

// Helpers that run a view call and assert the type of its outputs

func callOutputs(ctx context.Context, h contracts.Handle, want int, method string, args ...interface{}) ([]interface{}, error) {
	out, err := h.Call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	if len(out) < want {
		return nil, fmt.Errorf("%s returned %d values, expected %d", method, len(out), want)
	}
	return out, nil
}

func callBig(ctx context.Context, h contracts.Handle, method string, args ...interface{}) (*big.Int, error) {
	out, err := callOutputs(ctx, h, 1, method, args...)
	if err != nil {
		return nil, err
	}
	return asBig(method, out[0])
}

func callString(ctx context.Context, h contracts.Handle, method string, args ...interface{}) (string, error) {
	out, err := callOutputs(ctx, h, 1, method, args...)
	if err != nil {
		return "", err
	}
	s, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("%s: unexpected output type %T", method, out[0])
	}
	return s, nil
}

func callAddress(ctx context.Context, h contracts.Handle, method string, args ...interface{}) (common.Address, error) {
	out, err := callOutputs(ctx, h, 1, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(method, out[0])
}

func callDecimals(ctx context.Context, h contracts.Handle) (int32, error) {
	out, err := callOutputs(ctx, h, 1, "decimals")
	if err != nil {
		return 0, err
	}
	switch v := out[0].(type) {
	case uint8:
		return int32(v), nil
	case *big.Int:
		return int32(v.Int64()), nil
	}
	return 0, fmt.Errorf("decimals: unexpected output type %T", out[0])
}

func asBig(method string, v interface{}) (*big.Int, error) {
	b, ok := v.(*big.Int)
	if !ok || b == nil {
		return nil, fmt.Errorf("%s: unexpected output type %T", method, v)
	}
	return b, nil
}

func asAddress(method string, v interface{}) (common.Address, error) {
	a, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: unexpected output type %T", method, v)
	}
	return a, nil
}

// asNotifications converts the decoded getNotifications tuple array
func asNotifications(v interface{}) (records []contracts.NotificationRecord, err error) {
	if r, ok := v.([]contracts.NotificationRecord); ok {
		return r, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("getNotifications: cannot decode %T: %v", v, r)
		}
	}()
	converted := abi.ConvertType(v, new([]contracts.NotificationRecord))
	return *converted.(*[]contracts.NotificationRecord), nil
}

func parseAddress(field, value string) (common.Address, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return common.Address{}, contracts.Validationf("%s is required", field)
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, contracts.Validationf("%s %q is not an address", field, value)
	}
	return common.HexToAddress(value), nil
}

func parseInteger(field, value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, contracts.Validationf("%s is required", field)
	}
	n, ok := new(big.Int).SetString(value, 10)
	if !ok || n.Sign() < 0 {
		return nil, contracts.Validationf("%s %q is not a non-negative integer", field, value)
	}
	return n, nil
}
