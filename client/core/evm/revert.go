package evm

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// revertData extracts the revert payload carried by an RPC error
func revertData(err error) ([]byte, bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return nil, false
	}
	switch data := dataErr.ErrorData().(type) {
	case string:
		raw, decodeErr := hexutil.Decode(data)
		if decodeErr != nil {
			return nil, false
		}
		return raw, true
	case []byte:
		return data, true
	default:
		return nil, false
	}
}

// DecodeRevert renders revert data as a human readable reason
func DecodeRevert(data []byte) string {
	if reason, err := abi.UnpackRevert(data); err == nil {
		return reason
	}
	if len(data) >= 4 {
		for name, customErr := range hapiCoreABI.Errors {
			if !bytes.Equal(customErr.ID[:4], data[:4]) {
				continue
			}
			args, err := customErr.Unpack(data)
			if err != nil {
				return name
			}
			return formatCustomError(name, args)
		}
	}
	payload := data
	if len(payload) >= 4 {
		payload = payload[4:]
	}
	if len(payload) > 64 {
		payload = payload[64:]
	}
	return printable(string(payload))
}

func formatCustomError(name string, args any) string {
	values, ok := args.([]any)
	if !ok || len(values) == 0 {
		return name
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
}

func printable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// mapContractError converts a call or transaction error into a ClientError
func mapContractError(caller string, err error) error {
	if err == nil {
		return nil
	}
	var clientErr *types.ClientError
	if errors.As(err, &clientErr) {
		return err
	}
	if data, ok := revertData(err); ok {
		return types.NewError(types.KindContractRevert, "`%s` reverted with: %s", caller, DecodeRevert(data))
	}
	// nodes without revert data still report the reason in the message
	if msg := err.Error(); strings.Contains(msg, "execution reverted") {
		reason := strings.TrimSpace(strings.TrimPrefix(msg[strings.Index(msg, "execution reverted"):], "execution reverted"))
		reason = strings.TrimSpace(strings.TrimPrefix(reason, ":"))
		return types.NewError(types.KindContractRevert, "`%s` reverted with: %s", caller, reason)
	}
	return types.WrapError(types.KindProvider, err, "`%s` failed", caller)
}
