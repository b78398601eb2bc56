package solana

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"

	"github.com/hapi-protocol/hapi-core/pkg/idl"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

var customErrorRe = regexp.MustCompile(`"Custom"\s*:\s*(\d+)`)

// customErrorCode extracts an InstructionError Custom code from an RPC error payload
func customErrorCode(payload any) (uint32, bool) {
	if payload == nil {
		return 0, false
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, false
	}
	m := customErrorRe.FindSubmatch(raw)
	if m == nil {
		return 0, false
	}
	code, err := strconv.ParseUint(string(m[1]), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(code), true
}

// programError formats a transaction error returned by the program
func programError(method string, payload any) error {
	if code, ok := customErrorCode(payload); ok {
		if pe, ok := idl.LookupProgramError(code); ok {
			return types.NewError(types.KindContractRevert, "`%s` reverted with: %s (%s)", method, pe.Message, pe.Name)
		}
		return types.NewError(types.KindContractRevert, "`%s` reverted with: custom program error %d", method, code)
	}
	raw, _ := json.Marshal(payload)
	return types.NewError(types.KindContractRevert, "`%s` reverted with: %s", method, raw)
}

// mapRPCError turns an RPC failure into a ClientError
func mapRPCError(method string, err error) error {
	var ce *types.ClientError
	if errors.As(err, &ce) {
		return err
	}
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		if _, ok := customErrorCode(rpcErr.Data); ok {
			return programError(method, rpcErr.Data)
		}
		return types.NewError(types.KindProvider, "`%s` failed: %s", method, rpcErr.Message)
	}
	return types.WrapError(types.KindProvider, err, "`%s` failed", method)
}

func addressError(field string, err error) error {
	return types.WrapError(types.KindSolanaAddressParse, err, "`%s`", field)
}

func notFound(what string, key fmt.Stringer) error {
	return types.NewError(types.KindAccountNotFound, "%s %s not found", what, key)
}
