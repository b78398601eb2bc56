package evm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// LogEvent is a decoded contract log
type LogEvent struct {
	Name      types.EventName
	EventName string // name in the contract ABI
	Args      []any  // argument values in declaration order
	ArgNames  []string
}

// Arg returns the named argument
func (e LogEvent) Arg(name string) (any, bool) {
	for i, n := range e.ArgNames {
		if n == name {
			return e.Args[i], true
		}
	}
	return nil, false
}

// ID returns the reporter or case id carried by the event
func (e LogEvent) ID() (types.UUID, error) {
	v, ok := e.Arg("id")
	if !ok {
		return types.NilUUID, types.NewError(types.KindInvalidData, "%s carries no id", e.EventName)
	}
	n, ok := v.(*big.Int)
	if !ok {
		return types.NilUUID, types.NewError(types.KindInvalidData, "%s: id is %T", e.EventName, v)
	}
	return types.UUIDFromBig(n)
}

// Address returns the checksummed addr argument
func (e LogEvent) Address() (string, error) {
	v, ok := e.Arg("addr")
	if !ok {
		return "", types.NewError(types.KindInvalidData, "%s carries no address", e.EventName)
	}
	addr, ok := v.(common.Address)
	if !ok {
		return "", types.NewError(types.KindInvalidData, "%s: addr is %T", e.EventName, v)
	}
	return addr.Hex(), nil
}

// AssetID returns the decimal assetId argument
func (e LogEvent) AssetID() (string, error) {
	v, ok := e.Arg("assetId")
	if !ok {
		return "", types.NewError(types.KindInvalidData, "%s carries no asset id", e.EventName)
	}
	n, ok := v.(*big.Int)
	if !ok {
		return "", types.NewError(types.KindInvalidData, "%s: assetId is %T", e.EventName, v)
	}
	return n.String(), nil
}

// DecodeLog matches a log against the contract events
func DecodeLog(log ethtypes.Log) (LogEvent, error) {
	if len(log.Topics) == 0 {
		return LogEvent{}, types.NewError(types.KindInvalidData, "log has no topics")
	}
	event, err := hapiCoreABI.EventByID(log.Topics[0])
	if err != nil {
		return LogEvent{}, types.WrapError(types.KindInvalidData, err, "unknown event %s", log.Topics[0].Hex())
	}
	name, err := types.ParseEventName(event.Name)
	if err != nil {
		return LogEvent{}, err
	}

	values := make(map[string]any, len(event.Inputs))
	if len(log.Data) > 0 {
		if err := event.Inputs.UnpackIntoMap(values, log.Data); err != nil {
			return LogEvent{}, types.WrapError(types.KindInvalidData, err, "decode %s data", event.Name)
		}
	}
	var indexed abi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if len(indexed) > 0 {
		if err := abi.ParseTopicsIntoMap(values, indexed, log.Topics[1:]); err != nil {
			return LogEvent{}, types.WrapError(types.KindInvalidData, err, "decode %s topics", event.Name)
		}
	}

	out := LogEvent{Name: name, EventName: event.Name}
	for _, arg := range event.Inputs {
		v, ok := values[arg.Name]
		if !ok {
			return LogEvent{}, types.NewError(types.KindInvalidData, "%s: missing argument %s", event.Name, arg.Name)
		}
		out.ArgNames = append(out.ArgNames, arg.Name)
		out.Args = append(out.Args, v)
	}
	return out, nil
}

// String renders the event for logs
func (e LogEvent) String() string {
	return fmt.Sprintf("%s%v", e.EventName, e.Args)
}
