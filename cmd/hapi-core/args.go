package main

import (
	"strconv"

	"github.com/hapi-protocol/hapi-core/pkg/types"
)

const (
	defaultSkip = 0
	defaultTake = 10
)

func parseUint(field, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, types.WrapError(types.KindInvalidData, err, "`%s`: %q is not an unsigned integer", field, s)
	}
	return v, nil
}

func parseRisk(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, types.WrapError(types.KindInvalidData, err, "`risk`: %q is not a number", s)
	}
	risk := uint8(v)
	return risk, types.ValidateRisk(risk)
}

func parseAmount(field, s string) (types.Amount, error) {
	amount, err := types.ParseAmount(s)
	if err != nil {
		return types.Amount{}, types.WrapError(types.KindInvalidData, err, "`%s`", field)
	}
	return amount, nil
}

func parseID(field, s string) (types.UUID, error) {
	id, err := types.ParseUUID(s)
	if err != nil {
		return types.UUID{}, types.WrapError(types.KindUUID, err, "`%s`", field)
	}
	return id, nil
}

// parsePage reads the optional [skip] [take] list arguments
func parsePage(args []string) (skip, take uint64, err error) {
	skip, take = defaultSkip, defaultTake
	if len(args) > 0 {
		if skip, err = parseUint("skip", args[0]); err != nil {
			return 0, 0, err
		}
	}
	if len(args) > 1 {
		if take, err = parseUint("take", args[1]); err != nil {
			return 0, 0, err
		}
	}
	return skip, take, nil
}
