package wallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// HardenedOffset marks a hardened child index
const HardenedOffset uint32 = 0x80000000

// SLIP-0044 coin types
const (
	CoinTypeEther  uint32 = 60
	CoinTypeNear   uint32 = 397
	CoinTypeSolana uint32 = 501
)

// DerivationPath is a BIP-32 path, hardened indexes carrying HardenedOffset
type DerivationPath []uint32

// DefaultDerivationPath is the path wallets of the backend use for the first account
func DefaultDerivationPath(backend types.Backend) DerivationPath {
	h := HardenedOffset
	switch backend {
	case types.BackendSolana:
		return DerivationPath{44 + h, CoinTypeSolana + h, 0 + h, 0 + h}
	case types.BackendNear:
		return DerivationPath{44 + h, CoinTypeNear + h, 0 + h}
	default:
		return DerivationPath{44 + h, CoinTypeEther + h, 0 + h, 0, 0}
	}
}

// ParseDerivationPath parses "m/44'/60'/0'/0/0"; ', h and H mark hardened indexes
func ParseDerivationPath(path string) (DerivationPath, error) {
	path = strings.TrimSpace(path)
	rest, ok := strings.CutPrefix(path, "m")
	if !ok {
		rest, ok = strings.CutPrefix(path, "M")
	}
	if !ok {
		return nil, fmt.Errorf("invalid derivation path %q: must start with m", path)
	}
	if rest == "" {
		return DerivationPath{}, nil
	}
	rest, ok = strings.CutPrefix(rest, "/")
	if !ok {
		return nil, fmt.Errorf("invalid derivation path %q", path)
	}

	parts := strings.Split(rest, "/")
	dp := make(DerivationPath, 0, len(parts))
	for i, part := range parts {
		index, err := parsePathComponent(part)
		if err != nil {
			return nil, fmt.Errorf("invalid derivation path %q: component %d: %w", path, i+1, err)
		}
		dp = append(dp, index)
	}
	return dp, nil
}

func parsePathComponent(component string) (uint32, error) {
	trimmed := strings.TrimRight(component, "'hH")
	hardened := trimmed != component
	if len(component)-len(trimmed) > 1 {
		return 0, fmt.Errorf("malformed index %q", component)
	}
	value, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed index %q", component)
	}
	if uint32(value) >= HardenedOffset {
		return 0, fmt.Errorf("index %q out of range", component)
	}
	if hardened {
		return uint32(value) + HardenedOffset, nil
	}
	return uint32(value), nil
}

// String renders the path in the m/44'/60'/... form
func (dp DerivationPath) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, index := range dp {
		b.WriteByte('/')
		if index >= HardenedOffset {
			b.WriteString(strconv.FormatUint(uint64(index-HardenedOffset), 10))
			b.WriteByte('\'')
		} else {
			b.WriteString(strconv.FormatUint(uint64(index), 10))
		}
	}
	return b.String()
}

// AllHardened reports whether every index is hardened, as ed25519 derivation requires
func (dp DerivationPath) AllHardened() bool {
	for _, index := range dp {
		if index < HardenedOffset {
			return false
		}
	}
	return true
}
