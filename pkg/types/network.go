package types

import "strings"

// Network names a deployment target
type Network string

const (
	NetworkSepolia  Network = "sepolia"
	NetworkEthereum Network = "ethereum"
	NetworkBSC      Network = "bsc"
	NetworkSolana   Network = "solana"
	NetworkBitcoin  Network = "bitcoin"
	NetworkNear     Network = "near"
)

// Backend is the chain family serving a network
type Backend int

const (
	BackendEVM Backend = iota
	BackendSolana
	BackendNear
)

// Networks lists every supported network
var Networks = []Network{NetworkSepolia, NetworkEthereum, NetworkBSC, NetworkSolana, NetworkBitcoin, NetworkNear}

var defaultContractAddresses = map[Network]string{
	NetworkEthereum: "0x0DCd1Bf9A1b36cE34237eEaFef220932846BCD82",
	NetworkBSC:      "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0",
	NetworkSolana:   "hapiAwBQLYRXrjGn6FLCgC8FpQd2yWbKMqS6AYZ48g6",
	NetworkBitcoin:  "hapiAwBQLYRXrjGn6FLCgC8FpQd2yWbKMqS6AYZ48g6",
	NetworkNear:     "core.hapiprotocol.near",
}

// ParseNetwork parses a network name
func ParseNetwork(s string) (Network, error) {
	n := Network(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Networks {
		if n == known {
			return n, nil
		}
	}
	return "", NewError(KindInvalidData, "unknown network %q", s)
}

func (n Network) String() string { return string(n) }

// Backend returns the chain family serving the network
func (n Network) Backend() Backend {
	switch n {
	case NetworkSolana, NetworkBitcoin:
		return BackendSolana
	case NetworkNear:
		return BackendNear
	default:
		return BackendEVM
	}
}

// Schema returns the address schema of the network
func (n Network) Schema() NetworkSchema {
	switch n {
	case NetworkSolana:
		return SchemaSolana
	case NetworkBitcoin:
		return SchemaBitcoin
	case NetworkNear:
		return SchemaNear
	default:
		return SchemaEthereum
	}
}

// DefaultContractAddress returns the canonical deployment, if known
func (n Network) DefaultContractAddress() (string, bool) {
	addr, ok := defaultContractAddresses[n]
	return addr, ok
}

// Seed returns the network name padded to 32 bytes, as used by PDA seeds
func (n Network) Seed() [32]byte {
	var out [32]byte
	copy(out[:], n)
	return out
}
