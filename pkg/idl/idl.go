// Package idl holds the on-chain program descriptors: EVM ABIs, Solana account
// layouts and sizes, instruction names and program error codes.
package idl

import (
	"crypto/sha256"
	_ "embed"
	"fmt"
)

// HapiCoreABI is the EVM HapiCore contract ABI
//
//go:embed abi/hapi_core.json
var HapiCoreABI string

// ERC20ABI is the ABI of the stake and reward token
//
//go:embed abi/erc20.json
var ERC20ABI string

// DiscriminatorLength is the Anchor discriminator prefix size
const DiscriminatorLength = 8

// Discriminator is an 8-byte Anchor type tag
type Discriminator [DiscriminatorLength]byte

// AccountDiscriminator returns sha256("account:<Name>")[:8]
func AccountDiscriminator(name string) Discriminator {
	return hashPrefix("account:" + name)
}

// InstructionSighash returns sha256("global:<name>")[:8]
func InstructionSighash(name string) Discriminator {
	return hashPrefix("global:" + name)
}

func hashPrefix(preimage string) Discriminator {
	sum := sha256.Sum256([]byte(preimage))
	var d Discriminator
	copy(d[:], sum[:DiscriminatorLength])
	return d
}

func (d Discriminator) String() string {
	return fmt.Sprintf("%x", d[:])
}

// InstructionNames lists the program instructions in declaration order
var InstructionNames = []string{
	"create_network",
	"update_stake_configuration",
	"update_reward_configuration",
	"set_authority",
	"create_reporter",
	"update_reporter",
	"activate_reporter",
	"deactivate_reporter",
	"unstake",
	"create_case",
	"update_case",
	"create_address",
	"update_address",
	"confirm_address",
	"create_asset",
	"update_asset",
	"confirm_asset",
}

// InstructionIndex finds the instruction whose sighash prefixes data
func InstructionIndex(data []byte) (int, bool) {
	if len(data) < DiscriminatorLength {
		return 0, false
	}
	for i, name := range InstructionNames {
		if InstructionSighash(name) == Discriminator(data[:DiscriminatorLength]) {
			return i, true
		}
	}
	return 0, false
}
