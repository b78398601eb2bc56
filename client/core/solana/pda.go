package solana

import (
	"github.com/gagliardetto/solana-go"

	"github.com/hapi-protocol/hapi-core/pkg/idl"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// FindNetworkAddress derives the network PDA from the network name
func FindNetworkAddress(programID solana.PublicKey, network types.Network) (solana.PublicKey, uint8, error) {
	name := network.Seed()
	return solana.FindProgramAddress([][]byte{[]byte("network"), name[:]}, programID)
}

// FindReporterAddress derives a reporter PDA
func FindReporterAddress(programID, network solana.PublicKey, id types.UUID) (solana.PublicKey, uint8, error) {
	be := id.BigEndian()
	return solana.FindProgramAddress([][]byte{[]byte("reporter"), network[:], be[:]}, programID)
}

// FindCaseAddress derives a case PDA
func FindCaseAddress(programID, network solana.PublicKey, id types.UUID) (solana.PublicKey, uint8, error) {
	be := id.BigEndian()
	return solana.FindProgramAddress([][]byte{[]byte("case"), network[:], be[:]}, programID)
}

// FindAddressAddress derives the PDA of a reported address
func FindAddressAddress(programID, network solana.PublicKey, address string) (solana.PublicKey, uint8, error) {
	addr, err := padded64("address", address)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	return solana.FindProgramAddress([][]byte{[]byte("address"), network[:], addr[:32], addr[32:]}, programID)
}

// FindAssetAddress derives the PDA of a reported asset
func FindAssetAddress(programID, network solana.PublicKey, address, assetID string) (solana.PublicKey, uint8, error) {
	addr, err := padded64("address", address)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	id, err := padded64("asset_id", assetID)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	return solana.FindProgramAddress(
		[][]byte{[]byte("asset"), network[:], addr[:32], addr[32:], id[:32], id[32:]},
		programID,
	)
}

// FindConfirmationAddress derives the PDA recording a reporter's confirmation of entity
func FindConfirmationAddress(programID, entity solana.PublicKey, reporterID types.UUID) (solana.PublicKey, uint8, error) {
	be := reporterID.BigEndian()
	return solana.FindProgramAddress([][]byte{[]byte("confirmation"), entity[:], be[:]}, programID)
}

// FindProgramDataAddress derives the upgradeable loader data account of the program
func FindProgramDataAddress(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{programID[:]}, solana.BPFLoaderUpgradeableProgramID)
}

// padded64 NUL-pads s to the fixed 64-byte field width
func padded64(field, s string) ([idl.AddressLength]byte, error) {
	var out [idl.AddressLength]byte
	if len(s) > len(out) {
		return out, types.NewError(types.KindInvalidData, "`%s` is longer than %d bytes", field, len(out))
	}
	copy(out[:], s)
	return out, nil
}

// trimNUL returns the string stored in a NUL-padded field
func trimNUL(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
