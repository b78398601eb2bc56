// Package wallet derives signer keys for every backend from a BIP-39 mnemonic.
package wallet

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// MnemonicStrength is the entropy size in bits
type MnemonicStrength int

const (
	Mnemonic12Words MnemonicStrength = 128
	Mnemonic15Words MnemonicStrength = 160
	Mnemonic18Words MnemonicStrength = 192
	Mnemonic21Words MnemonicStrength = 224
	Mnemonic24Words MnemonicStrength = 256
)

// StrengthForWords maps a word count to its strength
func StrengthForWords(words int) (MnemonicStrength, error) {
	switch words {
	case 12, 15, 18, 21, 24:
		return MnemonicStrength(words / 3 * 32), nil
	default:
		return 0, fmt.Errorf("invalid word count %d, must be 12, 15, 18, 21 or 24", words)
	}
}

// GenerateMnemonic returns a fresh English mnemonic
func GenerateMnemonic(strength MnemonicStrength) (string, error) {
	switch strength {
	case Mnemonic12Words, Mnemonic15Words, Mnemonic18Words, Mnemonic21Words, Mnemonic24Words:
	default:
		return "", fmt.Errorf("invalid mnemonic strength %d, must be 128, 160, 192, 224 or 256", strength)
	}
	entropy := make([]byte, int(strength)/8)
	if _, err := rand.Read(entropy); err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}

// ValidateMnemonic explains what is wrong with mnemonic, if anything
func ValidateMnemonic(mnemonic string) error {
	words := strings.Fields(mnemonic)
	if len(words) == 0 {
		return types.NewError(types.KindSigner, "mnemonic is empty")
	}
	if _, err := StrengthForWords(len(words)); err != nil {
		return types.WrapError(types.KindSigner, err, "mnemonic")
	}
	for i, word := range words {
		if _, ok := bip39.GetWordIndex(word); !ok {
			return types.NewError(types.KindSigner, "mnemonic: word %d %q is not in the BIP-39 word list", i+1, word)
		}
	}
	if !bip39.IsMnemonicValid(strings.Join(words, " ")) {
		return types.NewError(types.KindSigner, "mnemonic: checksum mismatch")
	}
	return nil
}

// Seed validates mnemonic and stretches it with passphrase into a 64-byte seed
func Seed(mnemonic, passphrase string) ([]byte, error) {
	if err := ValidateMnemonic(mnemonic); err != nil {
		return nil, err
	}
	return bip39.NewSeed(strings.Join(strings.Fields(mnemonic), " "), passphrase), nil
}
