package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-protocol/hapi-core/pkg/types"
)

func TestFromMnemonicEVM(t *testing.T) {
	// first account of the well-known development mnemonic
	key, err := FromMnemonic(types.BackendEVM, testMnemonic, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "m/44'/60'/0'/0/0", key.Path)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", key.Address)
	assert.Equal(t, "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", key.PrivateKey)

	path, err := ParseDerivationPath("m/44'/60'/0'/0/1")
	require.NoError(t, err)
	second, err := FromMnemonic(types.BackendEVM, testMnemonic, "", path)
	require.NoError(t, err)
	assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", second.Address)
}

func TestDeriveEd25519Vectors(t *testing.T) {
	seed, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")

	master, err := DeriveEd25519(seed, DerivationPath{})
	require.NoError(t, err)
	assert.Equal(t, "2b4be7f19ee27bbf30c667b642d5f4aa69fd169872f8fc3059c08ebae2eb19e7", hex.EncodeToString(master.Seed()))
	assert.Equal(t, "a4b2856bfec510abab89753fac1ac0e1112364e7d250545963f135f2a33188ed",
		hex.EncodeToString(master.Public().(ed25519.PublicKey)))

	child, err := DeriveEd25519(seed, DerivationPath{HardenedOffset})
	require.NoError(t, err)
	assert.Equal(t, "68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3", hex.EncodeToString(child.Seed()))
	assert.Equal(t, "8c8a13df77a28f3445213a0f432fde644acaa215fc72dcdf300d5efaa85d350c",
		hex.EncodeToString(child.Public().(ed25519.PublicKey)))
}

func TestDeriveEd25519RejectsSoftIndexes(t *testing.T) {
	_, err := DeriveEd25519(make([]byte, 64), DefaultDerivationPath(types.BackendEVM))
	assert.ErrorIs(t, err, types.ErrSigner)
}

func TestFromMnemonicSolanaAndNear(t *testing.T) {
	sol, err := FromMnemonic(types.BackendSolana, testMnemonic, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "m/44'/501'/0'/0'", sol.Path)
	assert.Equal(t, sol.Address, sol.PublicKey)
	assert.NotEmpty(t, sol.PrivateKey)

	near, err := FromMnemonic(types.BackendNear, testMnemonic, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "m/44'/397'/0'", near.Path)
	assert.Len(t, near.Address, 64)
	assert.True(t, strings.HasPrefix(near.PublicKey, "ed25519:"))
	assert.True(t, strings.HasPrefix(near.PrivateKey, "ed25519:"))
}

func TestFromMnemonicInvalid(t *testing.T) {
	_, err := FromMnemonic(types.BackendEVM, "not a mnemonic", "", nil)
	assert.ErrorIs(t, err, types.ErrSigner)
}
