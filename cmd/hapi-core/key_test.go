package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-protocol/hapi-core/pkg/types"
)

const devMnemonic = "test test test test test test test test test test test junk"

func TestKeyDerive_EVM(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("-n", "sepolia", "-o", "json", "key", "derive", devMnemonic))

	var out struct {
		Data struct {
			Path       string `json:"path"`
			Address    string `json:"address"`
			PrivateKey string `json:"private_key"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &out))
	assert.Equal(t, "m/44'/60'/0'/0/0", out.Data.Path)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", out.Data.Address)
	assert.Equal(t, "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", out.Data.PrivateKey)
}

func TestKeyDerive_PathFromFlag(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("-n", "sepolia", "-o", "json", "--mnemonic", devMnemonic,
		"--derivation-path", "m/44'/60'/0'/0/1", "key", "derive"))
	assert.Contains(t, h.stdout.String(), "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
}

func TestKeyDerive_Errors(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.run("-n", "sepolia", "key", "derive"))
	assert.Error(t, h.run("-n", "sepolia", "key", "derive", "not a mnemonic"))
	assert.Error(t, h.run("-n", "solana", "--derivation-path", "m/44'/501'/0'/0", "key", "derive", devMnemonic))
	assert.Error(t, h.run("-n", "sepolia", "--derivation-path", "44/60", "key", "derive", devMnemonic))
}

func TestKeyNew(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("-n", "solana", "-o", "json", "key", "new", "--words", "24"))

	var out struct {
		Data struct {
			Mnemonic  string `json:"mnemonic"`
			Path      string `json:"path"`
			Address   string `json:"address"`
			PublicKey string `json:"public_key"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &out))
	assert.Len(t, strings.Fields(out.Data.Mnemonic), 24)
	assert.Equal(t, "m/44'/501'/0'/0'", out.Data.Path)
	assert.Equal(t, out.Data.Address, out.Data.PublicKey)

	assert.Error(t, h.run("key", "new", "--words", "13"))
}

func TestOptions_MnemonicSigner(t *testing.T) {
	t.Setenv("HAPI_CORE_MNEMONIC", devMnemonic)

	h := newHarness(t)
	h.app.readSecret = func() (string, error) {
		t.Fatal("mnemonic signer must not prompt")
		return "", nil
	}
	require.NoError(t, h.run("-n", "sepolia", "authority", "set", "0xnew"))
	assert.Equal(t, "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", h.opts.PrivateKey)
}

func TestOptions_MnemonicNearAccount(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("-n", "near", "--mnemonic", devMnemonic, "authority", "get"))

	assert.Equal(t, types.NetworkNear, h.opts.Network)
	assert.True(t, strings.HasPrefix(h.opts.PrivateKey, "ed25519:"))
	assert.Len(t, h.opts.AccountID, 64)

	require.NoError(t, h.run("-n", "near", "--mnemonic", devMnemonic, "--account-id", "alice.near", "authority", "get"))
	assert.Equal(t, "alice.near", h.opts.AccountID)
}

func TestOptions_PrivateKeyWinsOverMnemonic(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("-n", "sepolia", "-k", "0xkey", "--mnemonic", "not a mnemonic", "authority", "get"))
	assert.Equal(t, "0xkey", h.opts.PrivateKey)
}
