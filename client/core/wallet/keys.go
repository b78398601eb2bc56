package wallet

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// Key is a derived signer in the encodings the clients accept
type Key struct {
	Path string `json:"path"`
	// Address is the EVM address, the Solana public key or the NEAR implicit account id
	Address string `json:"address"`
	// PublicKey is set for ed25519 keys
	PublicKey string `json:"public_key,omitempty"`
	// PrivateKey is hex (EVM), base58 (Solana) or "ed25519:<base58>" (NEAR)
	PrivateKey string `json:"private_key"`
}

// Derive derives the backend's key at path from seed
func Derive(backend types.Backend, seed []byte, path DerivationPath) (*Key, error) {
	switch backend {
	case types.BackendSolana:
		priv, err := DeriveEd25519(seed, path)
		if err != nil {
			return nil, err
		}
		key := solana.PrivateKey(priv)
		pub := key.PublicKey().String()
		return &Key{Path: path.String(), Address: pub, PublicKey: pub, PrivateKey: key.String()}, nil
	case types.BackendNear:
		priv, err := DeriveEd25519(seed, path)
		if err != nil {
			return nil, err
		}
		pub := priv.Public().(ed25519.PublicKey)
		return &Key{
			Path:       path.String(),
			Address:    hex.EncodeToString(pub),
			PublicKey:  "ed25519:" + base58.Encode(pub),
			PrivateKey: "ed25519:" + base58.Encode(priv),
		}, nil
	default:
		priv, err := DeriveSecp256k1(seed, path)
		if err != nil {
			return nil, err
		}
		ecdsaKey := priv.ToECDSA()
		return &Key{
			Path:       path.String(),
			Address:    crypto.PubkeyToAddress(ecdsaKey.PublicKey).Hex(),
			PrivateKey: hex.EncodeToString(crypto.FromECDSA(ecdsaKey)),
		}, nil
	}
}

// FromMnemonic derives the backend's key from a mnemonic; a nil path
// selects DefaultDerivationPath
func FromMnemonic(backend types.Backend, mnemonic, passphrase string, path DerivationPath) (*Key, error) {
	seed, err := Seed(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	if path == nil {
		path = DefaultDerivationPath(backend)
	}
	return Derive(backend, seed, path)
}

// DeriveSecp256k1 follows BIP-32
func DeriveSecp256k1(seed []byte, path DerivationPath) (*btcec.PrivateKey, error) {
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, types.WrapError(types.KindSigner, err, "master key")
	}
	for _, index := range path {
		key, err = key.Derive(index)
		if err != nil {
			return nil, types.WrapError(types.KindSigner, err, "derive %s", path)
		}
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, types.WrapError(types.KindSigner, err, "derive %s", path)
	}
	return priv, nil
}

// DeriveEd25519 follows SLIP-0010, which only defines hardened children
func DeriveEd25519(seed []byte, path DerivationPath) (ed25519.PrivateKey, error) {
	if !path.AllHardened() {
		return nil, types.NewError(types.KindSigner, "derive %s: ed25519 derivation needs hardened indexes only", path)
	}
	key, chainCode := slip10Step([]byte("ed25519 seed"), seed)
	for _, index := range path {
		data := make([]byte, 0, 1+len(key)+4)
		data = append(data, 0)
		data = append(data, key...)
		data = binary.BigEndian.AppendUint32(data, index)
		key, chainCode = slip10Step(chainCode, data)
	}
	return ed25519.NewKeyFromSeed(key), nil
}

func slip10Step(hmacKey, data []byte) (key, chainCode []byte) {
	mac := hmac.New(sha512.New, hmacKey)
	mac.Write(data)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}
