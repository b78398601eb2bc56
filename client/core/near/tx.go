package near

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/mr-tron/base58"

	"github.com/hapi-protocol/hapi-core/pkg/types"
)

const (
	keyTypeED25519     uint8 = 0
	actionFunctionCall uint8 = 2

	// DefaultGas is attached to every function call (50 Tgas)
	DefaultGas uint64 = 50_000_000_000_000
)

// PublicKey is the Borsh form of an access key
type PublicKey struct {
	KeyType uint8
	Data    [ed25519.PublicKeySize]byte
}

// String returns the "ed25519:<base58>" form
func (k PublicKey) String() string {
	return "ed25519:" + base58.Encode(k.Data[:])
}

// FunctionCall is the single action carried by HAPI transactions.
// Action holds the enum variant and must be actionFunctionCall.
type FunctionCall struct {
	Action     uint8
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    [16]byte
}

// Transaction is an unsigned NEAR transaction
type Transaction struct {
	SignerID   string
	PublicKey  PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  [32]byte
	Actions    []FunctionCall
}

type signature struct {
	KeyType uint8
	Data    [ed25519.SignatureSize]byte
}

// SignedTransaction is a transaction with its ed25519 signature
type SignedTransaction struct {
	Transaction Transaction
	Signature   signature
}

// NewFunctionCall builds a function call action; deposit must fit u128
func NewFunctionCall(method string, args []byte, gas uint64, deposit types.Amount) (FunctionCall, error) {
	lo, hi, ok := deposit.U128()
	if !ok {
		return FunctionCall{}, types.NewError(types.KindInvalidData, "deposit %s overflows u128", deposit)
	}
	call := FunctionCall{
		Action:     actionFunctionCall,
		MethodName: method,
		Args:       args,
		Gas:        gas,
	}
	binary.LittleEndian.PutUint64(call.Deposit[:8], lo)
	binary.LittleEndian.PutUint64(call.Deposit[8:], hi)
	return call, nil
}

// Sign serializes and signs tx; the returned hash is base58(sha256(borsh(tx)))
func (tx Transaction) Sign(key ed25519.PrivateKey) ([]byte, string, error) {
	raw, err := bin.MarshalBorsh(&tx)
	if err != nil {
		return nil, "", types.WrapError(types.KindInvalidData, err, "encode transaction")
	}
	digest := sha256.Sum256(raw)

	signed := SignedTransaction{Transaction: tx, Signature: signature{KeyType: keyTypeED25519}}
	copy(signed.Signature.Data[:], ed25519.Sign(key, digest[:]))

	out, err := bin.MarshalBorsh(&signed)
	if err != nil {
		return nil, "", types.WrapError(types.KindInvalidData, err, "encode signed transaction")
	}
	return out, base58.Encode(digest[:]), nil
}

// DecodeSignedTransaction parses a Borsh signed transaction
func DecodeSignedTransaction(data []byte) (SignedTransaction, error) {
	var signed SignedTransaction
	if err := bin.NewBorshDecoder(data).Decode(&signed); err != nil {
		return SignedTransaction{}, types.WrapError(types.KindDeserialization, err, "decode signed transaction")
	}
	return signed, nil
}

// ParseSecretKey parses an "ed25519:<base58>" secret key holding either the
// 64-byte expanded key or the 32-byte seed
func ParseSecretKey(s string) (ed25519.PrivateKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	encoded, ok := strings.CutPrefix(s, "ed25519:")
	if !ok && strings.Contains(s, ":") {
		return nil, types.NewError(types.KindSigner, "`private_key`: unsupported key type %q", s[:strings.Index(s, ":")])
	}
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, types.WrapError(types.KindSigner, err, "`private_key`")
	}
	switch len(raw) {
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	default:
		return nil, types.NewError(types.KindSigner, "`private_key`: invalid key length %d", len(raw))
	}
}

// PublicKeyOf returns the Borsh public key of a secret key
func PublicKeyOf(key ed25519.PrivateKey) PublicKey {
	pk := PublicKey{KeyType: keyTypeED25519}
	copy(pk.Data[:], key.Public().(ed25519.PublicKey))
	return pk
}

func decodeHash(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := base58.Decode(s)
	if err != nil {
		return out, types.WrapError(types.KindInvalidResponse, err, "block hash %q", s)
	}
	if len(raw) != len(out) {
		return out, types.NewError(types.KindInvalidResponse, "block hash %q has %d bytes", s, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}
