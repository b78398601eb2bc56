// Package types defines the HAPI Core domain model shared by every chain client,
// the CLI and the indexer.
package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies client failures
type ErrorKind string

const (
	KindURLParse             ErrorKind = "url_parse"
	KindAssetIDParse         ErrorKind = "asset_id_parse"
	KindInvalidData          ErrorKind = "invalid_data"
	KindFailedToParseBalance ErrorKind = "failed_to_parse_balance"
	KindInvalidReporter      ErrorKind = "invalid_reporter"
	KindUUID                 ErrorKind = "uuid"
	KindEthAddressParse      ErrorKind = "eth_address_parse"
	KindContractRevert       ErrorKind = "contract_revert"
	KindProvider             ErrorKind = "provider"
	KindContractData         ErrorKind = "contract_data"
	KindSolanaAddressParse   ErrorKind = "solana_address_parse"
	KindAbsentDefaultConfig  ErrorKind = "absent_default_config"
	KindUnableToLoadConfig   ErrorKind = "unable_to_load_config"
	KindSolanaKeypairFile    ErrorKind = "solana_keypair_file"
	KindAbsentTokenAccount   ErrorKind = "absent_token_account"
	KindAccountNotFound      ErrorKind = "account_not_found"
	KindDeserialization      ErrorKind = "account_deserialization"
	KindNearAccountParse     ErrorKind = "near_account_parse"
	KindSigner               ErrorKind = "signer"
	KindTimeout              ErrorKind = "timeout"
	KindInvalidResponse      ErrorKind = "invalid_response"
	KindUnsupported          ErrorKind = "unsupported"
)

// ClientError is the error type returned by HAPI Core clients
type ClientError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements error
func (e *ClientError) Error() string {
	switch {
	case e.Message == "" && e.Err != nil:
		return e.Err.Error()
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

// Unwrap returns the wrapped cause
func (e *ClientError) Unwrap() error { return e.Err }

// Is matches errors of the same kind, so sentinels compare by kind only.
func (e *ClientError) Is(target error) bool {
	var other *ClientError
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// NewError creates a ClientError
func NewError(kind ErrorKind, format string, args ...any) *ClientError {
	return &ClientError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps cause into a ClientError of the given kind
func WrapError(kind ErrorKind, cause error, format string, args ...any) *ClientError {
	return &ClientError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Sentinels for errors.Is checks.
var (
	ErrURLParse             = &ClientError{Kind: KindURLParse, Message: "invalid URL"}
	ErrAssetIDParse         = &ClientError{Kind: KindAssetIDParse, Message: "invalid asset id"}
	ErrInvalidData          = &ClientError{Kind: KindInvalidData, Message: "invalid data"}
	ErrFailedToParseBalance = &ClientError{Kind: KindFailedToParseBalance, Message: "failed to parse balance"}
	ErrInvalidReporter      = &ClientError{Kind: KindInvalidReporter, Message: "The reporter does not exist"}
	ErrUUID                 = &ClientError{Kind: KindUUID, Message: "invalid UUID"}
	ErrEthAddressParse      = &ClientError{Kind: KindEthAddressParse, Message: "invalid EVM address"}
	ErrContractRevert       = &ClientError{Kind: KindContractRevert, Message: "contract reverted"}
	ErrProvider             = &ClientError{Kind: KindProvider, Message: "provider error"}
	ErrContractData         = &ClientError{Kind: KindContractData, Message: "invalid contract data"}
	ErrSolanaAddressParse   = &ClientError{Kind: KindSolanaAddressParse, Message: "invalid Solana address"}
	ErrAbsentDefaultConfig  = &ClientError{Kind: KindAbsentDefaultConfig, Message: "absent default config"}
	ErrUnableToLoadConfig   = &ClientError{Kind: KindUnableToLoadConfig, Message: "unable to load config"}
	ErrSolanaKeypairFile    = &ClientError{Kind: KindSolanaKeypairFile, Message: "unable to read keypair file"}
	ErrAbsentTokenAccount   = &ClientError{Kind: KindAbsentTokenAccount, Message: "token account does not exist"}
	ErrAccountNotFound      = &ClientError{Kind: KindAccountNotFound, Message: "account not found"}
	ErrDeserialization      = &ClientError{Kind: KindDeserialization, Message: "account deserialization failed"}
	ErrNearAccountParse     = &ClientError{Kind: KindNearAccountParse, Message: "invalid NEAR account id"}
	ErrSigner               = &ClientError{Kind: KindSigner, Message: "signer is not configured"}
	ErrTimeout              = &ClientError{Kind: KindTimeout, Message: "timeout"}
	ErrInvalidResponse      = &ClientError{Kind: KindInvalidResponse, Message: "invalid response"}
	ErrUnsupported          = &ClientError{Kind: KindUnsupported, Message: "operation is not supported"}
)
