package pricefeed

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/malbeclabs/pricefeed/smartcontract/programs/pricefeed/processor"
)

// ProgramError is a custom error code returned by the price feed program.
// Client write methods wrap it so callers can match with errors.Is.
type ProgramError = processor.ProgramError

const (
	ErrMalformedInstruction   = processor.ErrMalformedInstruction
	ErrUnknownInstruction     = processor.ErrUnknownInstruction
	ErrAddressMismatch        = processor.ErrAddressMismatch
	ErrAccountAlreadyExists   = processor.ErrAccountAlreadyExists
	ErrAccountNotInitialized  = processor.ErrAccountNotInitialized
	ErrMissingSignature       = processor.ErrMissingSignature
	ErrNotEnoughAccountKeys   = processor.ErrNotEnoughAccountKeys
	ErrAccountNotWritable     = processor.ErrAccountNotWritable
	ErrInvalidAccountOwner    = processor.ErrInvalidAccountOwner
	ErrInvalidAccountData     = processor.ErrInvalidAccountData
	ErrInsufficientFunds      = processor.ErrInsufficientFunds
	ErrIncorrectSystemProgram = processor.ErrIncorrectSystemProgram
)

var (
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionFailed is returned when a transaction landed but failed
	// with an error that is not a price feed program error.
	ErrTransactionFailed = errors.New("transaction failed")
)

// programErrorFromRPCError extracts a price feed program error from a failed
// preflight simulation.
func programErrorFromRPCError(err error) (processor.ProgramError, bool) {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return 0, false
	}
	data, ok := rpcErr.Data.(map[string]any)
	if !ok {
		return 0, false
	}
	return programErrorFromTransactionError(data["err"])
}

// programErrorFromTransactionError extracts a price feed program error from a
// transaction error value of the form {"InstructionError": [idx, {"Custom": code}]}.
func programErrorFromTransactionError(txErr any) (processor.ProgramError, bool) {
	data, ok := txErr.(map[string]any)
	if !ok {
		return 0, false
	}
	ie, ok := data["InstructionError"].([]any)
	if !ok || len(ie) != 2 {
		return 0, false
	}
	custom, ok := ie[1].(map[string]any)
	if !ok {
		return 0, false
	}
	code, ok := customCode(custom["Custom"])
	if !ok {
		return 0, false
	}
	return processor.ProgramErrorFromCode(code)
}

func customCode(v any) (uint32, bool) {
	switch c := v.(type) {
	case json.Number:
		n, err := strconv.ParseUint(c.String(), 10, 32)
		if err != nil {
			return 0, false
		}
		return uint32(n), true
	case float64:
		if c < 0 || c != float64(uint32(c)) {
			return 0, false
		}
		return uint32(c), true
	case uint32:
		return c, true
	case int:
		if c < 0 {
			return 0, false
		}
		return uint32(c), true
	default:
		return 0, false
	}
}

// isAccountNotFound reports whether a preflight failed because an account,
// usually the fee payer, does not exist.
func isAccountNotFound(err error) bool {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}
	data, ok := rpcErr.Data.(map[string]any)
	if !ok {
		return false
	}
	v, ok := data["err"].(string)
	return ok && v == "AccountNotFound"
}
