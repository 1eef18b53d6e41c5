package localnet

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/malbeclabs/pricefeed/smartcontract/programs/pricefeed/processor"
)

// InstructionErrorKind is a builtin instruction error, reported by name in
// the transaction error as {"InstructionError": [idx, "<kind>"]}.
type InstructionErrorKind string

const (
	ErrGenericError             InstructionErrorKind = "GenericError"
	ErrInvalidInstructionData   InstructionErrorKind = "InvalidInstructionData"
	ErrInsufficientFunds        InstructionErrorKind = "InsufficientFunds"
	ErrMissingRequiredSignature InstructionErrorKind = "MissingRequiredSignature"
	ErrNotEnoughAccountKeys     InstructionErrorKind = "NotEnoughAccountKeys"
	ErrInvalidArgument          InstructionErrorKind = "InvalidArgument"
	ErrReadonlyLamportChange    InstructionErrorKind = "ReadonlyLamportChange"
	ErrReadonlyDataModified     InstructionErrorKind = "ReadonlyDataModified"
	ErrExternalDataModified     InstructionErrorKind = "ExternalAccountDataModified"
	ErrUnbalancedInstruction    InstructionErrorKind = "UnbalancedInstruction"
)

func (k InstructionErrorKind) Error() string {
	return string(k)
}

// Transaction level errors, reported as a bare string.
const (
	txErrBlockhashNotFound       = "BlockhashNotFound"
	txErrAccountNotFound         = "AccountNotFound"
	txErrInsufficientFundsForFee = "InsufficientFundsForFee"
	txErrProgramAccountNotFound  = "ProgramAccountNotFound"
	txErrAlreadyProcessed        = "AlreadyProcessed"
)

// instructionError renders a failed instruction in the shape returned by the
// Solana JSON-RPC API once decoded with UseNumber.
func instructionError(index int, err error) map[string]any {
	var detail any
	var programErr processor.ProgramError
	var kind InstructionErrorKind
	switch {
	case errors.As(err, &programErr):
		detail = map[string]any{"Custom": json.Number(strconv.FormatUint(uint64(programErr.Code()), 10))}
	case errors.As(err, &kind):
		detail = string(kind)
	default:
		detail = string(ErrGenericError)
	}
	return map[string]any{
		"InstructionError": []any{json.Number(strconv.Itoa(index)), detail},
	}
}

// describeError renders a transaction error for log lines and RPC messages.
func describeError(txErr any) string {
	switch v := txErr.(type) {
	case string:
		return v
	case map[string]any:
		ie, ok := v["InstructionError"].([]any)
		if !ok || len(ie) != 2 {
			break
		}
		switch d := ie[1].(type) {
		case string:
			return fmt.Sprintf("Error processing Instruction %v: %s", ie[0], d)
		case map[string]any:
			return fmt.Sprintf("Error processing Instruction %v: custom program error: %v", ie[0], customHex(d["Custom"]))
		}
	}
	return fmt.Sprintf("%v", txErr)
}

func customHex(v any) string {
	n, ok := v.(json.Number)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	code, err := strconv.ParseUint(n.String(), 10, 32)
	if err != nil {
		return n.String()
	}
	return fmt.Sprintf("0x%x", code)
}
