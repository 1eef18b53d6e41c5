package processor

import "fmt"

// ProgramError is a custom program error code. The numeric value is what a
// failed transaction reports as InstructionError{Custom: code}.
type ProgramError uint32

const (
	ErrMalformedInstruction ProgramError = iota + 1
	ErrUnknownInstruction
	ErrAddressMismatch
	ErrAccountAlreadyExists
	ErrAccountNotInitialized
	ErrMissingSignature
	ErrNotEnoughAccountKeys
	ErrAccountNotWritable
	ErrInvalidAccountOwner
	ErrInvalidAccountData
	ErrInsufficientFunds
	ErrIncorrectSystemProgram
)

var programErrorMessages = map[ProgramError]string{
	ErrMalformedInstruction:   "malformed instruction data",
	ErrUnknownInstruction:     "unknown instruction",
	ErrAddressMismatch:        "price account does not match derived address",
	ErrAccountAlreadyExists:   "price account already initialized",
	ErrAccountNotInitialized:  "price account not initialized",
	ErrMissingSignature:       "payer signature missing",
	ErrNotEnoughAccountKeys:   "not enough account keys",
	ErrAccountNotWritable:     "account not writable",
	ErrInvalidAccountOwner:    "price account not owned by program",
	ErrInvalidAccountData:     "invalid price account data",
	ErrInsufficientFunds:      "insufficient funds for rent",
	ErrIncorrectSystemProgram: "incorrect system program account",
}

func (e ProgramError) Error() string {
	if msg, ok := programErrorMessages[e]; ok {
		return msg
	}
	return fmt.Sprintf("unknown program error %d", uint32(e))
}

// Code returns the custom error code reported by the runtime.
func (e ProgramError) Code() uint32 {
	return uint32(e)
}

// ProgramErrorFromCode maps a custom error code back to a ProgramError. The
// second return value is false for codes this program never emits.
func ProgramErrorFromCode(code uint32) (ProgramError, bool) {
	e := ProgramError(code)
	_, ok := programErrorMessages[e]
	return e, ok
}
