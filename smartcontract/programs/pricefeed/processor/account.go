package processor

import (
	"slices"

	"github.com/gagliardetto/solana-go"
)

// AccountInfo is the view of an account handed to the processor for a single
// instruction. The processor mutates Lamports, Owner and Data in place.
type AccountInfo struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool
	Executable bool
	Lamports   uint64
	Owner      solana.PublicKey
	Data       []byte
}

// IsInitialized reports whether the account holds any data.
func (a *AccountInfo) IsInitialized() bool {
	return len(a.Data) != 0
}

func (a *AccountInfo) Clone() *AccountInfo {
	if a == nil {
		return nil
	}
	c := *a
	c.Data = slices.Clone(a.Data)
	return &c
}
