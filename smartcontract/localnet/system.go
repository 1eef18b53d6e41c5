package localnet

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/malbeclabs/pricefeed/smartcontract/programs/pricefeed/processor"
)

// systemProgram is the builtin system program. Only Transfer is supported,
// which is enough to fund fee payers and price feed publishers.
type systemProgram struct{}

func (systemProgram) Process(accounts []*processor.AccountInfo, data []byte) error {
	metas := make([]*solana.AccountMeta, len(accounts))
	for i, a := range accounts {
		metas[i] = &solana.AccountMeta{PublicKey: a.Key, IsSigner: a.IsSigner, IsWritable: a.IsWritable}
	}
	if len(accounts) < 2 {
		return ErrNotEnoughAccountKeys
	}
	inst, err := system.DecodeInstruction(metas, data)
	if err != nil {
		return ErrInvalidInstructionData
	}

	switch ix := inst.Impl.(type) {
	case *system.Transfer:
		if ix.Lamports == nil {
			return ErrInvalidInstructionData
		}
		from, to := accounts[0], accounts[1]
		if !from.IsSigner {
			return ErrMissingRequiredSignature
		}
		if len(from.Data) != 0 {
			return ErrInvalidArgument
		}
		if !from.IsWritable || !to.IsWritable {
			return ErrInvalidArgument
		}
		if from.Lamports < *ix.Lamports {
			return ErrInsufficientFunds
		}
		from.Lamports -= *ix.Lamports
		to.Lamports += *ix.Lamports
		return nil
	default:
		return ErrInvalidInstructionData
	}
}
