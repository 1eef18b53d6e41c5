package localnet

import (
	"bytes"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/pricefeed/smartcontract/localnet/internal/metrics"
	"github.com/malbeclabs/pricefeed/smartcontract/programs/pricefeed/processor"
)

// execution is the outcome of running a transaction against a working copy
// of the ledger's accounts.
type execution struct {
	// err is the transaction error in RPC shape, nil on success.
	err any
	// dropped is set for failures that happen before the fee is collected.
	// Such transactions never land.
	dropped bool

	fee      uint64
	logs     []string
	keys     solana.PublicKeySlice
	accounts map[solana.PublicKey]*processor.AccountInfo
	pre      []uint64
	post     []uint64
}

func (l *Ledger) executeLocked(tx *solana.Transaction) *execution {
	msg := tx.Message
	keys := msg.AccountKeys
	exec := &execution{keys: keys}

	if len(keys) == 0 {
		exec.err, exec.dropped = txErrAccountNotFound, true
		return exec
	}
	if !l.isBlockhashValidLocked(msg.RecentBlockhash) {
		exec.err, exec.dropped = txErrBlockhashNotFound, true
		return exec
	}

	feePayer, ok := l.accounts[keys[0]]
	if !ok || feePayer.Lamports == 0 {
		exec.err, exec.dropped = txErrAccountNotFound, true
		return exec
	}
	exec.fee = uint64(len(tx.Signatures)) * l.cfg.LamportsPerSignature
	if feePayer.Lamports < exec.fee {
		exec.err, exec.dropped = txErrInsufficientFundsForFee, true
		return exec
	}

	working := make(map[solana.PublicKey]*processor.AccountInfo, len(keys))
	exec.pre = make([]uint64, len(keys))
	for i, key := range keys {
		account := l.accounts[key].Clone()
		if account == nil {
			account = &processor.AccountInfo{Key: key, Owner: solana.SystemProgramID}
		}
		account.IsSigner = msg.IsSigner(key)
		writable, err := msg.IsWritable(key)
		if err != nil {
			exec.err, exec.dropped = txErrAccountNotFound, true
			return exec
		}
		account.IsWritable = writable
		working[key] = account
		exec.pre[i] = account.Lamports
	}
	working[keys[0]].Lamports -= exec.fee

	// On failure only the fee is committed.
	feeOnly := cloneAccounts(working)

	for idx, ix := range msg.Instructions {
		programID, err := msg.Program(ix.ProgramIDIndex)
		if err != nil {
			exec.err = txErrProgramAccountNotFound
			working = feeOnly
			break
		}
		program, ok := l.programs[programID]
		if !ok {
			exec.logs = append(exec.logs, fmt.Sprintf("Program %s is not deployed", programID))
			exec.err = txErrProgramAccountNotFound
			metrics.Instructions.WithLabelValues(programID.String(), metrics.ResultFailed).Inc()
			working = feeOnly
			break
		}

		exec.logs = append(exec.logs, fmt.Sprintf("Program %s invoke [1]", programID))
		if err := l.executeInstructionLocked(program, programID, msg, ix, working); err != nil {
			exec.err = instructionError(idx, err)
			exec.logs = append(exec.logs, fmt.Sprintf("Program %s failed: %s", programID, err))
			metrics.Instructions.WithLabelValues(programID.String(), metrics.ResultFailed).Inc()
			working = feeOnly
			break
		}
		exec.logs = append(exec.logs, fmt.Sprintf("Program %s success", programID))
		metrics.Instructions.WithLabelValues(programID.String(), metrics.ResultSuccess).Inc()
	}

	exec.accounts = working
	exec.post = make([]uint64, len(keys))
	for i, key := range keys {
		exec.post[i] = working[key].Lamports
	}
	return exec
}

// executeInstructionLocked runs one instruction on copies of the working
// accounts and merges them back only if the program succeeded and kept the
// runtime rules.
func (l *Ledger) executeInstructionLocked(
	program Program,
	programID solana.PublicKey,
	msg solana.Message,
	ix solana.CompiledInstruction,
	working map[solana.PublicKey]*processor.AccountInfo,
) error {
	scratch := make(map[solana.PublicKey]*processor.AccountInfo, len(ix.Accounts))
	infos := make([]*processor.AccountInfo, 0, len(ix.Accounts))
	for _, index := range ix.Accounts {
		key, err := msg.Account(index)
		if err != nil {
			return ErrNotEnoughAccountKeys
		}
		account, ok := scratch[key]
		if !ok {
			account = working[key].Clone()
			scratch[key] = account
		}
		infos = append(infos, account)
	}

	if err := program.Process(infos, ix.Data); err != nil {
		return err
	}

	var before, after uint64
	for key, updated := range scratch {
		original := working[key]
		before += original.Lamports
		after += updated.Lamports

		dataChanged := !bytes.Equal(original.Data, updated.Data)
		if !original.IsWritable {
			if original.Lamports != updated.Lamports {
				return ErrReadonlyLamportChange
			}
			if dataChanged || !original.Owner.Equals(updated.Owner) {
				return ErrReadonlyDataModified
			}
		}
		if dataChanged && !canModifyData(programID, original) {
			return ErrExternalDataModified
		}
	}
	if before != after {
		return ErrUnbalancedInstruction
	}

	for key, updated := range scratch {
		working[key] = updated
	}
	return nil
}

// canModifyData reports whether programID may write to an account's data: it
// must own the account, or the account must be a fresh system account that
// the program is initializing.
func canModifyData(programID solana.PublicKey, account *processor.AccountInfo) bool {
	if account.Owner.Equals(programID) {
		return true
	}
	return account.Owner.Equals(solana.SystemProgramID) && len(account.Data) == 0
}

func cloneAccounts(in map[solana.PublicKey]*processor.AccountInfo) map[solana.PublicKey]*processor.AccountInfo {
	out := make(map[solana.PublicKey]*processor.AccountInfo, len(in))
	for k, v := range in {
		out[k] = v.Clone()
	}
	return out
}

// commitLocked writes the post-execution accounts back to the ledger. Empty
// system accounts with no lamports are removed.
func (l *Ledger) commitLocked(exec *execution) {
	for key, account := range exec.accounts {
		account.IsSigner = false
		account.IsWritable = false
		if account.Lamports == 0 && len(account.Data) == 0 && !account.Executable {
			delete(l.accounts, key)
			continue
		}
		l.accounts[key] = account
	}
}
