package localnet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/malbeclabs/pricefeed/smartcontract/localnet/internal/metrics"
)

// JSON-RPC error codes used by the Solana RPC server.
const (
	rpcCodeInvalidParams            = -32602
	rpcCodeSendTransactionPreflight = -32002
	rpcCodeSignatureVerification    = -32003
)

// SendTransactionWithOpts executes tx. Without SkipPreflight a failing
// transaction is rejected with a *jsonrpc.RPCError carrying the transaction
// error and logs, and nothing is committed. With SkipPreflight it lands with
// Meta.Err set and only the fee is charged. Transactions that fail before
// fee collection are dropped and never become visible.
func (l *Ledger) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}
	if tx == nil || len(tx.Signatures) == 0 {
		return solana.Signature{}, &jsonrpc.RPCError{Code: rpcCodeInvalidParams, Message: "invalid transaction: no signatures"}
	}
	if err := tx.VerifySignatures(); err != nil {
		metrics.Transactions.WithLabelValues(metrics.ResultRejected).Inc()
		return solana.Signature{}, &jsonrpc.RPCError{Code: rpcCodeSignatureVerification, Message: fmt.Sprintf("Transaction signature verification failure: %v", err)}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sig := tx.Signatures[0]
	if _, ok := l.txs[sig]; ok {
		metrics.Transactions.WithLabelValues(metrics.ResultRejected).Inc()
		return solana.Signature{}, preflightError(txErrAlreadyProcessed, nil)
	}

	exec := l.executeLocked(tx)
	if exec.err != nil && !opts.SkipPreflight {
		l.log.Debug("localnet: preflight failed", "sig", sig, "error", describeError(exec.err))
		metrics.Transactions.WithLabelValues(metrics.ResultRejected).Inc()
		return solana.Signature{}, preflightError(exec.err, exec.logs)
	}
	if exec.dropped {
		l.log.Debug("localnet: transaction dropped", "sig", sig, "error", describeError(exec.err))
		metrics.Transactions.WithLabelValues(metrics.ResultDropped).Inc()
		return sig, nil
	}

	l.commitLocked(exec)
	l.advanceSlotLocked()

	result, err := l.transactionResultLocked(tx, exec)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to record transaction: %w", err)
	}
	l.txs[sig] = &transactionRecord{slot: l.slot, err: exec.err, result: result}

	if exec.err != nil {
		metrics.Transactions.WithLabelValues(metrics.ResultFailed).Inc()
	} else {
		metrics.Transactions.WithLabelValues(metrics.ResultSuccess).Inc()
	}
	l.log.Debug("localnet: transaction processed", "sig", sig, "slot", l.slot, "error", exec.err)
	return sig, nil
}

func (l *Ledger) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return l.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{})
}

func preflightError(txErr any, logs []string) *jsonrpc.RPCError {
	logValues := make([]any, len(logs))
	for i, line := range logs {
		logValues[i] = line
	}
	return &jsonrpc.RPCError{
		Code:    rpcCodeSendTransactionPreflight,
		Message: "Transaction simulation failed: " + describeError(txErr),
		Data: map[string]any{
			"err":  txErr,
			"logs": logValues,
		},
	}
}

func (l *Ledger) transactionResultLocked(tx *solana.Transaction, exec *execution) (*solanarpc.GetTransactionResult, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(solana.Data{Content: raw, Encoding: solana.EncodingBase64})
	if err != nil {
		return nil, err
	}
	envelope := new(solanarpc.TransactionResultEnvelope)
	if err := envelope.UnmarshalJSON(encoded); err != nil {
		return nil, err
	}

	blockTime := solana.UnixTimeSeconds(l.cfg.Clock.Now().Unix())
	return &solanarpc.GetTransactionResult{
		Slot:        l.slot,
		BlockTime:   &blockTime,
		Transaction: envelope,
		Meta: &solanarpc.TransactionMeta{
			Err:          exec.err,
			Fee:          exec.fee,
			PreBalances:  exec.pre,
			PostBalances: exec.post,
			LogMessages:  exec.logs,
		},
	}, nil
}

func (l *Ledger) GetLatestBlockhash(ctx context.Context, _ solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return &solanarpc.GetLatestBlockhashResult{
		RPCContext: solanarpc.RPCContext{Context: solanarpc.Context{Slot: l.slot}},
		Value: &solanarpc.LatestBlockhashResult{
			Blockhash:            l.blockhash,
			LastValidBlockHeight: l.slot + l.cfg.MaxBlockhashAge,
		},
	}, nil
}

// GetSignatureStatuses reports every landed transaction as finalized.
// Unknown signatures yield a nil entry.
func (l *Ledger) GetSignatureStatuses(ctx context.Context, _ bool, sigs ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	out := &solanarpc.GetSignatureStatusesResult{
		RPCContext: solanarpc.RPCContext{Context: solanarpc.Context{Slot: l.slot}},
		Value:      make([]*solanarpc.SignatureStatusesResult, len(sigs)),
	}
	for i, sig := range sigs {
		record, ok := l.txs[sig]
		if !ok {
			continue
		}
		out.Value[i] = &solanarpc.SignatureStatusesResult{
			Slot:               record.slot,
			Err:                record.err,
			ConfirmationStatus: solanarpc.ConfirmationStatusFinalized,
		}
	}
	return out, nil
}

func (l *Ledger) GetTransaction(ctx context.Context, sig solana.Signature, _ *solanarpc.GetTransactionOpts) (*solanarpc.GetTransactionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	record, ok := l.txs[sig]
	if !ok {
		return nil, solanarpc.ErrNotFound
	}
	return record.result, nil
}

func (l *Ledger) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	account, ok := l.accounts[pubkey]
	if !ok {
		return nil, solanarpc.ErrNotFound
	}
	return &solanarpc.GetAccountInfoResult{
		RPCContext: solanarpc.RPCContext{Context: solanarpc.Context{Slot: l.slot}},
		Value:      rpcAccount(account.Lamports, account.Owner, account.Data, account.Executable),
	}, nil
}

func (l *Ledger) GetBalance(ctx context.Context, pubkey solana.PublicKey, _ solanarpc.CommitmentType) (*solanarpc.GetBalanceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var lamports uint64
	if account, ok := l.accounts[pubkey]; ok {
		lamports = account.Lamports
	}
	return &solanarpc.GetBalanceResult{
		RPCContext: solanarpc.RPCContext{Context: solanarpc.Context{Slot: l.slot}},
		Value:      lamports,
	}, nil
}

// GetProgramAccountsWithOpts returns accounts owned by programID that match
// every DataSize and Memcmp filter, ordered by address.
func (l *Ledger) GetProgramAccountsWithOpts(ctx context.Context, programID solana.PublicKey, opts *solanarpc.GetProgramAccountsOpts) (solanarpc.GetProgramAccountsResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var filters []solanarpc.RPCFilter
	if opts != nil {
		filters = opts.Filters
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	out := solanarpc.GetProgramAccountsResult{}
	for key, account := range l.accounts {
		if !account.Owner.Equals(programID) || !matchesFilters(account.Data, filters) {
			continue
		}
		out = append(out, &solanarpc.KeyedAccount{
			Pubkey:  key,
			Account: rpcAccount(account.Lamports, account.Owner, account.Data, account.Executable),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Pubkey[:], out[j].Pubkey[:]) < 0
	})
	return out, nil
}

func (l *Ledger) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, _ solanarpc.CommitmentType) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return l.cfg.Rent.MinimumBalance(int(dataSize)), nil
}

func matchesFilters(data []byte, filters []solanarpc.RPCFilter) bool {
	for _, f := range filters {
		if f.DataSize != 0 && uint64(len(data)) != f.DataSize {
			return false
		}
		if f.Memcmp != nil {
			offset := f.Memcmp.Offset
			want := []byte(f.Memcmp.Bytes)
			if offset+uint64(len(want)) > uint64(len(data)) {
				return false
			}
			if !bytes.Equal(data[offset:offset+uint64(len(want))], want) {
				return false
			}
		}
	}
	return true
}

func rpcAccount(lamports uint64, owner solana.PublicKey, data []byte, executable bool) *solanarpc.Account {
	return &solanarpc.Account{
		Lamports:   lamports,
		Owner:      owner,
		Data:       solanarpc.DataBytesOrJSONFromBytes(bytes.Clone(data)),
		Executable: executable,
		RentEpoch:  big.NewInt(0),
		Space:      uint64(len(data)),
	}
}
