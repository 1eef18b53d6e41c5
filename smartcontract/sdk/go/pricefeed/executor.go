package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

var (
	// ErrNoPrivateKey is returned when a transaction signing operation is attempted without a configured private key.
	ErrNoPrivateKey = errors.New("no private key configured")

	// ErrNoProgramID is returned when a transaction signing operation is attempted without a configured program ID.
	ErrNoProgramID = errors.New("no program ID configured")

	errSignatureNotVisible = errors.New("signature not visible yet")
)

const (
	defaultWaitForVisibleTimeout = 3 * time.Second
	defaultPollInterval          = 250 * time.Millisecond
	defaultFinalizedPollInterval = 1 * time.Second
)

type executor struct {
	log                   *slog.Logger
	rpc                   RPCClient
	signer                *solana.PrivateKey
	programID             solana.PublicKey
	waitForVisibleTimeout time.Duration
	pollInterval          time.Duration
	finalizedPollInterval time.Duration
	commitment            solanarpc.CommitmentType
}

type ExecutorOption func(*executor)

func WithWaitForVisibleTimeout(timeout time.Duration) ExecutorOption {
	return func(e *executor) {
		e.waitForVisibleTimeout = timeout
	}
}

// WithPollInterval sets how often signature status is polled while waiting for
// a transaction to become visible and then to reach the target commitment.
func WithPollInterval(interval time.Duration) ExecutorOption {
	return func(e *executor) {
		e.pollInterval = interval
		e.finalizedPollInterval = interval
	}
}

// WithCommitment sets the commitment a transaction must reach before it is
// fetched. Defaults to finalized.
func WithCommitment(commitment solanarpc.CommitmentType) ExecutorOption {
	return func(e *executor) {
		e.commitment = commitment
	}
}

func NewExecutor(log *slog.Logger, rpc RPCClient, signer *solana.PrivateKey, programID solana.PublicKey, opts ...ExecutorOption) *executor {
	e := &executor{
		log:                   log,
		rpc:                   rpc,
		signer:                signer,
		programID:             programID,
		waitForVisibleTimeout: defaultWaitForVisibleTimeout,
		pollInterval:          defaultPollInterval,
		finalizedPollInterval: defaultFinalizedPollInterval,
		commitment:            solanarpc.CommitmentFinalized,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type ExecuteTransactionOptions struct {
	SkipPreflight bool
}

func (e *executor) ExecuteTransaction(ctx context.Context, instruction solana.Instruction, opts *ExecuteTransactionOptions) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	return e.ExecuteTransactions(ctx, []solana.Instruction{instruction}, opts)
}

func (e *executor) ExecuteTransactions(ctx context.Context, instructions []solana.Instruction, opts *ExecuteTransactionOptions) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	if opts == nil {
		opts = &ExecuteTransactionOptions{}
	}

	if e.signer == nil {
		return solana.Signature{}, nil, ErrNoPrivateKey
	}
	if e.programID.IsZero() {
		return solana.Signature{}, nil, ErrNoProgramID
	}

	// Get latest blockhash
	blockhashResult, err := e.rpc.GetLatestBlockhash(ctx, solanarpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	if blockhashResult == nil || blockhashResult.Value == nil {
		return solana.Signature{}, nil, errors.New("latest blockhash missing from response")
	}

	// Build transaction
	tx, err := solana.NewTransaction(
		instructions,
		blockhashResult.Value.Blockhash,
		solana.TransactionPayer(e.signer.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	// Sign transaction
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(e.signer.PublicKey()) {
			return e.signer
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to sign transaction (likely missing signer): %w", err)
	}
	if len(tx.Signatures) == 0 {
		return solana.Signature{}, nil, errors.New("signed transaction appears malformed")
	}

	// Send transaction
	sig, err := e.rpc.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: e.commitment,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	// Wait for the signature to be visible
	if err := e.waitForSignatureVisible(ctx, sig); err != nil {
		if opts.SkipPreflight {
			return solana.Signature{}, nil, fmt.Errorf("transaction dropped or rejected before cluster saw it. make sure you have sufficient funds for the transaction: %w", err)
		}
		return solana.Signature{}, nil, fmt.Errorf("transaction dropped or rejected before cluster saw it: %w", err)
	}

	// Wait for the transaction to reach the target commitment
	res, err := e.waitForTransactionCommitted(ctx, sig)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return sig, res, nil
}

func (e *executor) waitForSignatureVisible(ctx context.Context, sig solana.Signature) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		resp, err := e.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		if resp != nil && len(resp.Value) > 0 && resp.Value[0] != nil {
			return struct{}{}, nil
		}
		return struct{}{}, errSignatureNotVisible
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(e.pollInterval)),
		backoff.WithMaxElapsedTime(e.waitForVisibleTimeout),
	)
	if errors.Is(err, errSignatureNotVisible) {
		return errors.New("signature not found after wait")
	}
	return err
}

func (e *executor) waitForTransactionCommitted(ctx context.Context, sig solana.Signature) (*solanarpc.GetTransactionResult, error) {
	e.log.Debug("--> Waiting for transaction to be committed", "sig", sig, "commitment", e.commitment)
	start := time.Now()
	for {
		statusResp, err := e.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return nil, err
		}
		if statusResp == nil || len(statusResp.Value) == 0 {
			return nil, errors.New("transaction not found")
		}
		status := statusResp.Value[0]
		if status != nil && commitmentReached(status.ConfirmationStatus, e.commitment) {
			e.log.Debug("--> Transaction committed", "sig", sig, "status", status.ConfirmationStatus, "duration", time.Since(start))
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(e.finalizedPollInterval):
			if time.Since(start)/time.Second%5 == 0 {
				e.log.Debug("--> Still waiting for transaction to be committed", "sig", sig, "elapsed", time.Since(start))
			}
		}
	}

	tx, err := e.rpc.GetTransaction(ctx, sig, &solanarpc.GetTransactionOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: e.commitment,
	})
	if err != nil {
		return nil, err
	}
	if tx == nil || tx.Meta == nil {
		return nil, errors.New("transaction not found or missing metadata after confirmation")
	}
	return tx, nil
}

func commitmentReached(status solanarpc.ConfirmationStatusType, target solanarpc.CommitmentType) bool {
	switch target {
	case solanarpc.CommitmentProcessed:
		return status != ""
	case solanarpc.CommitmentConfirmed:
		return status == solanarpc.ConfirmationStatusConfirmed || status == solanarpc.ConfirmationStatusFinalized
	default:
		return status == solanarpc.ConfirmationStatusFinalized
	}
}
