package pricefeed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/malbeclabs/pricefeed/smartcontract/sdk/go/pricefeed"
	"github.com/stretchr/testify/require"
)

func TestSDK_PriceFeed_Executor_ExecuteTransaction(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()

	var sentOpts solanarpc.TransactionOpts
	var sentTx *solana.Transaction
	mockRPC := landedRPC(t, &solanarpc.TransactionMeta{}, func(tx *solana.Transaction) { sentTx = tx })
	send := mockRPC.SendTransactionWithOptsFunc
	mockRPC.SendTransactionWithOptsFunc = func(ctx context.Context, tx *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error) {
		sentOpts = opts
		return send(ctx, tx, opts)
	}

	exec := pricefeed.NewExecutor(log, mockRPC, &signer, programID)
	instruction := solana.NewInstruction(programID, solana.AccountMetaSlice{
		{PublicKey: signer.PublicKey(), IsSigner: true, IsWritable: true},
	}, []byte{1, 2, 3})

	sig, res, err := exec.ExecuteTransaction(t.Context(), instruction, nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Equal(t, sentTx.Signatures[0], sig)
	require.Equal(t, testBlockhash, sentTx.Message.RecentBlockhash)
	require.NoError(t, sentTx.VerifySignatures())
	require.False(t, sentOpts.SkipPreflight)
	require.Equal(t, solanarpc.CommitmentFinalized, sentOpts.PreflightCommitment)
}

func TestSDK_PriceFeed_Executor_MissingSigner(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	exec := pricefeed.NewExecutor(log, &mockRPCClient{}, nil, programID)

	sig, res, err := exec.ExecuteTransaction(t.Context(), solana.NewInstruction(programID, nil, []byte{1}), nil)
	require.ErrorIs(t, err, pricefeed.ErrNoPrivateKey)
	require.Empty(t, sig)
	require.Nil(t, res)
}

func TestSDK_PriceFeed_Executor_MissingProgramID(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	exec := pricefeed.NewExecutor(log, &mockRPCClient{}, &signer, solana.PublicKey{})

	sig, res, err := exec.ExecuteTransaction(t.Context(), solana.NewInstruction(solana.NewWallet().PublicKey(), nil, []byte{1}), nil)
	require.ErrorIs(t, err, pricefeed.ErrNoProgramID)
	require.Empty(t, sig)
	require.Nil(t, res)
}

func TestSDK_PriceFeed_Executor_GetLatestBlockhashError(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()
	mockRPC := &mockRPCClient{
		GetLatestBlockhashFunc: func(context.Context, solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error) {
			return nil, errors.New("rpc unavailable")
		},
	}

	exec := pricefeed.NewExecutor(log, mockRPC, &signer, programID)
	_, _, err := exec.ExecuteTransaction(t.Context(), solana.NewInstruction(programID, nil, []byte{1}), nil)
	require.ErrorContains(t, err, "failed to get latest blockhash")
}

func TestSDK_PriceFeed_Executor_SendFails(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()
	mockRPC := landedRPC(t, &solanarpc.TransactionMeta{}, nil)
	mockRPC.SendTransactionWithOptsFunc = func(context.Context, *solana.Transaction, solanarpc.TransactionOpts) (solana.Signature, error) {
		return solana.Signature{}, errors.New("rpc send error")
	}

	exec := pricefeed.NewExecutor(log, mockRPC, &signer, programID)
	sig, res, err := exec.ExecuteTransaction(t.Context(), solana.NewInstruction(programID, solana.AccountMetaSlice{
		{PublicKey: signer.PublicKey(), IsSigner: true, IsWritable: true},
	}, []byte{1}), nil)
	require.ErrorContains(t, err, "failed to send transaction")
	require.ErrorContains(t, err, "rpc send error")
	require.Empty(t, sig)
	require.Nil(t, res)
}

func TestSDK_PriceFeed_Executor_SignatureNeverVisible(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()
	mockRPC := landedRPC(t, &solanarpc.TransactionMeta{}, nil)
	mockRPC.GetSignatureStatusesFunc = func(context.Context, bool, ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
		return &solanarpc.GetSignatureStatusesResult{
			Value: []*solanarpc.SignatureStatusesResult{nil},
		}, nil
	}

	exec := pricefeed.NewExecutor(log, mockRPC, &signer, programID,
		pricefeed.WithWaitForVisibleTimeout(50*time.Millisecond),
		pricefeed.WithPollInterval(5*time.Millisecond),
	)
	instruction := solana.NewInstruction(programID, solana.AccountMetaSlice{
		{PublicKey: signer.PublicKey(), IsSigner: true, IsWritable: true},
	}, []byte{1})

	_, _, err := exec.ExecuteTransaction(t.Context(), instruction, nil)
	require.ErrorContains(t, err, "transaction dropped or rejected before cluster saw it")
	require.ErrorContains(t, err, "signature not found after wait")

	_, _, err = exec.ExecuteTransaction(t.Context(), instruction, &pricefeed.ExecuteTransactionOptions{SkipPreflight: true})
	require.ErrorContains(t, err, "make sure you have sufficient funds")
}

func TestSDK_PriceFeed_Executor_SignatureStatusError(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()
	calls := 0
	mockRPC := landedRPC(t, &solanarpc.TransactionMeta{}, nil)
	mockRPC.GetSignatureStatusesFunc = func(context.Context, bool, ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
		calls++
		return nil, errors.New("status unavailable")
	}

	exec := pricefeed.NewExecutor(log, mockRPC, &signer, programID, pricefeed.WithPollInterval(time.Millisecond))
	_, _, err := exec.ExecuteTransaction(t.Context(), solana.NewInstruction(programID, solana.AccountMetaSlice{
		{PublicKey: signer.PublicKey(), IsSigner: true, IsWritable: true},
	}, []byte{1}), nil)
	require.ErrorContains(t, err, "status unavailable")
	require.Equal(t, 1, calls)
}

func TestSDK_PriceFeed_Executor_WaitsForCommitment(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()

	statuses := []solanarpc.ConfirmationStatusType{
		solanarpc.ConfirmationStatusProcessed,
		solanarpc.ConfirmationStatusProcessed,
		solanarpc.ConfirmationStatusConfirmed,
		solanarpc.ConfirmationStatusFinalized,
	}
	calls := 0
	mockRPC := landedRPC(t, &solanarpc.TransactionMeta{}, nil)
	mockRPC.GetSignatureStatusesFunc = func(context.Context, bool, ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
		status := statuses[min(calls, len(statuses)-1)]
		calls++
		return &solanarpc.GetSignatureStatusesResult{
			Value: []*solanarpc.SignatureStatusesResult{{ConfirmationStatus: status}},
		}, nil
	}

	exec := pricefeed.NewExecutor(log, mockRPC, &signer, programID,
		pricefeed.WithPollInterval(time.Millisecond),
		pricefeed.WithCommitment(solanarpc.CommitmentConfirmed),
	)
	_, res, err := exec.ExecuteTransaction(t.Context(), solana.NewInstruction(programID, solana.AccountMetaSlice{
		{PublicKey: signer.PublicKey(), IsSigner: true, IsWritable: true},
	}, []byte{1}), nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	// One call to see the signature, then processed and confirmed.
	require.Equal(t, 3, calls)
}

func TestSDK_PriceFeed_Executor_MissingMeta(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()
	mockRPC := landedRPC(t, nil, nil)

	exec := pricefeed.NewExecutor(log, mockRPC, &signer, programID)
	_, _, err := exec.ExecuteTransaction(t.Context(), solana.NewInstruction(programID, solana.AccountMetaSlice{
		{PublicKey: signer.PublicKey(), IsSigner: true, IsWritable: true},
	}, []byte{1}), nil)
	require.ErrorContains(t, err, "missing metadata")
}
