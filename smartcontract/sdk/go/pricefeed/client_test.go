package pricefeed_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/malbeclabs/pricefeed/smartcontract/sdk/go/pricefeed"
	"github.com/stretchr/testify/require"
)

func serializedAccount(t *testing.T, account pricefeed.PriceAccount) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, account.Serialize(&buf))
	return buf.Bytes()
}

func customInstructionError(code pricefeed.ProgramError) map[string]any {
	return map[string]any{
		"InstructionError": []any{json.Number("0"), map[string]any{"Custom": json.Number(strconv.FormatUint(uint64(code.Code()), 10))}},
	}
}

func TestSDK_PriceFeed_Client_GetPriceAccount_HappyPath(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	pda, bump, err := pricefeed.DerivePriceAccountPDA(programID, 834)
	require.NoError(t, err)

	expected := pricefeed.PriceAccount{
		PubKey:               pda,
		Price:                140,
		LastUpdatedTimestamp: 1_717_243_200,
		Bump:                 bump,
	}

	var requested solana.PublicKey
	mockRPC := &mockRPCClient{
		GetAccountInfoFunc: func(_ context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
			requested = account
			return &solanarpc.GetAccountInfoResult{
				Value: &solanarpc.Account{
					Owner: programID,
					Data:  solanarpc.DataBytesOrJSONFromBytes(serializedAccount(t, expected)),
				},
			}, nil
		},
	}

	client := pricefeed.New(log, mockRPC, nil, programID)
	got, err := client.GetPriceAccount(t.Context(), 834)
	require.NoError(t, err)
	require.Equal(t, pda, requested)
	require.Equal(t, &expected, got)

	raw, err := client.GetPriceAccountData(t.Context(), 834)
	require.NoError(t, err)
	require.Len(t, raw, pricefeed.PriceAccountSize)
}

func TestSDK_PriceFeed_Client_GetPriceAccount_NotFound(t *testing.T) {
	t.Parallel()

	for name, result := range map[string]func() (*solanarpc.GetAccountInfoResult, error){
		"rpc not found": func() (*solanarpc.GetAccountInfoResult, error) { return nil, solanarpc.ErrNotFound },
		"nil value":     func() (*solanarpc.GetAccountInfoResult, error) { return &solanarpc.GetAccountInfoResult{}, nil },
		"empty data": func() (*solanarpc.GetAccountInfoResult, error) {
			return &solanarpc.GetAccountInfoResult{Value: &solanarpc.Account{Data: solanarpc.DataBytesOrJSONFromBytes(nil)}}, nil
		},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			mockRPC := &mockRPCClient{
				GetAccountInfoFunc: func(context.Context, solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
					return result()
				},
			}
			client := pricefeed.New(log, mockRPC, nil, solana.NewWallet().PublicKey())
			_, err := client.GetPriceAccount(t.Context(), 1)
			require.ErrorIs(t, err, pricefeed.ErrAccountNotFound)
		})
	}
}

func TestSDK_PriceFeed_Client_GetPriceAccount_UnexpectedError(t *testing.T) {
	t.Parallel()

	mockRPC := &mockRPCClient{
		GetAccountInfoFunc: func(context.Context, solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
			return nil, errors.New("boom")
		},
	}
	client := pricefeed.New(log, mockRPC, nil, solana.NewWallet().PublicKey())
	_, err := client.GetPriceAccount(t.Context(), 1)
	require.ErrorContains(t, err, "failed to get account data: boom")
	require.NotErrorIs(t, err, pricefeed.ErrAccountNotFound)
}

func TestSDK_PriceFeed_Client_GetPriceAccount_WrongSize(t *testing.T) {
	t.Parallel()

	mockRPC := &mockRPCClient{
		GetAccountInfoFunc: func(context.Context, solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
			return &solanarpc.GetAccountInfoResult{
				Value: &solanarpc.Account{Data: solanarpc.DataBytesOrJSONFromBytes(make([]byte, 9))},
			}, nil
		},
	}
	client := pricefeed.New(log, mockRPC, nil, solana.NewWallet().PublicKey())
	_, err := client.GetPriceAccount(t.Context(), 1)
	require.ErrorContains(t, err, "unexpected account size")
}

func TestSDK_PriceFeed_Client_GetPriceAccounts(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	var keys []solana.PublicKey
	var result solanarpc.GetProgramAccountsResult
	for i := range 3 {
		key := solana.NewWallet().PublicKey()
		keys = append(keys, key)
		result = append(result, &solanarpc.KeyedAccount{
			Pubkey: key,
			Account: &solanarpc.Account{
				Owner: programID,
				Data: solanarpc.DataBytesOrJSONFromBytes(serializedAccount(t, pricefeed.PriceAccount{
					Price: float64(i), LastUpdatedTimestamp: int64(i), Bump: 255,
				})),
			},
		})
	}
	result = append(result, &solanarpc.KeyedAccount{
		Pubkey:  solana.NewWallet().PublicKey(),
		Account: &solanarpc.Account{Data: solanarpc.DataBytesOrJSONFromBytes([]byte{1, 2})},
	})

	var gotOpts *solanarpc.GetProgramAccountsOpts
	mockRPC := &mockRPCClient{
		GetProgramAccountsWithOptsFunc: func(_ context.Context, id solana.PublicKey, opts *solanarpc.GetProgramAccountsOpts) (solanarpc.GetProgramAccountsResult, error) {
			require.Equal(t, programID, id)
			gotOpts = opts
			return result, nil
		},
	}

	client := pricefeed.New(log, mockRPC, nil, programID)
	accounts, err := client.GetPriceAccounts(t.Context())
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	for i := 1; i < len(accounts); i++ {
		require.Less(t, accounts[i-1].PubKey.String(), accounts[i].PubKey.String())
	}
	for _, account := range accounts {
		require.Contains(t, keys, account.PubKey)
	}
	require.Equal(t, []solanarpc.RPCFilter{{DataSize: pricefeed.PriceAccountSize}}, gotOpts.Filters)
}

func TestSDK_PriceFeed_Client_Write_NoSigner(t *testing.T) {
	t.Parallel()

	client := pricefeed.New(log, &mockRPCClient{}, nil, solana.NewWallet().PublicKey())

	_, _, err := client.CreatePriceAccount(t.Context(), 1)
	require.ErrorIs(t, err, pricefeed.ErrNoPrivateKey)
	_, _, err = client.SetPrice(t.Context(), 1, 1)
	require.ErrorIs(t, err, pricefeed.ErrNoPrivateKey)
	_, _, err = client.ModifyPrice(t.Context(), 1, 1)
	require.ErrorIs(t, err, pricefeed.ErrNoPrivateKey)
}

func TestSDK_PriceFeed_Client_SetPrice_HappyPath(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()
	pda, _, err := pricefeed.DerivePriceAccountPDA(programID, 834)
	require.NoError(t, err)

	var sent *solana.Transaction
	mockRPC := landedRPC(t, &solanarpc.TransactionMeta{}, func(tx *solana.Transaction) { sent = tx })
	client := pricefeed.New(log, mockRPC, &signer, programID)

	sig, res, err := client.SetPrice(t.Context(), 834, 130.5)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Equal(t, sent.Signatures[0], sig)

	require.Len(t, sent.Message.Instructions, 1)
	ix := sent.Message.Instructions[0]
	program, err := sent.Message.Program(ix.ProgramIDIndex)
	require.NoError(t, err)
	require.Equal(t, programID, program)
	require.Equal(t, byte(pricefeed.SetPriceInstructionIndex), ix.Data[0])
	account, err := sent.Message.Account(ix.Accounts[1])
	require.NoError(t, err)
	require.Equal(t, pda, account)
}

func TestSDK_PriceFeed_Client_SetPrice_RejectsNonFinite(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	client := pricefeed.New(log, &mockRPCClient{}, &signer, solana.NewWallet().PublicKey())

	_, _, err := client.SetPrice(t.Context(), 1, math.Inf(1))
	require.ErrorContains(t, err, "price must be finite")
}

func TestSDK_PriceFeed_Client_PreflightProgramError(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	mockRPC := landedRPC(t, &solanarpc.TransactionMeta{}, nil)
	mockRPC.SendTransactionWithOptsFunc = func(context.Context, *solana.Transaction, solanarpc.TransactionOpts) (solana.Signature, error) {
		return solana.Signature{}, &jsonrpc.RPCError{
			Code:    -32002,
			Message: "Transaction simulation failed: Error processing Instruction 0: custom program error: 0x4",
			Data: map[string]any{
				"err":  customInstructionError(pricefeed.ErrAccountAlreadyExists),
				"logs": []any{},
			},
		}
	}

	client := pricefeed.New(log, mockRPC, &signer, solana.NewWallet().PublicKey())
	_, _, err := client.CreatePriceAccount(t.Context(), 834)
	require.ErrorIs(t, err, pricefeed.ErrAccountAlreadyExists)
	require.ErrorContains(t, err, "failed to create price account")

	var programErr pricefeed.ProgramError
	require.ErrorAs(t, err, &programErr)
	require.Equal(t, uint32(4), programErr.Code())
}

func TestSDK_PriceFeed_Client_PreflightAccountNotFound(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	mockRPC := landedRPC(t, &solanarpc.TransactionMeta{}, nil)
	mockRPC.SendTransactionWithOptsFunc = func(context.Context, *solana.Transaction, solanarpc.TransactionOpts) (solana.Signature, error) {
		return solana.Signature{}, &jsonrpc.RPCError{
			Code:    -32002,
			Message: "Transaction simulation failed: Attempt to debit an account but found no record of a prior credit.",
			Data:    map[string]any{"err": "AccountNotFound"},
		}
	}

	client := pricefeed.New(log, mockRPC, &signer, solana.NewWallet().PublicKey())
	_, _, err := client.SetPrice(t.Context(), 834, 1)
	require.ErrorIs(t, err, pricefeed.ErrAccountNotFound)
}

func TestSDK_PriceFeed_Client_LandedProgramError(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	mockRPC := landedRPC(t, &solanarpc.TransactionMeta{
		Err: customInstructionError(pricefeed.ErrAccountNotInitialized),
	}, nil)

	client := pricefeed.New(log, mockRPC, &signer, solana.NewWallet().PublicKey())
	sig, res, err := client.ModifyPrice(t.Context(), 834, 1)
	require.ErrorIs(t, err, pricefeed.ErrAccountNotInitialized)
	require.NotEmpty(t, sig)
	require.NotNil(t, res)
}

func TestSDK_PriceFeed_Client_LandedOtherError(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	mockRPC := landedRPC(t, &solanarpc.TransactionMeta{
		Err: map[string]any{"InstructionError": []any{json.Number("0"), "InvalidArgument"}},
	}, nil)

	client := pricefeed.New(log, mockRPC, &signer, solana.NewWallet().PublicKey())
	_, _, err := client.SetPrice(t.Context(), 834, 1)
	require.ErrorIs(t, err, pricefeed.ErrTransactionFailed)
	require.ErrorContains(t, err, "InvalidArgument")
}

func TestSDK_PriceFeed_Client_UnknownCustomCode(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	mockRPC := landedRPC(t, &solanarpc.TransactionMeta{
		Err: map[string]any{"InstructionError": []any{json.Number("0"), map[string]any{"Custom": json.Number("999")}}},
	}, nil)

	client := pricefeed.New(log, mockRPC, &signer, solana.NewWallet().PublicKey())
	_, _, err := client.SetPrice(t.Context(), 834, 1)
	require.ErrorIs(t, err, pricefeed.ErrTransactionFailed)

	var programErr pricefeed.ProgramError
	require.False(t, errors.As(err, &programErr))
}
