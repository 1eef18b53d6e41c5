package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jellydator/ttlcache/v3"
)

const pdaCacheCapacity = 4096

type derivedAddress struct {
	address solana.PublicKey
	bump    uint8
}

type Client struct {
	log      *slog.Logger
	rpc      RPCClient
	executor *executor
	pdas     *ttlcache.Cache[uint64, derivedAddress]
}

func New(log *slog.Logger, rpc RPCClient, signer *solana.PrivateKey, programID solana.PublicKey, opts ...ExecutorOption) *Client {
	return &Client{
		log:      log,
		rpc:      rpc,
		executor: NewExecutor(log, rpc, signer, programID, opts...),
		pdas: ttlcache.New(
			ttlcache.WithTTL[uint64, derivedAddress](ttlcache.NoTTL),
			ttlcache.WithCapacity[uint64, derivedAddress](pdaCacheCapacity),
		),
	}
}

func (c *Client) ProgramID() solana.PublicKey {
	if c.executor == nil {
		return solana.PublicKey{}
	}
	return c.executor.programID
}

func (c *Client) Signer() *solana.PrivateKey {
	if c.executor == nil {
		return nil
	}
	return c.executor.signer
}

// PriceAccountPDA returns the price account address and bump for a feed.
// Derivations are cached per client since they only depend on the program id.
func (c *Client) PriceAccountPDA(feedID uint64) (solana.PublicKey, uint8, error) {
	if item := c.pdas.Get(feedID); item != nil {
		v := item.Value()
		return v.address, v.bump, nil
	}
	address, bump, err := DerivePriceAccountPDA(c.ProgramID(), feedID)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	c.pdas.Set(feedID, derivedAddress{address: address, bump: bump}, ttlcache.DefaultTTL)
	return address, bump, nil
}

// GetPriceAccount fetches and decodes the price account of a feed.
func (c *Client) GetPriceAccount(ctx context.Context, feedID uint64) (*PriceAccount, error) {
	pda, data, err := c.getPriceAccountData(ctx, feedID)
	if err != nil {
		return nil, err
	}
	account, err := DeserializePriceAccount(pda, data)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize price account: %w", err)
	}
	return account, nil
}

// GetPriceAccountData fetches the raw bytes of a feed's price account.
func (c *Client) GetPriceAccountData(ctx context.Context, feedID uint64) ([]byte, error) {
	_, data, err := c.getPriceAccountData(ctx, feedID)
	return data, err
}

func (c *Client) getPriceAccountData(ctx context.Context, feedID uint64) (solana.PublicKey, []byte, error) {
	pda, _, err := c.PriceAccountPDA(feedID)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("failed to derive PDA: %w", err)
	}

	account, err := c.rpc.GetAccountInfo(ctx, pda)
	if err != nil {
		if errors.Is(err, solanarpc.ErrNotFound) {
			return solana.PublicKey{}, nil, ErrAccountNotFound
		}
		return solana.PublicKey{}, nil, fmt.Errorf("failed to get account data: %w", err)
	}
	if account == nil || account.Value == nil || account.Value.Data == nil {
		return solana.PublicKey{}, nil, ErrAccountNotFound
	}
	data := account.Value.Data.GetBinary()
	if len(data) == 0 {
		return solana.PublicKey{}, nil, ErrAccountNotFound
	}
	return pda, data, nil
}

// GetPriceAccounts fetches every price account owned by the program, ordered
// by address.
func (c *Client) GetPriceAccounts(ctx context.Context) ([]PriceAccount, error) {
	opts := &solanarpc.GetProgramAccountsOpts{
		Encoding: solana.EncodingBase64,
		Filters: []solanarpc.RPCFilter{
			{DataSize: PriceAccountSize},
		},
	}

	accounts, err := c.rpc.GetProgramAccountsWithOpts(ctx, c.ProgramID(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts: %w", err)
	}

	prices := make([]PriceAccount, 0, len(accounts))
	for _, acct := range accounts {
		if acct == nil || acct.Account == nil || acct.Account.Data == nil {
			continue
		}
		price, err := DeserializePriceAccount(acct.Pubkey, acct.Account.Data.GetBinary())
		if err != nil {
			c.log.Warn("failed to deserialize price account", "pubkey", acct.Pubkey, "error", err)
			continue
		}
		prices = append(prices, *price)
	}
	sort.Slice(prices, func(i, j int) bool {
		return prices[i].PubKey.String() < prices[j].PubKey.String()
	})
	return prices, nil
}

// CreatePriceAccount creates the price account for a feed, funded by the signer.
func (c *Client) CreatePriceAccount(ctx context.Context, feedID uint64) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	if c.Signer() == nil {
		return solana.Signature{}, nil, ErrNoPrivateKey
	}
	pda, _, err := c.PriceAccountPDA(feedID)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to derive PDA: %w", err)
	}

	instruction, err := BuildCreatePriceAccountInstruction(c.ProgramID(), CreatePriceAccountInstructionConfig{
		Payer:          c.Signer().PublicKey(),
		FeedID:         feedID,
		PriceAccountPK: pda,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, instruction, "create price account")
}

// SetPrice overwrites a feed's price and stamps it with the cluster time.
func (c *Client) SetPrice(ctx context.Context, feedID uint64, price float64) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	if c.Signer() == nil {
		return solana.Signature{}, nil, ErrNoPrivateKey
	}
	pda, _, err := c.PriceAccountPDA(feedID)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to derive PDA: %w", err)
	}

	instruction, err := BuildSetPriceInstruction(c.ProgramID(), SetPriceInstructionConfig{
		Payer:          c.Signer().PublicKey(),
		FeedID:         feedID,
		Price:          price,
		PriceAccountPK: pda,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, instruction, "set price")
}

// ModifyPrice behaves exactly like SetPrice but uses the modify discriminant.
func (c *Client) ModifyPrice(ctx context.Context, feedID uint64, price float64) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	if c.Signer() == nil {
		return solana.Signature{}, nil, ErrNoPrivateKey
	}
	pda, _, err := c.PriceAccountPDA(feedID)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to derive PDA: %w", err)
	}

	instruction, err := BuildModifyPriceInstruction(c.ProgramID(), ModifyPriceInstructionConfig{
		Payer:          c.Signer().PublicKey(),
		FeedID:         feedID,
		Price:          price,
		PriceAccountPK: pda,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, instruction, "modify price")
}

func (c *Client) execute(ctx context.Context, instruction solana.Instruction, op string) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	sig, res, err := c.executor.ExecuteTransaction(ctx, instruction, nil)
	if err != nil {
		if programErr, ok := programErrorFromRPCError(err); ok {
			return solana.Signature{}, nil, fmt.Errorf("failed to %s: %w", op, programErr)
		}
		if isAccountNotFound(err) {
			return solana.Signature{}, nil, fmt.Errorf("failed to %s: %w", op, ErrAccountNotFound)
		}
		return solana.Signature{}, nil, fmt.Errorf("failed to execute instruction: %w", err)
	}
	if res != nil && res.Meta != nil && res.Meta.Err != nil {
		if programErr, ok := programErrorFromTransactionError(res.Meta.Err); ok {
			return sig, res, fmt.Errorf("failed to %s: %w", op, programErr)
		}
		return sig, res, fmt.Errorf("failed to %s: %w: %v", op, ErrTransactionFailed, res.Meta.Err)
	}

	c.log.Debug("executed instruction", "op", op, "sig", sig)
	return sig, res, nil
}
