package cli

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/malbeclabs/pricefeed/smartcontract/sdk/go/pricefeed"
	"github.com/spf13/cobra"
)

func (a *app) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <feed-id>",
		Short: "Create the price account of a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			feedID, err := parseFeedID(args[0])
			if err != nil {
				return err
			}
			return a.write(cmd, feedID, func(ctx context.Context, client *pricefeed.Client) (solana.Signature, *solanarpc.GetTransactionResult, error) {
				return client.CreatePriceAccount(ctx, feedID)
			})
		},
	}
}

func (a *app) setCmd() *cobra.Command {
	return a.updateCmd("set", "Set the price of a feed", func(ctx context.Context, client *pricefeed.Client, feedID uint64, price float64) (solana.Signature, *solanarpc.GetTransactionResult, error) {
		return client.SetPrice(ctx, feedID, price)
	})
}

func (a *app) modifyCmd() *cobra.Command {
	return a.updateCmd("modify", "Modify the price of a feed", func(ctx context.Context, client *pricefeed.Client, feedID uint64, price float64) (solana.Signature, *solanarpc.GetTransactionResult, error) {
		return client.ModifyPrice(ctx, feedID, price)
	})
}

type updateFunc func(ctx context.Context, client *pricefeed.Client, feedID uint64, price float64) (solana.Signature, *solanarpc.GetTransactionResult, error)

func (a *app) updateCmd(use, short string, update updateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <feed-id> <price>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			feedID, err := parseFeedID(args[0])
			if err != nil {
				return err
			}
			price, err := parsePrice(args[1])
			if err != nil {
				return err
			}
			return a.write(cmd, feedID, func(ctx context.Context, client *pricefeed.Client) (solana.Signature, *solanarpc.GetTransactionResult, error) {
				return update(ctx, client, feedID, price)
			})
		},
	}
}

// write runs a signed instruction and prints the resulting account.
func (a *app) write(cmd *cobra.Command, feedID uint64, fn func(context.Context, *pricefeed.Client) (solana.Signature, *solanarpc.GetTransactionResult, error)) error {
	ctx := cmd.Context()
	log := a.logger(cmd.ErrOrStderr())

	client, err := a.newClient(log, true)
	if err != nil {
		return err
	}

	sig, _, err := fn(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to execute %s: %w", cmd.Name(), err)
	}

	account, err := client.GetPriceAccount(ctx, feedID)
	if err != nil {
		return fmt.Errorf("failed to get price account: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "signature:", sig)
	printPriceAccount(out, account)
	return nil
}
