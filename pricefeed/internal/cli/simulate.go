package cli

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/pricefeed/smartcontract/localnet"
	"github.com/malbeclabs/pricefeed/smartcontract/sdk/go/pricefeed"
	"github.com/spf13/cobra"
)

func (a *app) simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run create, set and modify against an in-process ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			feedID, err := cmd.Flags().GetUint64("feed-id")
			if err != nil {
				return fmt.Errorf("failed to get feed-id flag: %w", err)
			}
			setPrice, err := cmd.Flags().GetFloat64("set-price")
			if err != nil {
				return fmt.Errorf("failed to get set-price flag: %w", err)
			}
			modifyPrice, err := cmd.Flags().GetFloat64("modify-price")
			if err != nil {
				return fmt.Errorf("failed to get modify-price flag: %w", err)
			}

			ctx := cmd.Context()
			log := a.logger(cmd.ErrOrStderr())
			out := cmd.OutOrStdout()

			ledger, err := localnet.New(localnet.Config{Logger: log, Clock: clockwork.NewRealClock()})
			if err != nil {
				return fmt.Errorf("failed to create local ledger: %w", err)
			}
			if _, err := ledger.DeployPriceFeed(pricefeed.ProgramID); err != nil {
				return fmt.Errorf("failed to deploy price feed program: %w", err)
			}

			payer := solana.NewWallet().PrivateKey
			ledger.Airdrop(payer.PublicKey(), solana.LAMPORTS_PER_SOL)
			client := pricefeed.New(log, ledger, &payer, pricefeed.ProgramID, pricefeed.WithPollInterval(time.Millisecond))

			steps := []struct {
				name string
				run  func() error
			}{
				{"create", func() error {
					_, _, err := client.CreatePriceAccount(ctx, feedID)
					return err
				}},
				{"set " + formatPrice(setPrice), func() error {
					_, _, err := client.SetPrice(ctx, feedID, setPrice)
					return err
				}},
				{"modify " + formatPrice(modifyPrice), func() error {
					_, _, err := client.ModifyPrice(ctx, feedID, modifyPrice)
					return err
				}},
			}

			fmt.Fprintln(out, "payer:", payer.PublicKey())
			for _, step := range steps {
				if err := step.run(); err != nil {
					return fmt.Errorf("failed to %s: %w", step.name, err)
				}
				account, err := client.GetPriceAccount(ctx, feedID)
				if err != nil {
					return fmt.Errorf("failed to get price account: %w", err)
				}
				fmt.Fprintf(out, "\n== %s\n", step.name)
				printPriceAccount(out, account)
			}
			return nil
		},
	}

	cmd.Flags().Uint64("feed-id", 834, "Feed id to simulate")
	cmd.Flags().Float64("set-price", 130.5, "Price written by the set step")
	cmd.Flags().Float64("modify-price", 140, "Price written by the modify step")

	return cmd
}
