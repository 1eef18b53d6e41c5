package cli

import (
	"fmt"

	"github.com/malbeclabs/pricefeed/smartcontract/sdk/go/pricefeed"
	"github.com/spf13/cobra"
)

func (a *app) deriveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "derive <feed-id>",
		Short: "Print the price account address and bump of a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			feedID, err := parseFeedID(args[0])
			if err != nil {
				return err
			}
			networkConfig, err := a.networkConfig()
			if err != nil {
				return err
			}

			address, bump, err := pricefeed.DerivePriceAccountPDA(networkConfig.ProgramID, feedID)
			if err != nil {
				return fmt.Errorf("failed to derive price account: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "program:", networkConfig.ProgramID)
			fmt.Fprintln(out, "account:", address)
			fmt.Fprintln(out, "bump:", bump)
			return nil
		},
	}
}
