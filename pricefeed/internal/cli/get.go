package cli

import (
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"
)

func (a *app) getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <feed-id>",
		Short: "Get the price account of a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := cmd.Flags().GetBool("raw")
			if err != nil {
				return fmt.Errorf("failed to get raw flag: %w", err)
			}
			feedID, err := parseFeedID(args[0])
			if err != nil {
				return err
			}

			client, err := a.newClient(a.logger(cmd.ErrOrStderr()), false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if raw {
				data, err := client.GetPriceAccountData(cmd.Context(), feedID)
				if err != nil {
					return fmt.Errorf("failed to get price account: %w", err)
				}
				fmt.Fprintln(out, base58.Encode(data))
				return nil
			}

			account, err := client.GetPriceAccount(cmd.Context(), feedID)
			if err != nil {
				return fmt.Errorf("failed to get price account: %w", err)
			}
			printPriceAccount(out, account)
			return nil
		},
	}

	cmd.Flags().Bool("raw", false, "Print the raw account data as base58")

	return cmd
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every price account of the program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(a.logger(cmd.ErrOrStderr()), false)
			if err != nil {
				return err
			}

			accounts, err := client.GetPriceAccounts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list price accounts: %w", err)
			}

			printPriceAccounts(cmd.OutOrStdout(), accounts)
			return nil
		},
	}
}
