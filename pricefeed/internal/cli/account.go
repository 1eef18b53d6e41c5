package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/malbeclabs/pricefeed/smartcontract/sdk/go/pricefeed"
	"github.com/olekukonko/tablewriter"
)

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

func printPriceAccount(w io.Writer, account *pricefeed.PriceAccount) {
	fmt.Fprintln(w, "account:", account.PubKey)
	fmt.Fprintln(w, "price:", formatPrice(account.Price))
	fmt.Fprintf(w, "last updated: %s (%d)\n", account.LastUpdated().Format(time.RFC3339), account.LastUpdatedTimestamp)
	fmt.Fprintln(w, "bump:", account.Bump)
}

func printPriceAccounts(w io.Writer, accounts []pricefeed.PriceAccount) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader([]string{"Account", "Price", "Last Updated", "Bump"})

	for _, account := range accounts {
		table.Append([]string{
			account.PubKey.String(),
			formatPrice(account.Price),
			account.LastUpdated().Format(time.RFC3339),
			strconv.Itoa(int(account.Bump)),
		})
	}
	table.Render()
}
