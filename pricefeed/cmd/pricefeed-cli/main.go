package main

import (
	"os"

	"github.com/malbeclabs/pricefeed/pricefeed/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
