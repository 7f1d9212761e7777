// Command avgprice prints the volume-weighted average purchase price
// accumulated in the price history file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cryptodca/stacker/internal/storage/ledger"
)

func main() {
	prices := flag.String("prices", "prices.log", "path to the price history file")
	flag.Parse()

	store := ledger.NewStore("", *prices)

	avg, err := store.WeightedAveragePrice()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(avg.StringFixed(2))
}
