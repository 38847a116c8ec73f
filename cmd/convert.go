package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"

	"github.com/finbase/finbase"
)

// convertCmd holds the flags for the 'convert' subcommand.
type convertCmd struct {
	amount string
	from   string
	to     string
	date   string
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "convert an amount between currencies at a date" }
func (*convertCmd) Usage() string {
	return `fbs convert -amount <n> -from <cur> -to <cur> [-d <date>]

  Converts an amount using the dataset's stored rates, bridging through the
  default currency with the latest rate on or before the date.
`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "0", "Amount to convert")
	f.StringVar(&c.from, "from", "", "Source currency")
	f.StringVar(&c.to, "to", "", "Target currency")
	f.StringVar(&c.date, "d", "", "Conversion date (defaults to today)")
}

func (c *convertCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	amount, err := strconv.ParseFloat(c.amount, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid amount %q: %v\n", c.amount, err)
		return subcommands.ExitUsageError
	}
	on := finbase.Today()
	if c.date != "" {
		if on, err = finbase.ParseDate(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	ds, err := LoadDataSet()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	out, err := ds.Convert(finbase.M(amount, c.from), c.to, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s\n", out.Round())
	return subcommands.ExitSuccess
}
