package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/finbase/finbase"
)

// checkCmd holds the flags for the 'check' subcommand.
type checkCmd struct {
	verbose bool
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "load the dataset and report integrity and validation errors" }
func (*checkCmd) Usage() string {
	return `fbs check [-v]

  Loads the dataset file, runs link resolution, map rebuild and the touch
  pass, then reports every validation error found.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.verbose, "v", false, "also list clean entities")
}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	ds, err := LoadDataSet()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	ds.ValidateAll()

	broken := 0
	for _, k := range finbase.Kinds() {
		for it := range ds.List(k).Items() {
			errs := it.Errors()
			if errs.Empty() {
				if c.verbose {
					fmt.Printf("%v %d %q: ok\n", k, it.ID(), it.Name())
				}
				continue
			}
			broken++
			fmt.Printf("%v %d %q: %v\n", k, it.ID(), it.Name(), errs)
		}
	}
	if broken > 0 {
		fmt.Fprintf(os.Stderr, "%d entities with validation errors\n", broken)
		return subcommands.ExitFailure
	}
	fmt.Println("dataset is consistent")
	return subcommands.ExitSuccess
}
