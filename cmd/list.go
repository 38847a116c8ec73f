package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/finbase/finbase"
)

// listCmd holds the flags for the 'list' subcommand.
type listCmd struct {
	kind string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list the entities of one kind" }
func (*listCmd) Usage() string {
	return `fbs list -kind <kind>

  Lists the entities of the given kind (account, payee, security,
  portfolio, transaction, rate, taxyear) in list order.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "account", "Entity kind to list")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	kind, err := finbase.ParseKind(c.kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	ds, err := LoadDataSet()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for it := range ds.List(kind).Items() {
		state := it.State()
		touched := ""
		if it.Touch().Active() {
			touched = fmt.Sprintf(" referenced %v..%v", it.Touch().Earliest(), it.Touch().Latest())
		}
		fmt.Printf("%d\t%s\t%v%s\n", it.ID(), it.Name(), state, touched)
	}
	return subcommands.ExitSuccess
}
