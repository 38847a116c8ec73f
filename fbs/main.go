package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/finbase/finbase/cmd"
)

func main() {
	// shell completion: returns immediately unless invoked by the shell.
	completion := &complete.Command{
		Sub: map[string]*complete.Command{
			"check":   {Flags: map[string]complete.Predictor{"v": predict.Nothing}},
			"list":    {Flags: map[string]complete.Predictor{"kind": predict.Set{"account", "payee", "security", "portfolio", "transaction", "rate", "taxyear"}}},
			"convert": {},
		},
		Flags: map[string]complete.Predictor{
			"dataset-file": predict.Files("*.db"),
		},
	}
	completion.Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
