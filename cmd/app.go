// Package cmd implements the CLI application to inspect and maintain a
// finbase dataset file.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/finbase/finbase"
	"github.com/finbase/finbase/store"
	"github.com/finbase/finbase/vault"
)

// Register the subcommands.
// A main package calls Register() to declare subcommands, and Execute() on
// the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&checkCmd{}, "dataset")
	c.Register(&listCmd{}, "dataset")
	c.Register(&convertCmd{}, "currencies")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var datasetFile = flag.String("dataset-file", "finbase.db", "Path to the dataset file")
var defaultCurrency = flag.String("default-currency", "EUR", "Default (pivot) currency of the dataset")
var passphrase = flag.String("passphrase", "", "Passphrase unlocking encrypted fields (FINBASE_PASSPHRASE if unset)")

// LoadDataSet opens the dataset file and runs the full load pipeline.
func LoadDataSet() (*finbase.DataSet, error) {
	cipher, err := openCipher()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(*datasetFile)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.LoadDataSet(cipher, *defaultCurrency)
}

func openCipher() (finbase.Cipherer, error) {
	pass := *passphrase
	if pass == "" {
		pass = os.Getenv("FINBASE_PASSPHRASE")
	}
	if pass == "" {
		return nil, fmt.Errorf("no passphrase given, set -passphrase or FINBASE_PASSPHRASE")
	}
	// The salt is fixed per dataset file; deriving it from the file name
	// keeps this reference CLI free of a separate key file.
	salt := make([]byte, vault.SaltSize)
	copy(salt, *datasetFile)
	key, err := vault.DeriveKey(pass, salt)
	if err != nil {
		return nil, err
	}
	return vault.NewCipher(key)
}
