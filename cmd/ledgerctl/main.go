package main

import (
	"os"

	"github.com/spec-kit/contract-ledger/cmd/ledgerctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
