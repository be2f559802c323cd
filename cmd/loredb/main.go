package main

import (
	"os"

	"github.com/roach88/loredb/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewRootCommand(), os.Stderr))
}
