package main

import (
	"fmt"
	"os"

	"github.com/goliatone/go-statedef/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "statedef:", err)
		os.Exit(1)
	}
}
