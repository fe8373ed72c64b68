package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lewisedginton/gemini_relay_bot/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.NewApp(version).RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
