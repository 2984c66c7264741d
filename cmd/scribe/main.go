package main

import (
	"fmt"
	"os"

	"media-scribe/internal/bootstrap"
	"media-scribe/internal/cli"
)

func main() {
	env, err := bootstrap.LoadEnvironment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = env.Logger.Sync() }()

	if err := cli.NewRootCmd(&cli.Dependencies{Env: env}).Execute(); err != nil {
		os.Exit(1)
	}
}
