// Package main is the entry point for the jiragraph CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/danielolaszy/jiragraph/cmd"
	"github.com/danielolaszy/jiragraph/internal/logging"
)

// main is the entry point of the application.
// It executes the root command and handles any errors that occur.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logging.Debug("starting jiragraph", "version", "1.0.0", "log_level", logging.LevelFromEnv())

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
