package main

import (
	"context"
	"fmt"
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

func main() {
	root := cli.NewRootCommand(func(ctx context.Context) (sheets.Workbook, func() error, error) {
		cfg, err := cli.LoadConfig(nil)
		if err != nil {
			return nil, nil, err
		}
		// Logs go to stderr so command output stays clean.
		logger := log.New(log.Config{Level: cfg.SlogLevel(), Component: log.ComponentCLI, Output: os.Stderr})
		log.SetDefault(logger)
		res, err := cli.OpenBackend(ctx, logger, cfg, nil)
		if err != nil {
			return nil, nil, err
		}
		return res.Backend, res.Cleanup, nil
	})

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
