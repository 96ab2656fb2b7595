// Command learnhub runs the LearnHub API and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/deppfellow/learnhub/internal/config"
	"github.com/deppfellow/learnhub/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd wires the subcommands. Errors are printed once by main.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "learnhub",
		Short:         "LearnHub course platform API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newProvisionReadOnlyCmd(),
	)

	return root
}

// bootstrap loads the config and builds the logger every command needs.
// The caller shuts the logger service down.
func bootstrap() (*config.Config, *zerolog.Logger, *logger.LoggerService, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return cfg, &log, loggerService, nil
}
