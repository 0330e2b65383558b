// Command visorhr-admin holds operator tools for the VisorHR browser client: schema
// inspection, date checks, backend probes and session cache maintenance.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/visorhr/visorhr-ui/config"
	"github.com/visorhr/visorhr-ui/internal/bootstrap"
)

func main() {
	logger := bootstrap.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(&cli{loadConfig: bootstrap.LoadConfig, now: time.Now})
	if err := root.ExecuteContext(ctx); err != nil {
		logger.ErrorContext(ctx, "command failed", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

// cli carries what subcommands share. Configuration is loaded only by commands
// that talk to the backend or the session cache.
type cli struct {
	loadConfig func() (config.AppConfig, error)
	now        func() time.Time
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "visorhr-admin",
		Short:         "Operator tools for the VisorHR browser client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		c.schemaCmd(),
		c.normalizeDateCmd(),
		c.checkAccountsCmd(),
		c.validateAdminCmd(),
		c.sessionCmd(),
	)
	return root
}
