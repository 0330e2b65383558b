package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/visorhr/visorhr-ui/internal/bootstrap"
	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
	"github.com/visorhr/visorhr-ui/internal/ports"
)

func (c *cli) sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or clear persisted view sessions",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <view-id>",
			Short: "Print the cached session of a view",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withSessionCache(cmd, func(cache ports.SessionCache) error {
					data, err := cache.Load(cmd.Context(), args[0])
					if errors.Is(err, ports.ErrNotCached) {
						fmt.Fprintln(cmd.OutOrStdout(), "no cached session")
						return nil
					}
					if err != nil {
						return err
					}
					s, err := domainauth.ParseSession(data)
					if err != nil {
						return fmt.Errorf("cached session is corrupt: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "username: %s\nemail: %s\n", s.Username, s.Email)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "clear <view-id>...",
			Short: "Forget the cached session of one or more views",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withSessionCache(cmd, func(cache ports.SessionCache) error {
					for _, id := range args {
						if err := cache.Delete(cmd.Context(), id); err != nil {
							return fmt.Errorf("clear %s: %w", id, err)
						}
						fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", id)
					}
					return nil
				})
			},
		},
	)
	return cmd
}

// withSessionCache only reaches shared state when Redis is enabled; the in-memory
// cache belongs to a running server process.
func (c *cli) withSessionCache(cmd *cobra.Command, fn func(ports.SessionCache) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Redis.Enabled {
		return errors.New("session cache is in-process; set REDIS_ENABLED=true to manage it")
	}
	res, err := bootstrap.NewSessionCache(cmd.Context(), &cfg, ports.SystemClock{}, slog.Default())
	if err != nil {
		return err
	}
	return errors.Join(fn(res.Cache), res.Close())
}
