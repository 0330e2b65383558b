package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/visorhr/visorhr-ui/internal/adapters/authapi"
	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
)

func (c *cli) backend() (*authapi.Client, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return authapi.New(authapi.Config{AuthBaseURL: cfg.Backend.AuthBaseURL(), Timeout: cfg.Backend.Timeout})
}

func (c *cli) checkAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-accounts",
		Short: "Report whether the backend has any user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.backend()
			if err != nil {
				return err
			}
			exist, err := client.CheckAccountsExist(cmd.Context())
			if err != nil {
				return fmt.Errorf("check accounts: %w", err)
			}
			if exist {
				fmt.Fprintln(cmd.OutOrStdout(), "accounts exist: registration requires an administrator")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "no accounts: the first registration is open")
			}
			return nil
		},
	}
}

func (c *cli) validateAdminCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "validate-admin",
		Short: "Check administrator credentials against the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(username) == "" {
				return errors.New("--username is required")
			}
			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			client, err := c.backend()
			if err != nil {
				return err
			}
			msg, err := client.ValidateAdmin(cmd.Context(), username, password)
			if err != nil {
				return errors.New(domainauth.UserMessage(err, "admin validation failed"))
			}
			if msg == "" {
				msg = "administrator validated"
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "administrator username")
	return cmd
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Admin password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}
