package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/domaindeck/internal/client"
)

func newLoginCmd() *cobra.Command {
	var (
		server string
		email  string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store your user ID",
		Long:  "Checks your email and password against the server and stores the returned user ID for later commands.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), os.Stdin, server, email)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from config or http://localhost:8080)")
	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when omitted)")

	return cmd
}

func runLogin(ctx context.Context, in io.Reader, serverFlag, email string) error {
	serverURL := serverFlag
	if serverURL == "" {
		serverURL = getServerURL()
	}
	serverURL = strings.TrimRight(serverURL, "/")

	reader := bufio.NewReader(in)
	if email == "" {
		fmt.Print("Email: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading input: %w", err)
		}
		email = line
	}
	fmt.Print("Password: ")
	password, err := reader.ReadString('\n')
	if err != nil && password == "" {
		return fmt.Errorf("reading input: %w", err)
	}

	email = strings.TrimSpace(email)
	password = strings.TrimRight(password, "\r\n")
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	profile, err := client.New(serverURL, "").Login(ctx, email, password)
	if err != nil {
		return err
	}

	// Load existing config to preserve other fields
	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}

	cfg.UserID = profile.ID
	cfg.UserName = profile.Name
	if serverFlag != "" {
		cfg.ServerURL = serverURL
	}

	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\n✓ Logged in as %s (%s).\n", profile.Name, profile.Role)
	return nil
}

// validateCredentials checks that both login fields are present.
func validateCredentials(email, password string) error {
	if email == "" {
		return fmt.Errorf("no email provided")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email %q", email)
	}
	if password == "" {
		return fmt.Errorf("no password provided")
	}
	return nil
}
