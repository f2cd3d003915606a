package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/domaindeck/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and login status",
		Long:  "Tests the connection to the server and checks that the stored user ID still resolves.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
}

func runStatus(ctx context.Context) error {
	serverURL := getServerURL()
	userID := getUserID()

	fmt.Printf("Server:  %s\n", serverURL)

	if userID == "" {
		fmt.Println("User:    not logged in")
		fmt.Println("\nRun 'dd login' to authenticate.")
		return nil
	}
	fmt.Printf("User:    %s\n", userID)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	profile, err := client.New(serverURL, userID).Me(ctx, userID)
	var apiErr *client.APIError
	switch {
	case err == nil:
		fmt.Printf("Status:  ✓ connected as %s (%s)\n", profile.Name, profile.Role)
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		fmt.Println("Status:  ✗ user no longer exists")
		fmt.Println("\nRun 'dd login' to re-authenticate.")
	case errors.As(err, &apiErr):
		fmt.Printf("Status:  ✗ unexpected response (%d)\n", apiErr.Status)
	default:
		fmt.Printf("Status:  ✗ cannot reach server (%v)\n", err)
	}

	return nil
}
