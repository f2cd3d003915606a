// Package cli defines the cobra command tree for domaindeck.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/domaindeck/internal/client"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dd",
		Short:         "Track projects and talk about them",
		Long:          "A tool to track projects and domains, comment on them, and message collaborators. Serves the API and talks to it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path for serve (default: ~/.domaindeck/domaindeck.db)")

	root.AddCommand(
		newServeCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newUsersCmd(),
		newCommentsCmd(),
		newCommentCmd(),
		newReadCmd(),
		newNotificationsCmd(),
		newInboxCmd(),
		newThreadCmd(),
		newSendCmd(),
		newUnreadCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	return root
}

// newAPIClient creates an HTTP client for the domaindeck API acting as the
// logged-in user.
func newAPIClient() (*client.Client, error) {
	userID := getUserID()
	if userID == "" {
		return nil, fmt.Errorf("not logged in; run 'dd login' first")
	}
	return client.New(getServerURL(), userID), nil
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}
