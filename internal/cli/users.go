package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/domaindeck/internal/client"
	"github.com/evcraddock/domaindeck/internal/user"
)

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users",
		Long:  "List every user you can message or address comments to.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient()
			if err != nil {
				return err
			}

			users, err := c.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(users)
			}
			return printUsers(users, time.Now())
		},
	}
}

// resolvePeer finds a user by ID or email.
func resolvePeer(ctx context.Context, c *client.Client, ref string) (user.Profile, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return user.Profile{}, err
	}
	return findUser(users, ref)
}

func findUser(users []user.Profile, ref string) (user.Profile, error) {
	ref = strings.TrimSpace(ref)
	for _, u := range users {
		if u.ID == ref || strings.EqualFold(u.Email, ref) {
			return u, nil
		}
	}
	return user.Profile{}, fmt.Errorf("no user matches %q", ref)
}
