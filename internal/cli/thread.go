package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/domaindeck/internal/poll"
)

func newThreadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "thread <user>",
		Short: "Show your messages with a user",
		Long:  "Show the full message history with a user (by ID or email) and mark their messages read.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := newAPIClient()
			if err != nil {
				return err
			}

			peer, err := resolvePeer(ctx, c, args[0])
			if err != nil {
				return err
			}

			session := poll.NewSession(c, c.UserID())
			if err := session.LoadConversations(ctx); err != nil {
				return err
			}
			if err := session.OpenChat(ctx, peer); err != nil {
				return err
			}

			if isJSON() {
				return printJSON(session.Thread())
			}

			fmt.Printf("Conversation with %s:\n\n", peer.Name)
			printThread(session.Thread(), c.UserID())
			return nil
		},
	}
}
