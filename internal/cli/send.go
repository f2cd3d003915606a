package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/domaindeck/internal/poll"
)

func newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   `send <user> "text"`,
		Short: "Send a direct message",
		Long:  "Send a direct message to a user (by ID or email). The first message to someone starts the conversation.",
		Args:  cobra.MinimumNArgs(2),
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
			_, draft := session.ActiveChat().(poll.Draft)

			m, err := session.Send(ctx, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(m)
			}
			if draft {
				fmt.Printf("Started a conversation with %s.\n", peer.Name)
			} else {
				fmt.Printf("Message sent to %s.\n", peer.Name)
			}
			return nil
		},
	}
}
