package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Badges are the unread counters shown by dd unread.
type Badges struct {
	Messages       int `json:"messages"`
	Comments       int `json:"comments"`
	UnreadComments int `json:"unreadComments"`
}

func newUnreadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unread",
		Short: "Show unread counts",
		Long:  "Show how many messages you have not read, and how many comments are addressed to you.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := newAPIClient()
			if err != nil {
				return err
			}

			var b Badges
			if b.Messages, err = c.UnreadMessages(ctx); err != nil {
				return err
			}
			if b.Comments, err = c.CommentNotificationCount(ctx, false); err != nil {
				return err
			}
			if b.UnreadComments, err = c.CommentNotificationCount(ctx, true); err != nil {
				return err
			}

			if isJSON() {
				return printJSON(b)
			}
			fmt.Printf("Messages: %d unread\n", b.Messages)
			fmt.Printf("Comments: %d unread of %d addressed to you\n", b.UnreadComments, b.Comments)
			return nil
		},
	}
}
