package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/domaindeck/internal/comment"
)

func newNotificationsCmd() *cobra.Command {
	var unreadOnly bool

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List comments addressed to you",
		Long:  "List every comment addressed to you across all projects, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient()
			if err != nil {
				return err
			}

			comments, err := c.CommentNotifications(cmd.Context())
			if err != nil {
				return err
			}
			if unreadOnly {
				comments = unreadComments(comments, c.UserID())
			}

			if isJSON() {
				return printJSON(comments)
			}

			printCommentList(comments, c.UserID())
			fmt.Printf("Total: %d\n", len(comments))
			return nil
		},
	}

	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "only show comments you have not read")

	return cmd
}

func unreadComments(comments []*comment.Comment, self string) []*comment.Comment {
	out := make([]*comment.Comment, 0, len(comments))
	for _, c := range comments {
		if !c.IsReadBy(self) {
			out = append(out, c)
		}
	}
	return out
}
