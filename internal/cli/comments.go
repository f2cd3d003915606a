package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/domaindeck/internal/comment"
)

func newCommentsCmd() *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Show the comment thread",
		Long:  "Show the comments you can see as a thread, newest first. Unread comments are marked with *.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient()
			if err != nil {
				return err
			}

			comments, err := c.ListComments(cmd.Context(), projectID)
			if err != nil {
				return err
			}

			roots := comment.BuildThread(comments)
			if isJSON() {
				return printJSON(roots)
			}

			if projectID != "" {
				fmt.Printf("Comments for project %s:\n\n", projectID)
			}
			printCommentTree(roots, c.UserID())
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "only show comments on this project")

	return cmd
}
