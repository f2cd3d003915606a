package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/domaindeck/internal/comment"
)

func newCommentCmd() *cobra.Command {
	var (
		projectID string
		replyTo   string
		visibleTo []string
	)

	cmd := &cobra.Command{
		Use:   `comment "text"`,
		Short: "Post a comment or reply",
		Long: `Post a comment, optionally on a project and limited to some users.

A reply (--reply-to) always shares its parent's project and audience;
--project and --to are ignored for replies.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient()
			if err != nil {
				return err
			}

			in := comment.NewComment{
				Text:      strings.Join(args, " "),
				VisibleTo: visibleTo,
			}
			if projectID != "" {
				in.ProjectID = &projectID
			}
			if replyTo != "" {
				in.ParentID = &replyTo
			}

			comm, err := c.PostComment(cmd.Context(), in)
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(comm)
			}

			printCommentSingle(comm)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "project the comment is about")
	cmd.Flags().StringVar(&replyTo, "reply-to", "", "ID of the comment to reply to")
	cmd.Flags().StringSliceVar(&visibleTo, "to", nil, "user IDs allowed to see the comment (default: everyone)")

	return cmd
}
