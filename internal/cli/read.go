package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <comment-id>...",
		Short: "Mark comments as read",
		Long:  "Mark one or more comments as read. Comments you have already read are left alone.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient()
			if err != nil {
				return err
			}

			for _, id := range args {
				if _, err := c.MarkCommentRead(cmd.Context(), id); err != nil {
					return fmt.Errorf("marking %s read: %w", id, err)
				}
			}

			if !isJSON() {
				fmt.Printf("Marked %d comment(s) read.\n", len(args))
			}
			return nil
		},
	}
}
