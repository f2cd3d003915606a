package cli

import (
	"github.com/spf13/cobra"
)

func newInboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inbox",
		Short: "List conversations",
		Long:  "List one conversation per person you have exchanged messages with, most recent first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient()
			if err != nil {
				return err
			}

			convs, err := c.Conversations(cmd.Context())
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(convs)
			}
			return printConversations(convs)
		},
	}
}
