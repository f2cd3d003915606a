package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/domaindeck/internal/logging"
	"github.com/evcraddock/domaindeck/internal/poll"
)

func newWatchCmd() *cobra.Command {
	var (
		interval time.Duration
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print new comments and messages as they arrive",
		Long: `Poll the server for new comments and messages and print one line per
sender until interrupted. Only items created after the watch starts are
reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient()
			if err != nil {
				return err
			}
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session := poll.NewSession(c, c.UserID(),
				poll.WithLogger(logging.New(os.Stderr, verbose)),
				poll.WithNotifier(poll.WriterNotifier{W: os.Stdout}),
				poll.WithInterval(interval),
			)
			session.Start()
			session.RefreshUnread(ctx)

			fmt.Printf("Watching %s every %s (%d unread messages). Ctrl-C to stop.\n",
				getServerURL(), interval, session.Unread())
			session.Run(ctx)
			fmt.Println("Stopped.")
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", poll.DefaultInterval, "time between polls")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each poll to stderr")

	return cmd
}
