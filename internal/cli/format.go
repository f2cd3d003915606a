package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/evcraddock/domaindeck/internal/comment"
	"github.com/evcraddock/domaindeck/internal/message"
	"github.com/evcraddock/domaindeck/internal/user"
)

const timeLayout = "2006-01-02 15:04"

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printCommentTree prints a comment forest, replies indented under their
// parent. Unread comments are flagged with a star.
func printCommentTree(roots []*comment.Node, self string) {
	if len(roots) == 0 {
		fmt.Println("No comments.")
		return
	}

	comment.Walk(roots, func(n *comment.Node, depth int) {
		c := n.Comment
		indent := strings.Repeat("    ", depth)
		fmt.Printf("%s%s[%s] %s (%s)%s\n", indent, unreadMark(c, self),
			c.CreatedAt.Local().Format(timeLayout), c.AuthorName, c.ID, audience(c))
		fmt.Printf("%s  %s\n\n", indent, c.Text)
	})
}

// printCommentList prints comments flat, in the given order.
func printCommentList(comments []*comment.Comment, self string) {
	if len(comments) == 0 {
		fmt.Println("No comments.")
		return
	}

	for _, c := range comments {
		fmt.Printf("%s[%s] %s (%s)%s\n  %s\n\n", unreadMark(c, self),
			c.CreatedAt.Local().Format(timeLayout), c.AuthorName, c.ID, audience(c), c.Text)
	}
}

// printCommentSingle prints a single comment in text format.
func printCommentSingle(c *comment.Comment) {
	fmt.Printf("Comment %s added.\n  %s\n", c.ID, c.Text)
}

func unreadMark(c *comment.Comment, self string) string {
	if c.IsReadBy(self) {
		return "  "
	}
	return "* "
}

func audience(c *comment.Comment) string {
	if len(c.VisibleTo) == 0 {
		return ""
	}
	return " to " + strings.Join(c.VisibleTo, ", ")
}

// printConversations prints the conversation list as a table.
func printConversations(convs []*message.Conversation) error {
	if len(convs) == 0 {
		fmt.Println("No conversations.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "USER\tID\tUNREAD\tLAST\tMESSAGE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "----\t--\t------\t----\t-------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, c := range convs {
		unread := "-"
		if c.UnreadCount > 0 {
			unread = fmt.Sprintf("%d", c.UnreadCount)
		}
		last, text := "-", ""
		if c.LastMessage != nil {
			last = c.LastMessage.CreatedAt.Local().Format(timeLayout)
			text = truncate(c.LastMessage.Text, 40)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.OtherUser.Name, c.OtherUser.ID, unread, last, text); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	return w.Flush()
}

// printThread prints a message history as seen by self.
func printThread(msgs []*message.Message, self string) {
	if len(msgs) == 0 {
		fmt.Println("No messages yet.")
		return
	}

	for _, m := range msgs {
		who := m.SenderName
		if m.SenderID == self {
			who = "you"
		}
		receipt := ""
		if m.SenderID == self && m.ReadAt != nil {
			receipt = " ✓"
		}
		fmt.Printf("[%s] %s: %s%s\n", m.CreatedAt.Local().Format(timeLayout), who, m.Text, receipt)
	}
}

// printUsers prints user profiles as a table.
func printUsers(users []user.Profile, now time.Time) error {
	if len(users) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tLAST SEEN"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t-----\t----\t---------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, u := range users {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			u.ID, truncate(u.Name, 30), u.Email, u.Role, formatLastSeen(u.LastSeen, now)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d users\n", len(users))
	return nil
}

// formatLastSeen renders a heartbeat time relative to now.
func formatLastSeen(t *time.Time, now time.Time) string {
	if t == nil {
		return "never"
	}
	d := now.Sub(*t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Local().Format("2006-01-02")
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
