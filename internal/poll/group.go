package poll

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/evcraddock/domaindeck/internal/comment"
	"github.com/evcraddock/domaindeck/internal/message"
)

// PreviewLength is how much of a comment body a notification shows.
const PreviewLength = 50

// Notification is one display line produced from a delta.
type Notification struct {
	Stream     string
	SenderID   string
	SenderName string
	Count      int
	Title      string
	Body       string
}

// Group is the run of delta items from one sender.
type Group[T any] struct {
	SenderID   string
	SenderName string
	Items      []T
}

// GroupBySender partitions items by sender in order of first appearance,
// keeping each sender's items in their original order.
func GroupBySender[T any](items []T, sender func(T) (id, name string)) []Group[T] {
	var groups []Group[T]
	index := make(map[string]int)
	for _, item := range items {
		id, name := sender(item)
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, Group[T]{SenderID: id, SenderName: name})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// MessageNotifications builds one notification per sender in a message delta.
func MessageNotifications(groups []Group[*message.Incoming]) []Notification {
	out := make([]Notification, 0, len(groups))
	for _, g := range groups {
		n := Notification{
			Stream:     StreamMessages,
			SenderID:   g.SenderID,
			SenderName: g.SenderName,
			Count:      len(g.Items),
			Body:       "From: " + g.SenderName,
		}
		if len(g.Items) > 1 {
			n.Title = fmt.Sprintf("%d new messages from %s", len(g.Items), g.SenderName)
		} else {
			n.Title = g.Items[0].Message.Text
		}
		out = append(out, n)
	}
	return out
}

// CommentNotifications builds one notification per author in a comment delta.
func CommentNotifications(groups []Group[*comment.Comment]) []Notification {
	out := make([]Notification, 0, len(groups))
	for _, g := range groups {
		n := Notification{
			Stream:     StreamComments,
			SenderID:   g.SenderID,
			SenderName: g.SenderName,
			Count:      len(g.Items),
		}
		if len(g.Items) > 1 {
			n.Title = fmt.Sprintf("%d new comments from %s", len(g.Items), g.SenderName)
		} else {
			n.Title = "New comment from " + g.SenderName
		}
		n.Body = Truncate(g.Items[0].Text, PreviewLength)
		out = append(out, n)
	}
	return out
}

// Truncate shortens s to n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
