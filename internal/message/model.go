// Package message provides the pairwise direct messaging engine.
package message

import (
	"time"

	"github.com/evcraddock/domaindeck/internal/user"
)

// Message is a direct message between two users. ReadAt is set once, by the
// receiver, and never cleared.
type Message struct {
	ID         string     `json:"id"`
	SenderID   string     `json:"senderId"`
	ReceiverID string     `json:"receiverId"`
	SenderName string     `json:"senderName"`
	Text       string     `json:"text"`
	CreatedAt  time.Time  `json:"createdAt"`
	ReadAt     *time.Time `json:"readAt"`
}

// Peer returns the party of m that is not userID.
func (m *Message) Peer(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Between reports whether m was exchanged between a and b.
func (m *Message) Between(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// UnreadBy reports whether m is addressed to userID and not yet read.
func (m *Message) UnreadBy(userID string) bool {
	return m.ReceiverID == userID && m.ReadAt == nil
}

// NewMessage is the input for sending a message.
type NewMessage struct {
	Text       string `json:"text" validate:"required"`
	ReceiverID string `json:"receiverId" validate:"required"`
}

// Conversation summarizes the history between a user and one peer.
type Conversation struct {
	OtherUser   user.Profile `json:"otherUser"`
	LastMessage *Message     `json:"lastMessage"`
	UnreadCount int          `json:"unreadCount"`
}

// Incoming is a newly received message with its sender's profile.
type Incoming struct {
	Message *Message     `json:"message"`
	Sender  user.Profile `json:"sender"`
}
