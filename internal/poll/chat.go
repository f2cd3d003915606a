package poll

import (
	"github.com/evcraddock/domaindeck/internal/message"
	"github.com/evcraddock/domaindeck/internal/user"
)

// Chat is the conversation open in the client: either one that exists on
// the server or a draft with a peer nothing has been sent to yet.
type Chat interface {
	Peer() user.Profile
	chat()
}

// Persisted is a chat backed by an existing conversation.
type Persisted struct {
	Conversation *message.Conversation
}

// Peer implements Chat.
func (p Persisted) Peer() user.Profile { return p.Conversation.OtherUser }

func (Persisted) chat() {}

// Draft is a chat with a peer that has no messages yet. Sending the first
// message creates the conversation.
type Draft struct {
	OtherUser user.Profile
}

// Peer implements Chat.
func (d Draft) Peer() user.Profile { return d.OtherUser }

func (Draft) chat() {}
