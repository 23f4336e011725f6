package ws

import (
	"time"

	"anonchat/models"
)

// Outbound frame types on the real-time channel.
const (
	frameHistory    = "history"
	frameMessage    = "message"
	frameUserJoined = "user_joined"
	frameUserLeft   = "user_left"
)

// inboundFrame is what a client sends: an optional message kind, the
// content, and an optional reference to an earlier message in the room.
type inboundFrame struct {
	Type    string `json:"type,omitempty"`
	Content string `json:"content"`
	ReplyTo *int64 `json:"reply_to,omitempty"`
}

// historyFrame replays the room's backlog as a single batch right after
// connect, before any live traffic.
type historyFrame struct {
	Type     string           `json:"type"`
	Messages []models.Message `json:"messages"`
}

// presenceFrame announces a member joining or leaving.
type presenceFrame struct {
	Type      string    `json:"type"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// messageFrame carries one live chat message with its server-assigned
// identity and timestamp.
type messageFrame struct {
	Type        string    `json:"type"`
	ID          int64     `json:"id"`
	MessageType string    `json:"message_type"`
	Username    string    `json:"username"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	ReplyTo     *int64    `json:"reply_to,omitempty"`
}

func newMessageFrame(m *models.Message) messageFrame {
	return messageFrame{
		Type:        frameMessage,
		ID:          m.ID,
		MessageType: m.MessageType,
		Username:    m.Username,
		Content:     m.Content,
		Timestamp:   m.Timestamp,
		ReplyTo:     m.ReplyTo,
	}
}
