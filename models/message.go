package models

import "time"

// MessageTypeText is the kind assigned to inbound frames that carry no
// explicit type. Clients may send other kinds (attachment markers and the
// like); the server stores and relays them untouched.
const MessageTypeText = "text"

// Message is one chat message in a room. Messages are immutable once
// created and are only ever deleted in bulk when their room expires.
// ReplyTo optionally references the ID of an earlier message in the same
// room.
type Message struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	RoomName    string    `json:"room_name" gorm:"index;not null"`
	Username    string    `json:"username"`
	MessageType string    `json:"message_type"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	ReplyTo     *int64    `json:"reply_to,omitempty"`
}

func (Message) TableName() string { return "messages" }
