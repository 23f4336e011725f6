package models

import "time"

// Room is a named, time-bounded chat session with an optional password
// gate. Rooms are keyed by name; Users is the set of usernames that have
// joined. Password holds a bcrypt hash and is never serialized to API
// responses.
type Room struct {
	Name      string    `json:"name" gorm:"primaryKey"`
	Password  string    `json:"-"`
	Creator   string    `json:"creator"`
	CreatedAt time.Time `json:"created_at"`
	ExpireAt  time.Time `json:"expire_at"`
	Users     []string  `json:"users" gorm:"serializer:json"`
}

func (Room) TableName() string { return "rooms" }

// HasPassword reports whether joining the room requires a password.
func (r *Room) HasPassword() bool { return r.Password != "" }

// Expired reports whether the room's lifetime has passed at the given instant.
func (r *Room) Expired(now time.Time) bool { return now.After(r.ExpireAt) }
