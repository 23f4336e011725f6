package repository

import (
	"context"
	"errors"
	"time"

	"anonchat/models"
)

// ErrDuplicateRoom is returned by InsertRoom when a room with the same
// name already exists.
var ErrDuplicateRoom = errors.New("room already exists")

// Store is the persistence contract shared by the durable Postgres backend
// and the volatile in-memory fallback. The backend is picked once at
// startup by Open; callers never know which implementation is active.
type Store interface {
	// InsertRoom adds a new room. Callers are expected to pre-check with
	// FindRoom; a concurrent create can still surface ErrDuplicateRoom.
	InsertRoom(ctx context.Context, room *models.Room) error
	// FindRoom returns the room, or (nil, nil) when it does not exist.
	FindRoom(ctx context.Context, name string) (*models.Room, error)
	// AddMember adds username to the room's user set. Idempotent; a no-op
	// when the user is already present or the room is absent.
	AddMember(ctx context.Context, name, username string) error
	// RemoveMember removes username from the room's user set. Idempotent.
	RemoveMember(ctx context.Context, name, username string) error
	// DeleteRoom removes the room and cascades to all of its messages.
	DeleteRoom(ctx context.Context, name string) error
	// InsertMessage appends a message to its room's history and assigns
	// its ID.
	InsertMessage(ctx context.Context, msg *models.Message) error
	// ListMessages returns the room's messages ordered by timestamp
	// ascending.
	ListMessages(ctx context.Context, roomName string) ([]models.Message, error)
	// ListExpiredRooms returns the names of rooms whose expiry lies
	// before asOf.
	ListExpiredRooms(ctx context.Context, asOf time.Time) ([]string, error)
}
