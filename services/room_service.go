package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"anonchat/models"
	"anonchat/repository"
)

// RoomView is what the registry exposes about a room. The stored password
// is never part of it, only whether one is required.
type RoomView struct {
	Name        string
	Users       []string
	ExpireAt    time.Time
	HasPassword bool
}

// RoomService owns the room lifecycle: creation, join validation,
// membership mutation, and lazy eviction of expired rooms.
type RoomService struct {
	store  repository.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewRoomService(store repository.Store, logger *slog.Logger) *RoomService {
	return &RoomService{store: store, logger: logger, now: time.Now}
}

// Create registers a new room with the creator as its first member. The
// FindRoom pre-check and the insert are not atomic; a concurrent create
// that slips past the check surfaces as ErrRoomExists via the backend's
// duplicate-key failure.
func (s *RoomService) Create(ctx context.Context, name, password, creator string, expireMinutes int) error {
	if expireMinutes <= 0 {
		return ErrInvalidExpiry
	}

	existing, err := s.store.FindRoom(ctx, name)
	if err != nil {
		return fmt.Errorf("create room %q: %w", name, err)
	}
	if existing != nil {
		return ErrRoomExists
	}

	var hashed string
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("create room %q: %w", name, err)
		}
		hashed = string(h)
	}

	now := s.now().UTC()
	room := &models.Room{
		Name:      name,
		Password:  hashed,
		Creator:   creator,
		CreatedAt: now,
		ExpireAt:  now.Add(time.Duration(expireMinutes) * time.Minute),
		Users:     []string{creator},
	}
	if err := s.store.InsertRoom(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicateRoom) {
			return ErrRoomExists
		}
		return fmt.Errorf("create room %q: %w", name, err)
	}

	s.logger.Info("room created", "room", name, "creator", creator, "expire_at", room.ExpireAt)
	return nil
}

// Join validates the room and adds username to its membership. Rejoining
// an existing member is not an error.
func (s *RoomService) Join(ctx context.Context, name, password, username string) (*RoomView, error) {
	room, err := s.lookupLive(ctx, name)
	if err != nil {
		return nil, err
	}

	if room.HasPassword() {
		if password == "" || bcrypt.CompareHashAndPassword([]byte(room.Password), []byte(password)) != nil {
			return nil, ErrWrongPassword
		}
	}

	if err := s.store.AddMember(ctx, name, username); err != nil {
		return nil, fmt.Errorf("join room %q: %w", name, err)
	}
	return &RoomView{Name: room.Name, HasPassword: room.HasPassword()}, nil
}

// Get returns the room view after the same liveness checks as Join.
func (s *RoomService) Get(ctx context.Context, name string) (*RoomView, error) {
	room, err := s.lookupLive(ctx, name)
	if err != nil {
		return nil, err
	}

	users := room.Users
	if users == nil {
		users = []string{}
	}
	return &RoomView{
		Name:        room.Name,
		Users:       users,
		ExpireAt:    room.ExpireAt,
		HasPassword: room.HasPassword(),
	}, nil
}

// Leave removes username from the room. Fire-and-forget cleanup: absent
// rooms and non-members are not errors.
func (s *RoomService) Leave(ctx context.Context, name, username string) error {
	if err := s.store.RemoveMember(ctx, name, username); err != nil {
		return fmt.Errorf("leave room %q: %w", name, err)
	}
	return nil
}

// lookupLive finds the room and lazily evicts it when its expiry has
// passed, cascading to its messages via the backend delete.
func (s *RoomService) lookupLive(ctx context.Context, name string) (*models.Room, error) {
	room, err := s.store.FindRoom(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find room %q: %w", name, err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if room.Expired(s.now()) {
		if err := s.store.DeleteRoom(ctx, name); err != nil {
			s.logger.Error("failed to evict expired room", "room", name, "error", err)
		}
		return nil, ErrRoomExpired
	}
	return room, nil
}
