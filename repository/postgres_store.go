package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"anonchat/models"
)

// PostgresStore is the durable backend on top of gorm. It relies on the
// database for concurrency control; membership updates run in a
// transaction.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore wraps an open gorm handle. The handle must already
// have the rooms and messages tables migrated; Open takes care of both.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertRoom(ctx context.Context, room *models.Room) error {
	if err := s.db.WithContext(ctx).Create(room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateRoom
		}
		return fmt.Errorf("failed to insert room: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindRoom(ctx context.Context, name string) (*models.Room, error) {
	var room models.Room
	err := s.db.WithContext(ctx).First(&room, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return &room, nil
}

func (s *PostgresStore) AddMember(ctx context.Context, name, username string) error {
	return s.updateUsers(ctx, name, func(users []string) ([]string, bool) {
		for _, u := range users {
			if u == username {
				return users, false
			}
		}
		return append(users, username), true
	})
}

func (s *PostgresStore) RemoveMember(ctx context.Context, name, username string) error {
	return s.updateUsers(ctx, name, func(users []string) ([]string, bool) {
		for i, u := range users {
			if u == username {
				return append(users[:i], users[i+1:]...), true
			}
		}
		return users, false
	})
}

// updateUsers applies a set mutation to a room's user list inside a
// transaction. An absent room is a no-op.
func (s *PostgresStore) updateUsers(ctx context.Context, name string, mutate func([]string) ([]string, bool)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		err := tx.First(&room, "name = ?", name).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load room members: %w", err)
		}

		users, changed := mutate(room.Users)
		if !changed {
			return nil
		}
		if err := tx.Model(&models.Room{}).Where("name = ?", name).Update("users", users).Error; err != nil {
			return fmt.Errorf("failed to update room members: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) DeleteRoom(ctx context.Context, name string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_name = ?", name).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete room messages: %w", err)
		}
		if err := tx.Where("name = ?", name).Delete(&models.Room{}).Error; err != nil {
			return fmt.Errorf("failed to delete room: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, roomName string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("room_name = ?", roomName).
		Order("timestamp ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

func (s *PostgresStore) ListExpiredRooms(ctx context.Context, asOf time.Time) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("expire_at < ?", asOf).
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expired rooms: %w", err)
	}
	return names, nil
}
