package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"anonchat/models"
)

// MemoryStore is the volatile fallback backend. Everything lives in
// process memory and is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	seq      int64
	rooms    map[string]*models.Room
	messages map[string][]models.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:    make(map[string]*models.Room),
		messages: make(map[string][]models.Message),
	}
}

func (s *MemoryStore) InsertRoom(_ context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.Name]; ok {
		return ErrDuplicateRoom
	}
	s.rooms[room.Name] = copyRoom(room)
	return nil
}

func (s *MemoryStore) FindRoom(_ context.Context, name string) (*models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[name]
	if !ok {
		return nil, nil
	}
	return copyRoom(room), nil
}

func (s *MemoryStore) AddMember(_ context.Context, name, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[name]
	if !ok {
		return nil
	}
	for _, u := range room.Users {
		if u == username {
			return nil
		}
	}
	room.Users = append(room.Users, username)
	return nil
}

func (s *MemoryStore) RemoveMember(_ context.Context, name, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[name]
	if !ok {
		return nil
	}
	for i, u := range room.Users {
		if u == username {
			room.Users = append(room.Users[:i], room.Users[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) DeleteRoom(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, name)
	delete(s.messages, name)
	return nil
}

func (s *MemoryStore) InsertMessage(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	msg.ID = s.seq
	s.messages[msg.RoomName] = append(s.messages[msg.RoomName], *msg)
	return nil
}

func (s *MemoryStore) ListMessages(_ context.Context, roomName string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := append([]models.Message(nil), s.messages[roomName]...)
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs, nil
}

func (s *MemoryStore) ListExpiredRooms(_ context.Context, asOf time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for name, room := range s.rooms {
		if room.Expired(asOf) {
			names = append(names, name)
		}
	}
	return names, nil
}

// copyRoom detaches a room from the store's internal state so callers
// cannot mutate it behind the lock.
func copyRoom(room *models.Room) *models.Room {
	cp := *room
	cp.Users = append([]string(nil), room.Users...)
	return &cp
}
