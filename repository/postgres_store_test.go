package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"anonchat/models"
)

// setupTestStore runs the gorm-backed store against an in-memory SQLite
// database; the store's behavior is driver-agnostic.
func setupTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Room{}, &models.Message{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewPostgresStore(db)
}

func TestPostgresStoreInsertRoomDuplicate(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.InsertRoom(ctx, testRoom("general", time.Now().Add(time.Hour))))

	err := store.InsertRoom(ctx, testRoom("general", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrDuplicateRoom)
}

func TestPostgresStoreFindRoom(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.InsertRoom(ctx, testRoom("general", time.Now().Add(time.Hour))))

	room, err := store.FindRoom(ctx, "general")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, "alice", room.Creator)
	assert.Equal(t, []string{"alice"}, room.Users)

	absent, err := store.FindRoom(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestPostgresStoreMembershipIdempotent(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.InsertRoom(ctx, testRoom("general", time.Now().Add(time.Hour))))

	require.NoError(t, store.AddMember(ctx, "general", "bob"))
	require.NoError(t, store.AddMember(ctx, "general", "bob"))

	room, err := store.FindRoom(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, room.Users)

	require.NoError(t, store.RemoveMember(ctx, "general", "bob"))
	require.NoError(t, store.RemoveMember(ctx, "general", "bob"))

	room, err = store.FindRoom(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, room.Users)

	assert.NoError(t, store.AddMember(ctx, "nope", "bob"))
	assert.NoError(t, store.RemoveMember(ctx, "nope", "bob"))
}

func TestPostgresStoreDeleteRoomCascades(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.InsertRoom(ctx, testRoom("general", time.Now().Add(time.Hour))))
	require.NoError(t, store.InsertMessage(ctx, &models.Message{
		RoomName: "general", Username: "alice", MessageType: models.MessageTypeText,
		Content: "hi", Timestamp: time.Now().UTC(),
	}))

	require.NoError(t, store.DeleteRoom(ctx, "general"))

	room, err := store.FindRoom(ctx, "general")
	require.NoError(t, err)
	assert.Nil(t, room)

	msgs, err := store.ListMessages(ctx, "general")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestPostgresStoreListMessagesOrdered(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{2 * time.Second, 0, time.Second} {
		require.NoError(t, store.InsertMessage(ctx, &models.Message{
			RoomName: "general", Username: "alice", MessageType: models.MessageTypeText,
			Content: offset.String(), Timestamp: base.Add(offset),
		}))
	}

	msgs, err := store.ListMessages(ctx, "general")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].Timestamp.Before(msgs[i-1].Timestamp))
	}
}

func TestPostgresStoreListExpiredRooms(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, store.InsertRoom(ctx, testRoom("stale", now.Add(-time.Minute))))
	require.NoError(t, store.InsertRoom(ctx, testRoom("fresh", now.Add(time.Hour))))

	names, err := store.ListExpiredRooms(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, names)
}
