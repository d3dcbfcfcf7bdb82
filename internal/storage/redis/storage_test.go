package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/mafiagame-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour
	cfg.MessageTTL = time.Hour
	cfg.GameRecordTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Identity tests

func (s *StorageSuite) TestCreateAndGetIdentity() {
	identity := &model.Identity{
		Handle:       "alice",
		PasswordHash: "hash123",
		Wallet:       100,
		Stats:        model.Stats{GamesPlayed: 4, GamesWon: 2},
		CreatedAt:    time.Now(),
	}

	err := s.storage.CreateIdentity(s.ctx, identity)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetIdentity(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(identity.Handle, retrieved.Handle)
	s.Equal(100, retrieved.Wallet)
	s.Equal(2, retrieved.Stats.GamesWon)
}

func (s *StorageSuite) TestCreateIdentityTakenHandle() {
	_ = s.storage.CreateIdentity(s.ctx, &model.Identity{Handle: "alice", Wallet: 10})

	err := s.storage.CreateIdentity(s.ctx, &model.Identity{Handle: "alice", Wallet: 99})
	s.ErrorIs(err, model.ErrHandleTaken)

	// Original record untouched
	retrieved, err := s.storage.GetIdentity(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(10, retrieved.Wallet)
}

func (s *StorageSuite) TestGetIdentityNotFound() {
	_, err := s.storage.GetIdentity(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrIdentityNotFound)
}

func (s *StorageSuite) TestIdentityNoTTL() {
	_ = s.storage.CreateIdentity(s.ctx, &model.Identity{Handle: "alice"})

	ttl := s.mini.TTL(identityKey("alice"))
	s.Equal(time.Duration(0), ttl, "Identity should not have TTL")
}

func (s *StorageSuite) TestUpdateIdentity() {
	_ = s.storage.CreateIdentity(s.ctx, &model.Identity{Handle: "alice", Wallet: 50})

	err := s.storage.UpdateIdentity(s.ctx, &model.Identity{Handle: "alice", Wallet: 80})
	s.Require().NoError(err)

	retrieved, err := s.storage.GetIdentity(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(80, retrieved.Wallet)
}

func (s *StorageSuite) TestApplyGameOutcome() {
	_ = s.storage.CreateIdentity(s.ctx, &model.Identity{Handle: "alice", Wallet: 100})

	err := s.storage.ApplyGameOutcome(s.ctx, "alice", 15, true, false)
	s.Require().NoError(err)

	identity, err := s.storage.GetIdentity(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(115, identity.Wallet)
	s.Equal(1, identity.Stats.GamesPlayed)
	s.Equal(1, identity.Stats.GamesWon)
	s.Equal(0, identity.Stats.GamesSurvived)
}

func (s *StorageSuite) TestApplyGameOutcomeWalletFloorsAtZero() {
	_ = s.storage.CreateIdentity(s.ctx, &model.Identity{Handle: "bob", Wallet: 3})

	err := s.storage.ApplyGameOutcome(s.ctx, "bob", -10, false, false)
	s.Require().NoError(err)

	identity, err := s.storage.GetIdentity(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(0, identity.Wallet)
}

func (s *StorageSuite) TestApplyGameOutcomeUnknownHandle() {
	err := s.storage.ApplyGameOutcome(s.ctx, "nonexistent", 30, true, true)
	s.ErrorIs(err, model.ErrIdentityNotFound)
}

// Room mirror tests

func (s *StorageSuite) TestSaveRoomAndGetRoomsWaiting() {
	room1 := &model.Room{ID: "ROOM1", Name: "First", Status: model.RoomStatusWaiting, CreatedAt: time.Unix(100, 0)}
	room2 := &model.Room{ID: "ROOM2", Name: "Second", Status: model.RoomStatusWaiting, CreatedAt: time.Unix(200, 0)}
	room3 := &model.Room{ID: "ROOM3", Name: "Busy", Status: model.RoomStatusPlaying, CreatedAt: time.Unix(50, 0)}

	_ = s.storage.SaveRoom(s.ctx, room1)
	_ = s.storage.SaveRoom(s.ctx, room2)
	_ = s.storage.SaveRoom(s.ctx, room3)

	rooms, err := s.storage.GetRoomsWaiting(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 2)
	s.Equal(model.RoomID("ROOM1"), rooms[0].ID)
	s.Equal(model.RoomID("ROOM2"), rooms[1].ID)
}

func (s *StorageSuite) TestSaveRoomStatusChangeLeavesWaitingList() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "ROOM1", Status: model.RoomStatusWaiting})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "ROOM1", Status: model.RoomStatusPlaying})

	rooms, err := s.storage.GetRoomsWaiting(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *StorageSuite) TestDeleteRoom() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "ROOM1", Status: model.RoomStatusWaiting})

	err := s.storage.DeleteRoom(s.ctx, "ROOM1")
	s.Require().NoError(err)

	rooms, err := s.storage.GetRoomsWaiting(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
	s.False(s.mini.Exists(roomKey("ROOM1")))
}

func (s *StorageSuite) TestRoomTTL() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "ROOM1", Status: model.RoomStatusWaiting})

	ttl := s.mini.TTL(roomKey("ROOM1"))
	s.True(ttl > 0, "Room should have TTL")
}

func (s *StorageSuite) TestGetRoomsWaitingSkipsExpired() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "ROOM1", Status: model.RoomStatusWaiting})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "ROOM2", Status: model.RoomStatusWaiting})

	// Expire one room value out from under the index
	s.mini.Del(roomKey("ROOM1"))

	rooms, err := s.storage.GetRoomsWaiting(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 1)
	s.Equal(model.RoomID("ROOM2"), rooms[0].ID)
}

// Chat transcript tests

func (s *StorageSuite) TestAppendMessage() {
	msg := model.ChatMessage{ID: "m1", Sender: "alice", Text: "hello", SentAt: time.Now()}

	err := s.storage.AppendMessage(s.ctx, "ROOM1", msg)
	s.Require().NoError(err)

	entries, err := s.mini.List(messagesKey("ROOM1"))
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Contains(entries[0], "hello")

	ttl := s.mini.TTL(messagesKey("ROOM1"))
	s.True(ttl > 0, "Transcript should have TTL")
}

// Game record tests

func (s *StorageSuite) TestRecordGameStartAndEnd() {
	record := &model.GameRecord{
		ID:        "game-1",
		RoomID:    "ROOM1",
		Roster:    map[model.Handle]model.Role{"alice": model.RoleDon, "bob": model.RoleCitizen},
		StartedAt: time.Unix(1000, 0),
	}

	s.Require().NoError(s.storage.RecordGameStart(s.ctx, record))
	s.True(s.mini.Exists(gameRecordKey("game-1")))

	record.Winner = model.FactionMafia
	record.EndedAt = time.Unix(2000, 0)
	record.Days = 2
	s.Require().NoError(s.storage.RecordGameEnd(s.ctx, record))

	raw, err := s.mini.Get(gameRecordKey("game-1"))
	s.Require().NoError(err)
	s.Contains(raw, `"Winner":"mafia"`)
}
