package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Identity operations

func (s *Storage) CreateIdentity(ctx context.Context, identity *model.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}

	// SETNX so concurrent registrations cannot clobber each other
	created, err := s.client.SetNX(ctx, identityKey(identity.Handle), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrHandleTaken
	}
	return nil
}

func (s *Storage) GetIdentity(ctx context.Context, handle model.Handle) (*model.Identity, error) {
	data, err := s.client.Get(ctx, identityKey(handle)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrIdentityNotFound
		}
		return nil, err
	}

	var identity model.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (s *Storage) UpdateIdentity(ctx context.Context, identity *model.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}

	// Identities never expire
	return s.client.Set(ctx, identityKey(identity.Handle), data, 0).Err()
}

func (s *Storage) ApplyGameOutcome(ctx context.Context, handle model.Handle, wallet int, won, survived bool) error {
	identity, err := s.GetIdentity(ctx, handle)
	if err != nil {
		return err
	}

	identity.Wallet += wallet
	if identity.Wallet < 0 {
		identity.Wallet = 0
	}
	identity.Stats.GamesPlayed++
	if won {
		identity.Stats.GamesWon++
	}
	if survived {
		identity.Stats.GamesSurvived++
	}

	return s.UpdateIdentity(ctx, identity)
}

// Room mirror operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	key := roomKey(room.ID)

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, s.cfg.RoomTTL)
	if room.Status == model.RoomStatusWaiting {
		pipe.SAdd(ctx, roomsWaitingIndexKey(), key)
	} else {
		pipe.SRem(ctx, roomsWaitingIndexKey(), key)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	key := roomKey(id)

	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, roomsWaitingIndexKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoomsWaiting(ctx context.Context) ([]*model.Room, error) {
	roomKeys, err := s.client.SMembers(ctx, roomsWaitingIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(roomKeys) == 0 {
		return []*model.Room{}, nil
	}

	// Fetch all rooms at once using MGET
	values, err := s.client.MGet(ctx, roomKeys...).Result()
	if err != nil {
		return nil, err
	}

	rooms := make([]*model.Room, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Room may have expired out from under the index
		}
		var room model.Room
		if err := json.Unmarshal([]byte(val.(string)), &room); err != nil {
			continue // Skip invalid data
		}
		if room.Status != model.RoomStatusWaiting {
			continue // Index may lag a status change
		}
		rooms = append(rooms, &room)
	}

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms, nil
}

// Chat transcript operations

func (s *Storage) AppendMessage(ctx context.Context, roomID model.RoomID, msg model.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := messagesKey(roomID)

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.cfg.MessageTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// Game record operations

func (s *Storage) RecordGameStart(ctx context.Context, record *model.GameRecord) error {
	return s.saveGameRecord(ctx, record)
}

func (s *Storage) RecordGameEnd(ctx context.Context, record *model.GameRecord) error {
	return s.saveGameRecord(ctx, record)
}

func (s *Storage) saveGameRecord(ctx context.Context, record *model.GameRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, gameRecordKey(record.ID), data, s.cfg.GameRecordTTL).Err()
}
