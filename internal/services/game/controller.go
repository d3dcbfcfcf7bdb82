package game

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/mafiagame-go/internal/dependencies/clock"
	"github.com/mcoot/mafiagame-go/internal/dependencies/random"
	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/services/rewards"
	"github.com/mcoot/mafiagame-go/internal/services/room"
	"github.com/mcoot/mafiagame-go/internal/storage"
)

// persistTimeout bounds each background storage write
const persistTimeout = 5 * time.Second

// Config controls the phase durations
type Config struct {
	NightDuration time.Duration
	DayDuration   time.Duration
}

// DefaultConfig returns the standard phase timings
func DefaultConfig() Config {
	return Config{
		NightDuration: 30 * time.Second,
		DayDuration:   90 * time.Second,
	}
}

// Controller runs the phase state machine for every active game
type Controller struct {
	registry    *room.Registry
	storage     storage.Store
	rewards     *rewards.Service
	broadcaster room.Broadcaster
	clock       clock.Clock
	random      random.Random
	logger      *slog.Logger

	nightSeconds int
	daySeconds   int

	mu         sync.Mutex
	schedulers map[model.RoomID]*scheduler
}

// NewController creates a new game Controller
func NewController(
	registry *room.Registry,
	storage storage.Store,
	rewards *rewards.Service,
	broadcaster room.Broadcaster,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if cfg.NightDuration <= 0 {
		cfg.NightDuration = DefaultConfig().NightDuration
	}
	if cfg.DayDuration <= 0 {
		cfg.DayDuration = DefaultConfig().DayDuration
	}
	return &Controller{
		registry:     registry,
		storage:      storage,
		rewards:      rewards,
		broadcaster:  broadcaster,
		clock:        clock,
		random:       random,
		logger:       logger.With(slog.String("component", "game-controller")),
		nightSeconds: int(cfg.NightDuration / time.Second),
		daySeconds:   int(cfg.DayDuration / time.Second),
		schedulers:   make(map[model.RoomID]*scheduler),
	}
}

// StartGame deals roles and opens the first night for the actor's room.
// Only the room owner may start, and only while the room is waiting.
func (c *Controller) StartGame(ctx context.Context, actor model.Handle) (*model.Room, error) {
	id, ok := c.registry.RoomFor(actor)
	if !ok {
		return nil, model.ErrNotInRoom
	}

	var (
		clone *model.Room
		msg   model.ChatMessage
	)
	err := c.registry.WithRoom(id, func(rm *model.Room) error {
		owner := rm.GetOwner()
		if owner == nil || owner.Handle != actor {
			return model.ErrNotOwner
		}
		if rm.Status != model.RoomStatusWaiting {
			return model.ErrGameInProgress
		}
		if len(rm.Roster) < rm.MinPlayers {
			return model.ErrInsufficientPlayers
		}
		if len(rm.Roster) > rm.MaxPlayers {
			return model.ErrTooManyPlayers
		}

		now := c.clock.Now()
		rm.Game = &model.Game{
			RecordID:    uuid.NewString(),
			Phase:       model.PhaseNight,
			Day:         1,
			Countdown:   c.nightSeconds,
			Pending:     make(map[model.Handle]model.Action),
			StartRoster: c.dealRoles(rm),
			StartedAt:   now,
		}
		rm.Game.Log = append(rm.Game.Log, model.GameEvent{
			Day:   1,
			Phase: model.PhaseNight,
			Text:  "the game has started",
			At:    now,
		})
		rm.Status = model.RoomStatusPlaying
		msg = c.systemMessage("the game has started")
		rm.AppendChat(msg)
		rm.UpdatedAt = now
		clone = rm.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.recordStart(&model.GameRecord{
		ID:        clone.Game.RecordID,
		RoomID:    clone.ID,
		Roster:    clone.Game.StartRoster,
		StartedAt: clone.Game.StartedAt,
	})
	c.persistRoom(clone)
	c.persistMessage(clone.ID, msg)
	c.startScheduler(clone.ID)

	c.broadcaster.BroadcastRoom(clone.ID, model.ChatMessageEvent{Message: model.NewChatMessageView(msg)})
	c.broadcastGame(clone)
	c.broadcastLobbyList()

	c.logger.Info("game started",
		slog.String("room", string(clone.ID)),
		slog.String("record", clone.Game.RecordID),
		slog.Int("players", len(clone.Roster)),
	)
	return clone, nil
}

// SubmitAction records one pending action for the actor, resolving the
// phase immediately when the submission completes the required set.
// Resubmitting within a phase overwrites the earlier action.
func (c *Controller) SubmitAction(ctx context.Context, actor model.Handle, verb model.Verb, target model.Handle) error {
	id, ok := c.registry.RoomFor(actor)
	if !ok {
		return model.ErrNotInRoom
	}

	var (
		res   *resolution
		clone *model.Room
	)
	err := c.registry.WithRoom(id, func(rm *model.Room) error {
		if rm.Status != model.RoomStatusPlaying || rm.Game == nil {
			return model.ErrNoGame
		}
		p := rm.GetParticipant(actor)
		if p == nil {
			return model.ErrNotInRoom
		}
		if !p.Alive {
			return model.ErrNotAlive
		}
		if err := validateAction(rm, p, verb, target); err != nil {
			return err
		}

		now := c.clock.Now()
		rm.Game.Pending[actor] = model.Action{
			Actor:  actor,
			Verb:   verb,
			Target: target,
			At:     now,
			Seq:    rm.Game.NextSeq(),
		}
		rm.UpdatedAt = now

		if resolutionEligible(rm) {
			res = c.resolvePhase(rm)
		} else {
			clone = rm.Clone()
		}
		return nil
	})
	if err != nil {
		return err
	}

	if res != nil {
		c.applyResolution(res)
		return nil
	}

	// Acknowledge to the actor only; the rest of the room learns nothing
	// until the phase resolves
	c.broadcaster.SendTo(actor, model.GameUpdateEvent{Room: model.NewRoomSnapshot(clone, actor)})
	return nil
}

// HandleDeparture re-checks resolution eligibility after a participant
// leaves mid-game; the departure may have removed the last awaited actor
func (c *Controller) HandleDeparture(ctx context.Context, roomID model.RoomID) {
	var res *resolution
	err := c.registry.WithRoom(roomID, func(rm *model.Room) error {
		if rm.Status != model.RoomStatusPlaying || rm.Game == nil {
			return model.ErrNoGame
		}
		if resolutionEligible(rm) {
			res = c.resolvePhase(rm)
		}
		return nil
	})
	if err != nil {
		// The room is gone or idle, so any countdown left for it can stop
		c.stopScheduler(roomID)
		return
	}
	if res != nil {
		c.applyResolution(res)
	}
}

// Tick advances one room's countdown by a second, resolving the phase
// when it reaches zero. It reports whether the countdown should keep
// running.
func (c *Controller) Tick(roomID model.RoomID) bool {
	var res *resolution
	err := c.registry.WithRoom(roomID, func(rm *model.Room) error {
		if rm.Status != model.RoomStatusPlaying || rm.Game == nil {
			return model.ErrNoGame
		}
		rm.Game.Countdown--
		if rm.Game.Countdown <= 0 {
			res = c.resolvePhase(rm)
		}
		return nil
	})
	if err != nil {
		return false
	}
	if res == nil {
		return true
	}
	c.applyResolution(res)
	return !res.ended
}

// resolution captures everything a phase resolution produced while the
// room lock was held, for broadcast and persistence after release
type resolution struct {
	roomID   model.RoomID
	messages []model.ChatMessage
	snapshot *model.Room // broadcast view; carries finished status at game end
	persist  *model.Room // storage view; the post-reset room at game end
	ended    bool
	winner   model.Faction
	record   *model.GameRecord
	grants   []grant
}

// grant is one participant's wallet and stats adjustment
type grant struct {
	handle   model.Handle
	amount   int
	won      bool
	survived bool
}

// resolvePhase resolves the current phase in place. Callers hold the
// room lock; delivery of the returned resolution happens after release.
// Each phase instance resolves exactly once: the winning trigger either
// clears the pending set and resets the countdown, or ends the game, so
// a late trigger finds a new phase rather than a stale one.
func (c *Controller) resolvePhase(rm *model.Room) *resolution {
	res := &resolution{roomID: rm.ID}
	now := c.clock.Now()

	var outcome string
	if rm.Game.Phase == model.PhaseNight {
		outcome = resolveNight(rm)
	} else {
		outcome = resolveDay(rm)
	}

	rm.Game.LastOutcome = outcome
	rm.Game.Log = append(rm.Game.Log, model.GameEvent{
		Day:   rm.Game.Day,
		Phase: rm.Game.Phase,
		Text:  outcome,
		At:    now,
	})
	msg := c.systemMessage(outcome)
	rm.AppendChat(msg)
	res.messages = append(res.messages, msg)

	if winner := evaluateWin(rm); winner != "" {
		c.endGame(rm, winner, now, res)
		return res
	}

	if rm.Game.Phase == model.PhaseNight {
		rm.Game.Phase = model.PhaseDay
		rm.Game.Countdown = c.daySeconds
	} else {
		rm.Game.Phase = model.PhaseNight
		rm.Game.Day++
		rm.Game.Countdown = c.nightSeconds
	}
	rm.Game.Pending = make(map[model.Handle]model.Action)
	rm.UpdatedAt = now

	clone := rm.Clone()
	res.snapshot = clone
	res.persist = clone
	return res
}

// endGame settles a decided game: reveal every role in one final
// snapshot, compute rewards from the start-of-game roster, then return
// the room to waiting for the next game
func (c *Controller) endGame(rm *model.Room, winner model.Faction, now time.Time, res *resolution) {
	rm.Game.Winner = winner
	text := "the town has won"
	if winner == model.FactionMafia {
		text = "the mafia has won"
	}
	rm.Game.Log = append(rm.Game.Log, model.GameEvent{
		Day:   rm.Game.Day,
		Phase: rm.Game.Phase,
		Text:  text,
		At:    now,
	})
	msg := c.systemMessage(text)
	rm.AppendChat(msg)
	res.messages = append(res.messages, msg)

	// The final snapshot goes out with finished status, which reveals
	// every participant's role to every recipient
	rm.Status = model.RoomStatusFinished
	rm.UpdatedAt = now
	res.snapshot = rm.Clone()

	// Rewards cover everyone dealt in at the start; players who left
	// mid-game count as eliminated
	for handle, role := range rm.Game.StartRoster {
		won := role.Faction() == winner
		p := rm.GetParticipant(handle)
		survived := p != nil && p.Alive
		res.grants = append(res.grants, grant{
			handle:   handle,
			amount:   c.rewards.Reward(won, survived),
			won:      won,
			survived: survived,
		})
	}

	res.record = &model.GameRecord{
		ID:        rm.Game.RecordID,
		RoomID:    rm.ID,
		Roster:    rm.Game.StartRoster,
		StartedAt: rm.Game.StartedAt,
		EndedAt:   now,
		Winner:    winner,
		Days:      rm.Game.Day,
	}
	res.ended = true
	res.winner = winner

	// The live room reverts to waiting with roles cleared
	rm.Game = nil
	rm.Status = model.RoomStatusWaiting
	for i := range rm.Roster {
		rm.Roster[i].Role = ""
		rm.Roster[i].Alive = true
	}
	res.persist = rm.Clone()
}

// applyResolution delivers and persists what a resolution produced.
// Runs without the room lock held.
func (c *Controller) applyResolution(res *resolution) {
	for _, msg := range res.messages {
		c.persistMessage(res.roomID, msg)
		c.broadcaster.BroadcastRoom(res.roomID, model.ChatMessageEvent{Message: model.NewChatMessageView(msg)})
	}
	c.broadcastGame(res.snapshot)
	c.persistRoom(res.persist)

	if !res.ended {
		return
	}

	c.recordEnd(res.record)
	for _, g := range res.grants {
		c.applyGrant(g)
	}
	c.broadcastLobbyList()

	c.logger.Info("game ended",
		slog.String("room", string(res.roomID)),
		slog.String("winner", string(res.winner)),
		slog.Int("days", res.record.Days),
	)
}

// broadcastGame fans a personalized snapshot out to the whole room
func (c *Controller) broadcastGame(snapshot *model.Room) {
	c.broadcaster.BroadcastRoomFunc(snapshot.ID, func(viewer model.Handle) model.Outbound {
		return model.GameUpdateEvent{Room: model.NewRoomSnapshot(snapshot, viewer)}
	})
}

// broadcastLobbyList pushes a fresh room list to room-less connections
func (c *Controller) broadcastLobbyList() {
	c.broadcaster.BroadcastLobby(model.RoomListEvent{Rooms: room.LobbySummaries(c.registry)})
}

// systemMessage builds a server-generated transcript line
func (c *Controller) systemMessage(text string) model.ChatMessage {
	return model.ChatMessage{
		ID:     uuid.NewString(),
		Text:   text,
		SentAt: c.clock.Now(),
	}
}

// persistRoom writes a room snapshot in the background; storage failures
// are logged and never block gameplay
func (c *Controller) persistRoom(rm *model.Room) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.storage.SaveRoom(ctx, rm); err != nil {
			c.logger.Error("failed to persist room",
				slog.String("room", string(rm.ID)),
				slog.Any("error", err))
		}
	}()
}

// persistMessage appends a transcript line in the background
func (c *Controller) persistMessage(id model.RoomID, msg model.ChatMessage) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.storage.AppendMessage(ctx, id, msg); err != nil {
			c.logger.Error("failed to persist chat message",
				slog.String("room", string(id)),
				slog.Any("error", err))
		}
	}()
}

// recordStart persists the game-start record in the background
func (c *Controller) recordStart(record *model.GameRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.storage.RecordGameStart(ctx, record); err != nil {
			c.logger.Error("failed to record game start",
				slog.String("record", record.ID),
				slog.Any("error", err))
		}
	}()
}

// recordEnd persists the final game record in the background
func (c *Controller) recordEnd(record *model.GameRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.storage.RecordGameEnd(ctx, record); err != nil {
			c.logger.Error("failed to record game end",
				slog.String("record", record.ID),
				slog.Any("error", err))
		}
	}()
}

// applyGrant settles one participant's wallet and stats in the background
func (c *Controller) applyGrant(g grant) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.storage.ApplyGameOutcome(ctx, g.handle, g.amount, g.won, g.survived); err != nil {
			c.logger.Error("failed to apply game outcome",
				slog.String("handle", string(g.handle)),
				slog.Any("error", err))
		}
	}()
}

// Interface for dependency injection
type ControllerInterface interface {
	StartGame(ctx context.Context, actor model.Handle) (*model.Room, error)
	SubmitAction(ctx context.Context, actor model.Handle, verb model.Verb, target model.Handle) error
	HandleDeparture(ctx context.Context, roomID model.RoomID)
	Tick(roomID model.RoomID) bool
	StopRoom(roomID model.RoomID)
	StopAll()
}

var _ ControllerInterface = (*Controller)(nil)
