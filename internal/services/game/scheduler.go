package game

import (
	"sync"
	"time"

	"github.com/mcoot/mafiagame-go/internal/model"
)

// scheduler drives one room's countdown at one tick per second
type scheduler struct {
	stop chan struct{}
	once sync.Once
}

func newScheduler() *scheduler {
	return &scheduler{stop: make(chan struct{})}
}

// Stop is idempotent
func (s *scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
}

// startScheduler launches the countdown loop for a room's new game,
// replacing any loop left over from a just-finished one
func (c *Controller) startScheduler(roomID model.RoomID) {
	s := newScheduler()
	c.mu.Lock()
	prev := c.schedulers[roomID]
	c.schedulers[roomID] = s
	c.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}
	go c.runScheduler(roomID, s)
}

// stopScheduler halts whatever countdown loop a room currently has
func (c *Controller) stopScheduler(roomID model.RoomID) {
	c.mu.Lock()
	s := c.schedulers[roomID]
	delete(c.schedulers, roomID)
	c.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

// removeScheduler forgets one specific loop instance, leaving any
// replacement registered for the same room untouched
func (c *Controller) removeScheduler(roomID model.RoomID, s *scheduler) {
	c.mu.Lock()
	if c.schedulers[roomID] == s {
		delete(c.schedulers, roomID)
	}
	c.mu.Unlock()
	s.Stop()
}

// StopRoom halts a room's countdown loop, for force-closed rooms
func (c *Controller) StopRoom(roomID model.RoomID) {
	c.stopScheduler(roomID)
}

// StopAll halts every countdown loop, for server shutdown
func (c *Controller) StopAll() {
	c.mu.Lock()
	stopped := make([]*scheduler, 0, len(c.schedulers))
	for id, s := range c.schedulers {
		stopped = append(stopped, s)
		delete(c.schedulers, id)
	}
	c.mu.Unlock()
	for _, s := range stopped {
		s.Stop()
	}
}

func (c *Controller) runScheduler(roomID model.RoomID, s *scheduler) {
	ticker := c.clock.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C():
			if !c.Tick(roomID) {
				c.removeScheduler(roomID, s)
				return
			}
			// A replaced loop must yield to its successor before the
			// next tick
			select {
			case <-s.stop:
				return
			default:
			}
		}
	}
}

func (c *Controller) schedulerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.schedulers)
}
