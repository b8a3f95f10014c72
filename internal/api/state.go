package api

import (
	"sync"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

type sessionsCache struct {
	mu  sync.RWMutex
	ids map[uuid.UUID]*actor.PID
}

func newSessionsCache() *sessionsCache {
	return &sessionsCache{
		ids: map[uuid.UUID]*actor.PID{},
	}
}

func (s *sessionsCache) remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
}

func (s *sessionsCache) add(id uuid.UUID, pid *actor.PID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = pid
}

func (s *sessionsCache) get(id uuid.UUID) (*actor.PID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pid, ok := s.ids[id]
	return pid, ok
}
