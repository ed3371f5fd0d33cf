package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"ai-helpdesk-be/pkg/scenario/engine"
)

// EngineStateRepository keeps hot engine state in process memory so the
// chat path avoids a database round trip per turn. The database copy on
// the session row remains the durable source.
type EngineStateRepository struct {
	cache *cache.Cache
}

func NewEngineStateRepository() *EngineStateRepository {
	// Sessions idle for an hour fall out; the next turn rehydrates
	// from the session row.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &EngineStateRepository{
		cache: c,
	}
}

func (r *EngineStateRepository) Save(sessionID string, state *engine.State) {
	r.cache.Set(sessionID, state, cache.DefaultExpiration)
}

func (r *EngineStateRepository) Get(sessionID string) (*engine.State, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*engine.State), true
	}
	return nil, false
}

func (r *EngineStateRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
