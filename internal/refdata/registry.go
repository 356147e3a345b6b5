package refdata

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/adamanr/shift_console/internal/gateway"
)

const mirrorPrefix = "refdata:snapshot:"

// Tracks reports whether res is one of the lists held in a Snapshot.
func Tracks(res gateway.Resource) bool {
	switch res {
	case gateway.Users, gateway.Departments, gateway.SubDepartments,
		gateway.Positions, gateway.Levels, gateway.Locations, gateway.Shifts:
		return true
	}
	return false
}

// Registry hands out one Store per console user. The backend may filter
// lists by the caller, so snapshots are never shared across users.
type Registry struct {
	client *gateway.Client
	mirror Mirror
	ttl    time.Duration
	idle   time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	stores map[string]*entry
}

type entry struct {
	store    *Store
	lastUsed time.Time
}

// NewRegistry builds an empty registry. Stores unused for longer than idle
// are dropped; zero keeps them until Evict.
func NewRegistry(client *gateway.Client, mirror Mirror, ttl, idle time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		client: client,
		mirror: mirror,
		ttl:    ttl,
		idle:   idle,
		logger: logger,
		now:    time.Now,
		stores: map[string]*entry{},
	}
}

func (r *Registry) Get(userID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	if e, ok := r.stores[userID]; ok {
		e.lastUsed = now
		return e.store
	}
	s := NewStore(r.client, r.mirror, mirrorPrefix+userID, r.ttl, r.logger.With(slog.String("user_id", userID)))
	s.now = r.now
	r.stores[userID] = &entry{store: s, lastUsed: now}
	return s
}

func (r *Registry) sweep(now time.Time) {
	if r.idle <= 0 {
		return
	}
	for id, e := range r.stores {
		if now.Sub(e.lastUsed) > r.idle {
			delete(r.stores, id)
		}
	}
}

// Len is the number of live stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Evict forgets a user's store, typically on logout.
func (r *Registry) Evict(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, userID)
}

// Invalidate marks every store stale and drops all mirrored snapshots, so
// the next LoadAll of any user sees a change made by another.
func (r *Registry) Invalidate(ctx context.Context) {
	r.mu.Lock()
	stores := make([]*Store, 0, len(r.stores))
	for _, e := range r.stores {
		stores = append(stores, e.store)
	}
	r.mu.Unlock()

	for _, s := range stores {
		s.invalidate()
	}

	if r.mirror == nil {
		return
	}
	keys, err := r.mirror.Keys(ctx, mirrorPrefix+"*").Result()
	if err != nil {
		r.logger.Warn("Failed to list refdata mirror", slog.String("error", err.Error()))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.mirror.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("Failed to drop refdata mirror", slog.String("error", err.Error()))
	}
}
