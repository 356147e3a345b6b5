package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/gateway"
	"github.com/adamanr/shift_console/internal/policy"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Mirror is the Redis subset the store uses to share snapshots between
// console processes.
type Mirror interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Keys(ctx context.Context, pattern string) *redis.StringSliceCmd
}

type Snapshot struct {
	Users          []entity.User                    `json:"users"`
	Departments    []entity.Department              `json:"departments"`
	SubDepartments []entity.SubDepartment           `json:"subDepartments"`
	Positions      []entity.Position                `json:"positions"`
	Levels         []entity.Level                   `json:"levels"`
	Locations      []entity.Location                `json:"locations"`
	Shifts         []entity.Shift                   `json:"shifts"`
	Meta           map[gateway.Resource]entity.Meta `json:"meta"`
	LoadedAt       time.Time                        `json:"loadedAt"`
}

func (s Snapshot) Catalog() policy.Catalog {
	return policy.Catalog{
		Departments:    s.Departments,
		SubDepartments: s.SubDepartments,
		Users:          s.Users,
		Shifts:         s.Shifts,
	}
}

// Store is the reference cache of one console user. Only LoadAll and Refetch
// write to it.
type Store struct {
	client *gateway.Client
	mirror Mirror
	key    string
	ttl    time.Duration
	logger *slog.Logger

	now func() time.Time

	mu       sync.Mutex
	loaded   bool
	loadedAt time.Time

	Users          *Subject[[]entity.User]
	Departments    *Subject[[]entity.Department]
	SubDepartments *Subject[[]entity.SubDepartment]
	Positions      *Subject[[]entity.Position]
	Levels         *Subject[[]entity.Level]
	Locations      *Subject[[]entity.Location]
	Shifts         *Subject[[]entity.Shift]
	snapshot       *Subject[Snapshot]
}

// NewStore builds an empty store. mirror may be nil.
func NewStore(client *gateway.Client, mirror Mirror, key string, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		client:         client,
		mirror:         mirror,
		key:            key,
		ttl:            ttl,
		logger:         logger,
		now:            time.Now,
		Users:          NewSubject[[]entity.User](),
		Departments:    NewSubject[[]entity.Department](),
		SubDepartments: NewSubject[[]entity.SubDepartment](),
		Positions:      NewSubject[[]entity.Position](),
		Levels:         NewSubject[[]entity.Level](),
		Locations:      NewSubject[[]entity.Location](),
		Shifts:         NewSubject[[]entity.Shift](),
		snapshot:       NewSubject[Snapshot](),
	}
}

func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Snapshot returns the last complete load.
func (s *Store) Snapshot() (Snapshot, bool) {
	return s.snapshot.Value()
}

func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	return s.snapshot.Subscribe()
}

// LoadAll fills the cache when it is empty, invalidated or older than the
// ttl. Every list is fetched concurrently and nothing is published unless all
// of them arrived.
func (s *Store) LoadAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fresh() {
		return nil
	}
	return s.load(ctx)
}

func (s *Store) fresh() bool {
	if !s.loaded {
		return false
	}
	return s.ttl <= 0 || s.now().Sub(s.loadedAt) < s.ttl
}

// invalidate makes the next LoadAll fetch again. The last snapshot stays
// readable until then.
func (s *Store) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
}

// Refetch drops the cache, including the shared mirror, and loads again.
func (s *Store) Refetch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
	if s.mirror != nil {
		if err := s.mirror.Del(ctx, s.key).Err(); err != nil {
			s.logger.Warn("Failed to drop refdata mirror", slog.String("key", s.key), slog.String("error", err.Error()))
		}
	}
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) error {
	if snap, ok := s.fromMirror(ctx); ok {
		s.publish(snap)
		return nil
	}

	snap, err := s.fetch(ctx)
	if err != nil {
		s.logger.Error("Failed to load reference data", slog.String("error", err.Error()))
		return err
	}

	s.publish(snap)
	s.toMirror(ctx, snap)
	return nil
}

func (s *Store) publish(snap Snapshot) {
	s.Users.Publish(snap.Users)
	s.Departments.Publish(snap.Departments)
	s.SubDepartments.Publish(snap.SubDepartments)
	s.Positions.Publish(snap.Positions)
	s.Levels.Publish(snap.Levels)
	s.Locations.Publish(snap.Locations)
	s.Shifts.Publish(snap.Shifts)
	s.snapshot.Publish(snap)
	s.loaded = true
	s.loadedAt = snap.LoadedAt
	if s.loadedAt.IsZero() {
		s.loadedAt = s.now()
	}
}

func (s *Store) fetch(ctx context.Context) (Snapshot, error) {
	var (
		snap   = Snapshot{Meta: make(map[gateway.Resource]entity.Meta, 7)}
		metaMu sync.Mutex
	)
	setMeta := func(res gateway.Resource, m entity.Meta) {
		metaMu.Lock()
		defer metaMu.Unlock()
		snap.Meta[res] = m
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return fetchList(gctx, s.client, gateway.Users, &snap.Users, setMeta) })
	g.Go(func() error { return fetchList(gctx, s.client, gateway.Departments, &snap.Departments, setMeta) })
	g.Go(func() error { return fetchList(gctx, s.client, gateway.SubDepartments, &snap.SubDepartments, setMeta) })
	g.Go(func() error { return fetchList(gctx, s.client, gateway.Positions, &snap.Positions, setMeta) })
	g.Go(func() error { return fetchList(gctx, s.client, gateway.Levels, &snap.Levels, setMeta) })
	g.Go(func() error { return fetchList(gctx, s.client, gateway.Locations, &snap.Locations, setMeta) })
	g.Go(func() error { return fetchList(gctx, s.client, gateway.Shifts, &snap.Shifts, setMeta) })

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.LoadedAt = s.now().UTC()
	return snap, nil
}

func fetchList[T any](ctx context.Context, c *gateway.Client, res gateway.Resource, dst *[]T, setMeta func(gateway.Resource, entity.Meta)) error {
	resp, err := gateway.List[T](ctx, c, res, nil)
	if err != nil {
		return fmt.Errorf("load %s: %w", res, err)
	}

	*dst = resp.Data
	if *dst == nil {
		*dst = []T{}
	}
	setMeta(res, entity.Meta{
		Total:         resp.Total,
		TotalFiltered: resp.TotalFiltered,
		Page:          resp.Page,
		Limit:         resp.Limit,
	})
	return nil
}

func (s *Store) fromMirror(ctx context.Context) (Snapshot, bool) {
	if s.mirror == nil {
		return Snapshot{}, false
	}

	raw, err := s.mirror.Get(ctx, s.key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("Failed to read refdata mirror", slog.String("key", s.key), slog.String("error", err.Error()))
		}
		return Snapshot{}, false
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.logger.Warn("Corrupt refdata mirror", slog.String("key", s.key), slog.String("error", err.Error()))
		return Snapshot{}, false
	}
	return snap, true
}

func (s *Store) toMirror(ctx context.Context, snap Snapshot) {
	if s.mirror == nil {
		return
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("Failed to encode refdata snapshot", slog.String("error", err.Error()))
		return
	}
	if err := s.mirror.Set(ctx, s.key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("Failed to write refdata mirror", slog.String("key", s.key), slog.String("error", err.Error()))
	}
}
