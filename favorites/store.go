// Package favorites keeps the user's favorited repositories and users,
// persisted as one JSON document in a key/value backend.
package favorites

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"ghexplorer/logger"
	"ghexplorer/models"
)

// StorageKey is the key the favorites list is persisted under.
const StorageKey = "github-explorer-favorites"

// KV is the persistence backend. Get reports ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Counts summarizes the list for the favorites tabs.
type Counts struct {
	Total        int `json:"total"`
	Repositories int `json:"repositories"`
	Users        int `json:"users"`
}

// Store is an ordered, newest-first list of favorites.
//
// Mutations, their notifications and their persistence run one at a time,
// so subscribers and the backend see lists in mutation order. Subscribers
// must not mutate the store from inside their callback.
type Store struct {
	kv  KV
	now func() time.Time
	log *zap.Logger

	writeMu sync.Mutex

	mu    sync.RWMutex
	items []models.Favorite

	subMu   sync.Mutex
	subs    map[int]func([]models.Favorite)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for AddedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New loads the persisted list from kv. A read or decode failure is logged
// and the store starts empty. A nil kv keeps the list in memory only.
func New(ctx context.Context, kv KV, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		now:   time.Now,
		log:   logger.Named("favorites"),
		items: []models.Favorite{},
		subs:  make(map[int]func([]models.Favorite)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	if s.kv == nil {
		return
	}
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.log.Error("Error loading favorites", zap.Error(err))
		return
	}
	if !ok || len(raw) == 0 {
		return
	}

	var items []models.Favorite
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Error("Error loading favorites", zap.Error(err))
		return
	}
	if items == nil {
		items = []models.Favorite{}
	}
	s.items = items
	s.log.Info("Loaded favorites", zap.Int("count", len(items)))
}

// AddRepository favorites repo. It returns false if it already was one.
func (s *Store) AddRepository(ctx context.Context, repo models.Repository) bool {
	return s.add(ctx, models.Favorite{
		ID:         repo.FullName,
		Kind:       models.KindRepository,
		Repository: &repo,
	})
}

// AddUser favorites user. It returns false if it already was one.
func (s *Store) AddUser(ctx context.Context, user models.User) bool {
	return s.add(ctx, models.Favorite{
		ID:   user.Login,
		Kind: models.KindUser,
		User: &user,
	})
}

func (s *Store) add(ctx context.Context, fav models.Favorite) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.IsFavorite(fav.Kind, fav.ID) {
		return false
	}
	fav.AddedAt = s.now()

	s.mu.Lock()
	updated := make([]models.Favorite, 0, len(s.items)+1)
	updated = append(updated, fav)
	updated = append(updated, s.items...)
	s.items = updated
	s.mu.Unlock()

	s.log.Debug("Added favorite", zap.String("type", string(fav.Kind)), zap.String("id", fav.ID))
	s.publish(ctx, updated)
	return true
}

// Remove drops the favorite with the given kind and id and reports whether
// one was removed. The list is persisted either way.
func (s *Store) Remove(ctx context.Context, kind models.FavoriteKind, id string) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	updated := make([]models.Favorite, 0, len(s.items))
	for _, f := range s.items {
		if f.Kind == kind && f.ID == id {
			continue
		}
		updated = append(updated, f)
	}
	removed := len(updated) != len(s.items)
	s.items = updated
	s.mu.Unlock()

	s.publish(ctx, updated)
	return removed
}

// Clear empties the list and deletes the persisted key.
func (s *Store) Clear(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.items = []models.Favorite{}
	s.mu.Unlock()

	s.notify([]models.Favorite{})
	if s.kv == nil {
		return
	}
	if err := s.kv.Remove(ctx, StorageKey); err != nil {
		s.log.Error("Error clearing favorites", zap.Error(err))
	}
}

// IsFavorite reports whether kind/id is in the list.
func (s *Store) IsFavorite(kind models.FavoriteKind, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.items {
		if f.Kind == kind && f.ID == id {
			return true
		}
	}
	return false
}

// List returns a copy of the list, newest first.
func (s *Store) List() []models.Favorite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.items)
}

// ByKind returns the favorites of one kind, in list order.
func (s *Store) ByKind(kind models.FavoriteKind) []models.Favorite {
	return Filter(s.List(), kind)
}

// Counts returns the number of favorites in total and per kind.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := Counts{Total: len(s.items)}
	for _, f := range s.items {
		switch f.Kind {
		case models.KindRepository:
			c.Repositories++
		case models.KindUser:
			c.Users++
		}
	}
	return c
}

// Subscribe calls fn with the current list right away and then with every
// new list. The returned func stops the notifications.
func (s *Store) Subscribe(fn func([]models.Favorite)) (unsubscribe func()) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	fn(s.List())

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// publish notifies subscribers and then writes the list. Callers hold writeMu.
func (s *Store) publish(ctx context.Context, list []models.Favorite) {
	s.notify(list)
	s.persist(ctx, list)
}

func (s *Store) notify(list []models.Favorite) {
	s.subMu.Lock()
	fns := make([]func([]models.Favorite), 0, len(s.subs))
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(clone(list))
	}
}

func (s *Store) persist(ctx context.Context, list []models.Favorite) {
	if s.kv == nil {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		s.log.Error("Error saving favorites", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, StorageKey, raw); err != nil {
		s.log.Error("Error saving favorites", zap.Error(err))
	}
}

func clone(list []models.Favorite) []models.Favorite {
	out := make([]models.Favorite, len(list))
	copy(out, list)
	return out
}
