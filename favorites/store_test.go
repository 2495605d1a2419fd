package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ghexplorer/models"
	"ghexplorer/storage"
)

// MockKV is a mock implementation of KV
type MockKV struct {
	mock.Mock
}

func (m *MockKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Bool(1), args.Error(2)
}

func (m *MockKV) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKV) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func repo(fullName, name string, stars int) models.Repository {
	return models.Repository{ID: int64(stars), FullName: fullName, Name: name, StargazersCount: stars}
}

func user(login string, publicRepos int) models.User {
	return models.User{Login: login, PublicRepos: publicRepos}
}

func ids(list []models.Favorite) []string {
	out := make([]string, 0, len(list))
	for _, f := range list {
		out = append(out, f.ID)
	}
	return out
}

func TestNewLoad(t *testing.T) {
	ctx := context.Background()

	persisted, err := json.Marshal([]models.Favorite{
		{ID: "torvalds", Kind: models.KindUser, User: &models.User{Login: "torvalds"}, AddedAt: time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "golang/go", Kind: models.KindRepository, Repository: &models.Repository{FullName: "golang/go", Name: "go"}, AddedAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		setup    func(*MockKV)
		expected []string
	}{
		{
			name: "missing key starts empty",
			setup: func(m *MockKV) {
				m.On("Get", mock.Anything, StorageKey).Return(nil, false, nil)
			},
			expected: []string{},
		},
		{
			name: "persisted list keeps its order",
			setup: func(m *MockKV) {
				m.On("Get", mock.Anything, StorageKey).Return(persisted, true, nil)
			},
			expected: []string{"torvalds", "golang/go"},
		},
		{
			name: "corrupt document starts empty",
			setup: func(m *MockKV) {
				m.On("Get", mock.Anything, StorageKey).Return([]byte(`{not json`), true, nil)
			},
			expected: []string{},
		},
		{
			name: "read failure starts empty",
			setup: func(m *MockKV) {
				m.On("Get", mock.Anything, StorageKey).Return(nil, false, errors.New("disk on fire"))
			},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := new(MockKV)
			tt.setup(kv)

			s := New(ctx, kv)
			assert.Equal(t, tt.expected, ids(s.List()))
			kv.AssertExpectations(t)
		})
	}
}

func TestAddPrependsAndPersists(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := New(ctx, kv, WithClock(tickingClock()))

	assert.True(t, s.AddRepository(ctx, repo("golang/go", "go", 120000)))
	assert.True(t, s.AddUser(ctx, user("octocat", 8)))
	assert.False(t, s.AddRepository(ctx, repo("golang/go", "go", 1)), "duplicate is a no-op")

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, []string{"octocat", "golang/go"}, ids(list))
	assert.Equal(t, 120000, list[1].Repository.StargazersCount, "duplicate add must not replace data")
	assert.True(t, list[0].AddedAt.After(list[1].AddedAt))

	reloaded := New(ctx, kv)
	assert.Equal(t, ids(list), ids(reloaded.List()))
	assert.True(t, reloaded.IsFavorite(models.KindRepository, "golang/go"))
	assert.True(t, reloaded.IsFavorite(models.KindUser, "octocat"))
	assert.False(t, reloaded.IsFavorite(models.KindUser, "golang/go"), "kind is part of identity")
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	kv := new(MockKV)
	kv.On("Get", mock.Anything, StorageKey).Return(nil, false, nil)
	kv.On("Set", mock.Anything, StorageKey, mock.Anything).Return(nil)

	s := New(ctx, kv, WithClock(tickingClock()))
	s.AddRepository(ctx, repo("a/one", "one", 1))
	s.AddUser(ctx, user("one", 1))

	assert.True(t, s.Remove(ctx, models.KindRepository, "a/one"))
	assert.Equal(t, []string{"one"}, ids(s.List()))

	assert.False(t, s.Remove(ctx, models.KindRepository, "missing/repo"))
	assert.Equal(t, []string{"one"}, ids(s.List()))

	// two adds and two removals, the no-op included, each write the list
	kv.AssertNumberOfCalls(t, "Set", 4)
}

func TestClearRemovesKey(t *testing.T) {
	ctx := context.Background()
	kv := new(MockKV)
	kv.On("Get", mock.Anything, StorageKey).Return(nil, false, nil)
	kv.On("Set", mock.Anything, StorageKey, mock.Anything).Return(nil).Once()
	kv.On("Remove", mock.Anything, StorageKey).Return(nil).Once()

	s := New(ctx, kv)
	s.AddUser(ctx, user("octocat", 8))
	s.Clear(ctx)

	assert.Empty(t, s.List())
	assert.Equal(t, Counts{}, s.Counts())
	kv.AssertExpectations(t)
}

func TestPersistFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	kv := new(MockKV)
	kv.On("Get", mock.Anything, StorageKey).Return(nil, false, nil)
	kv.On("Set", mock.Anything, StorageKey, mock.Anything).Return(errors.New("quota exceeded"))
	kv.On("Remove", mock.Anything, StorageKey).Return(errors.New("quota exceeded"))

	s := New(ctx, kv)
	assert.True(t, s.AddUser(ctx, user("octocat", 8)))
	assert.True(t, s.IsFavorite(models.KindUser, "octocat"))

	assert.NotPanics(t, func() { s.Clear(ctx) })
	assert.Empty(t, s.List())
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	var events []string

	kv := new(MockKV)
	kv.On("Get", mock.Anything, StorageKey).Return(nil, false, nil)
	kv.On("Set", mock.Anything, StorageKey, mock.Anything).Return(nil).Run(func(mock.Arguments) {
		mu.Lock()
		events = append(events, "persist")
		mu.Unlock()
	})

	s := New(ctx, kv, WithClock(tickingClock()))
	s.AddUser(ctx, user("first", 1))

	var lists [][]string
	unsubscribe := s.Subscribe(func(list []models.Favorite) {
		mu.Lock()
		defer mu.Unlock()
		lists = append(lists, ids(list))
		events = append(events, "notify")
	})

	s.AddUser(ctx, user("second", 2))
	s.Remove(ctx, models.KindUser, "first")
	unsubscribe()
	unsubscribe()
	s.AddUser(ctx, user("third", 3))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, [][]string{
		{"first"},
		{"second", "first"},
		{"second"},
	}, lists)
	assert.Equal(t, []string{
		"persist",
		"notify",
		"notify", "persist",
		"notify", "persist",
		"persist",
	}, events)
}

func TestCountsAndByKind(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, nil, WithClock(tickingClock()))
	s.AddRepository(ctx, repo("a/one", "one", 1))
	s.AddUser(ctx, user("u1", 1))
	s.AddRepository(ctx, repo("a/two", "two", 2))

	assert.Equal(t, Counts{Total: 3, Repositories: 2, Users: 1}, s.Counts())
	assert.Equal(t, []string{"a/two", "a/one"}, ids(s.ByKind(models.KindRepository)))
	assert.Equal(t, []string{"u1"}, ids(s.ByKind(models.KindUser)))
}

func TestListIsACopy(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, nil)
	s.AddUser(ctx, user("octocat", 8))

	list := s.List()
	list[0].ID = "mutated"
	assert.True(t, s.IsFavorite(models.KindUser, "octocat"))
}

func TestConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := New(ctx, kv)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AddUser(ctx, user(string(rune('a'+i%26))+string(rune('a'+i/26)), i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Counts().Total)
	assert.Len(t, New(ctx, kv).List(), 50)
}
