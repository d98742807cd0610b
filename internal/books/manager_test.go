package books

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type patchCall struct {
	id      int64
	payload map[string]any
}

type gatedList struct {
	gate  chan struct{} // nil means respond immediately
	books []Book
}

// fakeAPI serves queued book lists in call order; individual responses can
// be gated to pin down refetch interleavings.
type fakeAPI struct {
	mu         sync.Mutex
	categories []Category
	lists      []gatedList
	listCalls  int
	started    chan int

	createErr error
	updateErr error
	deleteErr error

	patches []patchCall
	deletes []int64
}

func (f *fakeAPI) ListBooks(ctx context.Context) ([]Book, error) {
	f.mu.Lock()
	if f.listCalls >= len(f.lists) {
		f.mu.Unlock()
		return nil, errors.New("no more queued lists")
	}
	entry := f.lists[f.listCalls]
	index := f.listCalls
	f.listCalls++
	f.mu.Unlock()

	if f.started != nil {
		f.started <- index
	}
	if entry.gate != nil {
		<-entry.gate
	}
	return entry.books, nil
}

func (f *fakeAPI) ListCategories(ctx context.Context) ([]Category, error) {
	return f.categories, nil
}

func (f *fakeAPI) CreateBook(ctx context.Context, req CreateBookRequest) error {
	return f.createErr
}

func (f *fakeAPI) UpdateBook(ctx context.Context, id int64, payload map[string]any) error {
	f.mu.Lock()
	f.patches = append(f.patches, patchCall{id: id, payload: payload})
	f.mu.Unlock()
	return f.updateErr
}

func (f *fakeAPI) DeleteBook(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.deletes = append(f.deletes, id)
	f.mu.Unlock()
	return f.deleteErr
}

func TestManager_LoadFetchesBothLists(t *testing.T) {
	fake := &fakeAPI{
		categories: []Category{{ID: 1, Name: "Sci-Fi"}},
		lists:      []gatedList{{books: []Book{{ID: 1, Title: "Dune"}}}},
	}
	m := NewManager(fake, zap.NewNop())

	m.Load(context.Background())

	assert.Len(t, m.Books(), 1)
	assert.Len(t, m.Categories(), 1)
	assert.False(t, m.Loading())
}

// Liking a book with likeCount 4 issues PATCH {likeCount: 5}, then a
// refetch; the displayed value afterwards is whatever the refetch returned,
// not the local increment.
func TestManager_LikeUsesCachedCountAndRefetchWins(t *testing.T) {
	fake := &fakeAPI{
		lists: []gatedList{
			{books: []Book{{ID: 1, Title: "Dune", LikeCount: 4}}},
			{books: []Book{{ID: 1, Title: "Dune", LikeCount: 99}}},
		},
	}
	m := NewManager(fake, zap.NewNop())
	m.Load(context.Background())

	require.NoError(t, m.Like(context.Background(), 1))

	require.Len(t, fake.patches, 1)
	assert.Equal(t, int64(1), fake.patches[0].id)
	assert.Equal(t, map[string]any{"likeCount": 5}, fake.patches[0].payload)

	book, ok := m.Find(1)
	require.True(t, ok)
	assert.Equal(t, 99, book.LikeCount, "server value is authoritative after the refetch")
}

func TestManager_LikeUnknownBook(t *testing.T) {
	fake := &fakeAPI{lists: []gatedList{{books: nil}}}
	m := NewManager(fake, zap.NewNop())
	m.Load(context.Background())

	err := m.Like(context.Background(), 42)
	assert.Error(t, err)
	assert.Empty(t, fake.patches, "no network call for a book outside the cache")
}

// The consistency refetch runs even when the mutation itself failed, and
// the loading flag clears only after it settles.
func TestManager_FailedMutationStillRefetches(t *testing.T) {
	fake := &fakeAPI{
		createErr: errors.New("boom"),
		lists:     []gatedList{{books: []Book{{ID: 8, Title: "New"}}}},
	}
	m := NewManager(fake, zap.NewNop())

	err := m.Add(context.Background(), CreateBookRequest{Title: "New"})
	assert.Error(t, err)

	assert.Equal(t, 1, fake.listCalls, "refetch ran despite the failure")
	assert.Len(t, m.Books(), 1, "cache was replaced by the refetch")
	assert.False(t, m.Loading())
}

func TestManager_UpdateSanitizesPayload(t *testing.T) {
	fake := &fakeAPI{
		lists: []gatedList{
			{books: []Book{{ID: 3, Title: "Dune", Category: &Category{ID: 1, Name: "Sci-Fi"}}}},
			{books: []Book{{ID: 3, Title: "Dune II"}}},
		},
	}
	m := NewManager(fake, zap.NewNop())
	m.Load(context.Background())

	book, _ := m.Find(3)
	book.Title = "Dune II"
	require.NoError(t, m.Update(context.Background(), book))

	require.Len(t, fake.patches, 1)
	payload := fake.patches[0].payload
	assert.NotContains(t, payload, "id")
	assert.NotContains(t, payload, "category")
	assert.NotContains(t, payload, "createdAt")
	assert.NotContains(t, payload, "updatedAt")
	assert.Equal(t, "Dune II", payload["title"])
}

func TestManager_EditDraftLifecycle(t *testing.T) {
	fake := &fakeAPI{
		lists: []gatedList{
			{books: []Book{{ID: 5, Title: "Dune", Price: 10, Stock: 2}}},
			{books: []Book{{ID: 5, Title: "Dune", Price: 12.5, Stock: 2}}},
		},
	}
	m := NewManager(fake, zap.NewNop())
	m.Load(context.Background())

	draft, ok := m.OpenEdit(5)
	require.True(t, ok)
	require.NotNil(t, m.Draft())

	draft.Price = "12.5"
	require.NoError(t, m.SaveEdit(context.Background()))

	assert.Nil(t, m.Draft(), "draft cleared once the save settles")
	require.Len(t, fake.patches, 1)
	assert.Equal(t, 12.5, fake.patches[0].payload["price"])
}

func TestManager_CancelEditClearsDraft(t *testing.T) {
	fake := &fakeAPI{lists: []gatedList{{books: []Book{{ID: 5, Title: "Dune"}}}}}
	m := NewManager(fake, zap.NewNop())
	m.Load(context.Background())

	_, ok := m.OpenEdit(5)
	require.True(t, ok)

	m.CancelEdit()
	assert.Nil(t, m.Draft())

	err := m.SaveEdit(context.Background())
	assert.Error(t, err, "saving without an open draft fails")
}

// Two rapid deletes whose refetches interleave: the last refetch to
// resolve determines the displayed cache, even when it is the stale one.
// Accepted behavior, documented here.
func TestManager_StaleRefetchWinsRace(t *testing.T) {
	staleGate := make(chan struct{})
	freshGate := make(chan struct{})
	stale := []Book{{ID: 2, Title: "After delete 1"}}
	fresh := []Book{{ID: 3, Title: "After delete 2"}}

	fake := &fakeAPI{
		lists: []gatedList{
			{books: []Book{{ID: 1}, {ID: 2}, {ID: 3}}}, // initial load
			{gate: staleGate, books: stale},             // delete(1) refetch
			{gate: freshGate, books: fresh},             // delete(2) refetch
		},
		started: make(chan int, 3),
	}
	m := NewManager(fake, zap.NewNop())
	m.Load(context.Background())
	require.Equal(t, 0, <-fake.started)

	done1 := make(chan struct{})
	done2 := make(chan struct{})

	go func() {
		defer close(done1)
		_ = m.Delete(context.Background(), 1)
	}()
	require.Equal(t, 1, <-fake.started, "delete(1) refetch in flight")

	go func() {
		defer close(done2)
		_ = m.Delete(context.Background(), 2)
	}()
	require.Equal(t, 2, <-fake.started, "delete(2) refetch in flight")

	// delete(2)'s refetch resolves first, delete(1)'s stale one last.
	close(freshGate)
	<-done2
	close(staleGate)
	<-done1

	assert.Equal(t, stale, m.Books(), "last refetch to resolve wins")
}
