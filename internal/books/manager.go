package books

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// API is the slice of the backend the manager needs.
type API interface {
	ListBooks(ctx context.Context) ([]Book, error)
	ListCategories(ctx context.Context) ([]Category, error)
	CreateBook(ctx context.Context, req CreateBookRequest) error
	UpdateBook(ctx context.Context, id int64, payload map[string]any) error
	DeleteBook(ctx context.Context, id int64) error
}

// Manager owns the client-side book cache and serializes every mutation
// behind a refetch-to-consistency convention: one mutating call, then an
// unconditional re-fetch of the book list. The cache is never patched
// optimistically, so it can only ever drift until the next refetch settles.
//
// Two rapid mutations may interleave their refetches; the last refetch to
// resolve wins. That race is accepted behavior, not corrected here.
type Manager struct {
	api API
	log *zap.Logger

	mu         sync.Mutex
	books      []Book
	categories []Category
	loading    bool

	editing *Book
	draft   *EditDraft
}

func NewManager(api API, log *zap.Logger) *Manager {
	return &Manager{api: api, log: log}
}

// Load runs the two initial reads. They are independent and unordered; the
// loading flag wraps the book fetch only.
func (m *Manager) Load(ctx context.Context) {
	m.fetchCategories(ctx)
	m.Refresh(ctx)
}

// Refresh re-fetches the book list behind the shared loading flag.
func (m *Manager) Refresh(ctx context.Context) {
	m.setLoading(true)
	defer m.setLoading(false)
	m.refreshBooks(ctx)
}

func (m *Manager) fetchCategories(ctx context.Context) {
	categories, err := m.api.ListCategories(ctx)
	if err != nil {
		m.log.Error("error fetching categories", zap.Error(err))
		return
	}
	m.mu.Lock()
	m.categories = categories
	m.mu.Unlock()
}

func (m *Manager) refreshBooks(ctx context.Context) {
	books, err := m.api.ListBooks(ctx)
	if err != nil {
		m.log.Error("error fetching books", zap.Error(err))
		return
	}
	m.mu.Lock()
	m.books = books
	m.mu.Unlock()
}

// Books returns the current cache snapshot.
func (m *Manager) Books() []Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Book, len(m.books))
	copy(out, m.books)
	return out
}

// Categories returns the cached category list.
func (m *Manager) Categories() []Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Category, len(m.categories))
	copy(out, m.categories)
	return out
}

// Find looks a book up in the cache by id.
func (m *Manager) Find(id int64) (Book, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}

// Loading reports whether a book fetch is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}

// Add creates a book, then refetches the list regardless of outcome.
func (m *Manager) Add(ctx context.Context, req CreateBookRequest) error {
	m.setLoading(true)
	defer func() {
		m.refreshBooks(ctx)
		m.setLoading(false)
	}()

	if err := m.api.CreateBook(ctx, req); err != nil {
		m.log.Error("error adding book", zap.Error(err))
		return err
	}
	return nil
}

// Like increments the like count by exactly one relative to the cached
// value at call time. The displayed value after the refetch settles is
// whatever the server returned, not the local increment.
func (m *Manager) Like(ctx context.Context, id int64) error {
	book, ok := m.Find(id)
	if !ok {
		return fmt.Errorf("book %d not in the current list", id)
	}

	m.setLoading(true)
	defer func() {
		m.refreshBooks(ctx)
		m.setLoading(false)
	}()

	payload := map[string]any{"likeCount": book.LikeCount + 1}
	if err := m.api.UpdateBook(ctx, id, payload); err != nil {
		m.log.Error("error liking book", zap.Error(err))
		return err
	}
	return nil
}

// Delete removes a book, then refetches the list regardless of outcome.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	m.setLoading(true)
	defer func() {
		m.refreshBooks(ctx)
		m.setLoading(false)
	}()

	if err := m.api.DeleteBook(ctx, id); err != nil {
		m.log.Error("error deleting book", zap.Error(err))
		return err
	}
	return nil
}

// Update patches a book from its merged draft state. The payload is
// sanitized so the server-owned fields never travel back.
func (m *Manager) Update(ctx context.Context, book Book) error {
	payload, err := UpdatePayload(book)
	if err != nil {
		return err
	}

	m.setLoading(true)
	defer func() {
		m.refreshBooks(ctx)
		m.setLoading(false)
	}()

	if err := m.api.UpdateBook(ctx, book.ID, payload); err != nil {
		m.log.Error("error editing book", zap.Error(err))
		return err
	}
	return nil
}

// OpenEdit starts an edit for the given cached book and returns the draft.
// Any previous draft is discarded.
func (m *Manager) OpenEdit(id int64) (*EditDraft, bool) {
	book, ok := m.Find(id)
	if !ok {
		return nil, false
	}
	draft := NewEditDraft(book)
	m.mu.Lock()
	m.editing = &book
	m.draft = &draft
	m.mu.Unlock()
	return &draft, true
}

// CancelEdit discards the open draft, if any.
func (m *Manager) CancelEdit() {
	m.mu.Lock()
	m.editing = nil
	m.draft = nil
	m.mu.Unlock()
}

// Draft returns the open draft, or nil when no edit is in progress.
func (m *Manager) Draft() *EditDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// SaveEdit applies the open draft and sends the update. The draft is
// cleared unconditionally once the save settles, success or not.
func (m *Manager) SaveEdit(ctx context.Context) error {
	m.mu.Lock()
	editing, draft := m.editing, m.draft
	m.mu.Unlock()

	if editing == nil || draft == nil {
		return fmt.Errorf("no edit in progress")
	}
	defer m.CancelEdit()

	merged, err := draft.Apply(*editing)
	if err != nil {
		return err
	}
	return m.Update(ctx, merged)
}
