// Package inmem implements an in-memory storage backend for campus records.
// Each record type lives in a btree ordered by key. Records are cloned on the
// way in and on the way out so callers never share memory with the store.
package inmem

import (
	"sync"

	"github.com/mesh-intelligence/campus/pkg/types"
)

// Backend is an in memory btree backed types.Repository. Data does not
// survive Detach.
type Backend struct {
	mu       sync.RWMutex
	attached bool

	articles               *store[int64, *types.Article]
	recommendationRequests *store[int64, *types.RecommendationRequest]
	menuItems              *store[int64, *types.MenuItem]
	organizations          *store[string, *types.Organization]
}

var _ types.Repository = (*Backend)(nil)

// NewBackend creates an instance of a Backend. The backend is not attached.
func NewBackend() *Backend {
	b := &Backend{}
	b.articles = newStore(b, types.ArticleSchema)
	b.recommendationRequests = newStore(b, types.RecommendationRequestSchema)
	b.menuItems = newStore(b, types.MenuItemSchema)
	b.organizations = newStore(b, types.OrganizationSchema)
	return b
}

func (b *Backend) Articles() types.Store[int64, *types.Article] { return b.articles }

func (b *Backend) RecommendationRequests() types.Store[int64, *types.RecommendationRequest] {
	return b.recommendationRequests
}

func (b *Backend) MenuItems() types.Store[int64, *types.MenuItem] { return b.menuItems }

func (b *Backend) Organizations() types.Store[string, *types.Organization] {
	return b.organizations
}

// Attach starts every store empty. Only Config.Backend is validated; the
// memory backend has no other settings.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	b.articles.reset()
	b.recommendationRequests.reset()
	b.menuItems.reset()
	b.organizations.reset()

	b.attached = true
	return nil
}

// Detach drops all records. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attached = false
	return nil
}
