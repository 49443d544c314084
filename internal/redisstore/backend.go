// Package redisstore implements a Redis storage backend for campus records.
//
// Each record type is one hash, "<prefix>:<table>", mapping the record key to
// the record's JSON encoding. Numeric keys come from the counter
// "<prefix>:<table>:seq".
package redisstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/campus/pkg/types"
)

// pingTimeout bounds the connectivity check made by Attach.
const pingTimeout = 5 * time.Second

// Backend is a types.Repository stored in Redis. It is safe for concurrent
// use; every command is atomic on the server.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	rdb      *redis.Client
	prefix   string
	log      *zap.Logger

	articles               *store[int64, *types.Article]
	recommendationRequests *store[int64, *types.RecommendationRequest]
	menuItems              *store[int64, *types.MenuItem]
	organizations          *store[string, *types.Organization]
}

var _ types.Repository = (*Backend)(nil)

// NewBackend creates a Redis backend. The backend is not attached.
func NewBackend(log *zap.Logger) *Backend {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Backend{log: log}
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

// Attach connects to the server named by config.RedisConfig and verifies it
// answers a PING.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.RedisConfig == nil || config.RedisConfig.Addr == "" {
		return types.ErrRedisAddrEmpty
	}

	rc := config.RedisConfig
	rdb := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return fmt.Errorf("connecting to redis at %s: %w", rc.Addr, err)
	}

	b.rdb = rdb
	b.prefix = rc.GetKeyPrefix()
	b.attached = true
	b.log.Info("Attached redis backend",
		zap.String("addr", rc.Addr),
		zap.Int("db", rc.DB),
		zap.String("key_prefix", b.prefix))
	return nil
}

// Detach closes the connection. Records stay on the server. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	err := b.rdb.Close()
	b.rdb = nil
	return err
}
