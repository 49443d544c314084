// Package repository provides the public API for opening a campus record
// repository. It exposes the backend factory while keeping the backend
// implementations internal.
package repository

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/campus/internal/inmem"
	"github.com/mesh-intelligence/campus/internal/redisstore"
	"github.com/mesh-intelligence/campus/internal/sqlite"
	"github.com/mesh-intelligence/campus/pkg/types"
)

// New returns an unattached repository for the backend named by
// config.Backend.
//
// Example:
//
//	repo, err := repository.New(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".campus-db",
//	}, log)
//	if err != nil { ... }
//	err = repo.Attach(cfg)
//	defer repo.Detach()
func New(config types.Config, log *zap.Logger) (types.Repository, error) {
	switch config.Backend {
	case types.BackendSQLite:
		return sqlite.NewBackend(log), nil
	case types.BackendMemory:
		return inmem.NewBackend(), nil
	case types.BackendRedis:
		return redisstore.NewBackend(log), nil
	case "":
		return nil, types.ErrBackendEmpty
	default:
		return nil, types.ErrBackendUnknown
	}
}

// Open creates the repository for config and attaches it.
func Open(config types.Config, log *zap.Logger) (types.Repository, error) {
	repo, err := New(config, log)
	if err != nil {
		return nil, err
	}
	if err := repo.Attach(config); err != nil {
		return nil, err
	}
	return repo, nil
}
