package types

import "errors"

// Repository gives access to the stores of every record type on one
// backend. Callers attach to a backend, use the stores, and detach when done.
type Repository interface {
	Articles() Store[int64, *Article]
	RecommendationRequests() Store[int64, *RecommendationRequest]
	MenuItems() Store[int64, *MenuItem]
	Organizations() Store[string, *Organization]

	// Attach connects the Repository to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, store operations return ErrDetached.
	Detach() error
}

// Repository lifecycle errors.
var (
	ErrDetached        = errors.New("repository is detached")
	ErrAlreadyAttached = errors.New("repository is already attached")
)
