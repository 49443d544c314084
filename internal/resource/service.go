package resource

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	perrors "github.com/mesh-intelligence/campus/internal/platform/errors"
	"github.com/mesh-intelligence/campus/pkg/types"
)

// Message is the body returned by Delete.
type Message struct {
	Message string `json:"message"`
}

// Service implements the record operations of one resource on top of its
// store. Authorization is enforced in front of it.
type Service[K cmp.Ordered, R types.Record[K]] struct {
	def   Definition[K, R]
	store types.Store[K, R]
}

// NewService returns the service of def backed by store.
func NewService[K cmp.Ordered, R types.Record[K]](def Definition[K, R], store types.Store[K, R]) *Service[K, R] {
	return &Service[K, R]{def: def, store: store}
}

// Definition returns the resource definition.
func (s *Service[K, R]) Definition() Definition[K, R] {
	return s.def
}

func (s *Service[K, R]) op(name string) string {
	return "resource/" + s.def.TypeName + "." + name
}

func (s *Service[K, R]) notFound(op string, key K) error {
	return perrors.NewError(
		perrors.WithErrorCode(perrors.ENotFound),
		perrors.WithErrorMsg(fmt.Sprintf("%s with id %v not found", s.def.TypeName, key)),
		perrors.WithErrorOp(s.op(op)),
	)
}

func (s *Service[K, R]) internal(op string, err error) error {
	var pe *perrors.Error
	if errors.As(err, &pe) {
		return err
	}
	return perrors.NewError(
		perrors.WithErrorCode(perrors.EInternal),
		perrors.WithErrorOp(s.op(op)),
		perrors.WithErrorErr(err),
	)
}

// find returns the stored record or a not-found error naming key.
func (s *Service[K, R]) find(ctx context.Context, op string, key K) (R, error) {
	rec, err := s.store.FindByKey(ctx, key)
	if errors.Is(err, types.ErrNotFound) {
		return rec, s.notFound(op, key)
	}
	if err != nil {
		return rec, s.internal(op, err)
	}
	return rec, nil
}

// List returns every record.
func (s *Service[K, R]) List(ctx context.Context) ([]R, error) {
	recs, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, s.internal("List", err)
	}
	if recs == nil {
		recs = []R{}
	}
	return recs, nil
}

// Get returns the record with key.
func (s *Service[K, R]) Get(ctx context.Context, key K) (R, error) {
	return s.find(ctx, "Get", key)
}

// Create saves rec as a new record and returns it with its key. Records of
// store-keyed types never choose their own key.
func (s *Service[K, R]) Create(ctx context.Context, rec R) (R, error) {
	var zeroKey K
	if s.def.storeKeyed() {
		rec.SetRecordKey(zeroKey)
	} else if rec.RecordKey() == zeroKey {
		var zero R
		return zero, perrors.NewError(
			perrors.WithErrorCode(perrors.EInvalid),
			perrors.WithErrorMsg(fmt.Sprintf("required parameter '%s' is not present", s.def.KeyParam)),
			perrors.WithErrorOp(s.op("Create")),
		)
	}

	saved, err := s.store.Save(ctx, rec)
	if err != nil {
		var zero R
		return zero, s.internal("Create", err)
	}
	return saved, nil
}

// Update replaces every field of the record with key by the fields of
// incoming. The key itself never changes.
func (s *Service[K, R]) Update(ctx context.Context, key K, incoming R) (R, error) {
	var zero R

	rec, err := s.find(ctx, "Update", key)
	if err != nil {
		return zero, err
	}
	if err := ReplaceFields[K](rec, incoming); err != nil {
		return zero, s.internal("Update", err)
	}

	saved, err := s.store.Save(ctx, rec)
	if err != nil {
		return zero, s.internal("Update", err)
	}
	return saved, nil
}

// Delete removes the record with key and returns the confirmation message.
func (s *Service[K, R]) Delete(ctx context.Context, key K) (Message, error) {
	if _, err := s.find(ctx, "Delete", key); err != nil {
		return Message{}, err
	}

	err := s.store.Delete(ctx, key)
	if errors.Is(err, types.ErrNotFound) {
		return Message{}, s.notFound("Delete", key)
	}
	if err != nil {
		return Message{}, s.internal("Delete", err)
	}
	return Message{Message: fmt.Sprintf("%s with id %v deleted", s.def.TypeName, key)}, nil
}
