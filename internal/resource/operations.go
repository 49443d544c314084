package resource

import (
	"cmp"
	"context"

	"github.com/mesh-intelligence/campus/pkg/types"
)

// Operations is a resource seen without its key and record types. Keys are
// given in their textual form.
type Operations interface {
	TypeName() string
	Path() string
	List(ctx context.Context) (any, error)
	Get(ctx context.Context, key string) (any, error)
	Delete(ctx context.Context, key string) (Message, error)
}

type operations[K cmp.Ordered, R types.Record[K]] struct {
	svc *Service[K, R]
}

// Operations returns the untyped view of s.
func (s *Service[K, R]) Operations() Operations {
	return operations[K, R]{svc: s}
}

func (o operations[K, R]) TypeName() string { return o.svc.def.TypeName }
func (o operations[K, R]) Path() string     { return o.svc.def.Path }

func (o operations[K, R]) List(ctx context.Context) (any, error) {
	return o.svc.List(ctx)
}

func (o operations[K, R]) Get(ctx context.Context, key string) (any, error) {
	k, err := o.svc.def.parseKey(key)
	if err != nil {
		return nil, err
	}
	return o.svc.Get(ctx, k)
}

func (o operations[K, R]) Delete(ctx context.Context, key string) (Message, error) {
	k, err := o.svc.def.parseKey(key)
	if err != nil {
		return Message{}, err
	}
	return o.svc.Delete(ctx, k)
}
