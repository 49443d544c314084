package authz

import (
	"context"
	"fmt"

	perrors "github.com/mesh-intelligence/campus/internal/platform/errors"
)

type contextKey string

const principalCtxKey = contextKey("campus/authz/principal")

// SetPrincipal sets the principal on context.
func SetPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// GetPrincipal retrieves the principal from context. A context without one
// carries the anonymous principal.
func GetPrincipal(ctx context.Context) Principal {
	p, ok := ctx.Value(principalCtxKey).(Principal)
	if !ok {
		return AnonymousPrincipal
	}
	return p
}

// Authorize checks the principal on ctx against the required capability.
func Authorize(ctx context.Context, required Capability) error {
	p := GetPrincipal(ctx)
	if p.Capability.Allows(required) {
		return nil
	}
	return &perrors.Error{
		Code: perrors.EForbidden,
		Msg:  "Access is denied",
		Op:   "authz/Authorize",
		Err:  fmt.Errorf("%s principal lacks %s capability", p.Capability, required),
	}
}
