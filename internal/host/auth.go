package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/paystream/ledger/internal/models"
)

// ErrUnauthenticated indicates the caller could not prove control of the
// required address.
var ErrUnauthenticated = errors.New("caller not authenticated for address")

// Auth is the capability check every mutating operation runs before touching
// state: "the caller proves control of address addr".
type Auth interface {
	RequireAuth(ctx context.Context, addr models.Address) error
}

type callerKey struct{}

// WithCaller records the authenticated caller address on the context. The HTTP
// layer sets it from the gateway-verified caller header.
func WithCaller(ctx context.Context, addr models.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, addr)
}

// CallerFromContext returns the authenticated caller address, if any.
func CallerFromContext(ctx context.Context) (models.Address, bool) {
	addr, ok := ctx.Value(callerKey{}).(models.Address)
	return addr, ok
}

// ContextAuth authorizes an address only when it matches the caller recorded
// on the context.
type ContextAuth struct{}

func (ContextAuth) RequireAuth(ctx context.Context, addr models.Address) error {
	caller, ok := CallerFromContext(ctx)
	if !ok || caller != addr {
		return fmt.Errorf("%w: %s", ErrUnauthenticated, addr)
	}
	return nil
}

// OpenAuth accepts every address. Used in tests and development mode, where
// the runtime mocks all auths.
type OpenAuth struct{}

func (OpenAuth) RequireAuth(context.Context, models.Address) error {
	return nil
}
