package testutil

import (
	"context"

	"github.com/skipbin/skipbin/internal/types"
)

// SetupContext returns a context carrying the default test identity
func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	return ctx
}
