package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries a request context and, inside a unit of work, the open transaction.
// A nil Tx means repos run against their own handle.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// Background is a Context with no deadline and no transaction.
func Background() Context {
	return Context{Ctx: context.Background()}
}

// Context returns Ctx, or context.Background when the caller left it nil.
func (c Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}
