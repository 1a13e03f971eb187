package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries a request context together with an optional GORM
// transaction. When Tx is nil, repos fall back to their shared handle;
// services that need multi-step atomicity open a transaction and pass
// it through here.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}
