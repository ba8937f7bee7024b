// internal/catalog/service.go
package catalog

import (
	"context"
)

// Service defines the interface for catalog management and the
// lend/return state machine.
type Service interface {
	AddItem(ctx context.Context, spec ItemSpec) (*Item, error)
	GetItem(ctx context.Context, code string) (*Item, error)
	LendItem(ctx context.Context, code string) (*Item, error)
	ReturnItem(ctx context.Context, code string) (*Item, error)
	RemoveItem(ctx context.Context, code string) (bool, error)
	ListAll(ctx context.Context) ([]*Item, error)
	ListAvailable(ctx context.Context) ([]*Item, error)
	ListBorrowed(ctx context.Context) ([]*Item, error)
	ListByKind(ctx context.Context, kind Kind) ([]*Item, error)
	Statistics(ctx context.Context) (*Statistics, error)
}
