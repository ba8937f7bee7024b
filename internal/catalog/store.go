// internal/catalog/store.go
package catalog

import (
	"context"
	"errors"
)

var (
	// ErrDuplicateCode is returned by an ItemStore when a save would
	// violate code uniqueness.
	ErrDuplicateCode = errors.New("item code already exists")

	// ErrWrongState is returned by SetBorrowed when the item's current
	// borrowed flag does not match the expected value.
	ErrWrongState = errors.New("item is not in the expected state")
)

// ItemStore is the persistence contract consumed by the lending
// service. Implementations must support concurrent callers; SetBorrowed
// is the atomic compare-and-swap the lend/return state machine relies
// on, so two operations on the same code are linearized by the store.
type ItemStore interface {
	// Save persists a new item. Returns ErrDuplicateCode on a code
	// collision.
	Save(ctx context.Context, item *Item) error

	// FindByCode returns the item with the given code, or nil if
	// unknown.
	FindByCode(ctx context.Context, code string) (*Item, error)

	// ListAll returns every item.
	ListAll(ctx context.Context) ([]*Item, error)

	// ListByKind returns the items of one variant kind.
	ListByKind(ctx context.Context, kind Kind) ([]*Item, error)

	// ListAvailable returns the items with borrowed == false.
	ListAvailable(ctx context.Context) ([]*Item, error)

	// ListBorrowed returns the items with borrowed == true.
	ListBorrowed(ctx context.Context) ([]*Item, error)

	// Remove deletes the item if present and reports whether a record
	// was actually removed.
	Remove(ctx context.Context, code string) (bool, error)

	// Update overwrites an existing item record.
	Update(ctx context.Context, item *Item) error

	// SetBorrowed atomically flips the borrowed flag from `from` to
	// `to`. It returns the updated item, (nil, nil) if the code is
	// unknown, or ErrWrongState if the current flag is not `from`.
	SetBorrowed(ctx context.Context, code string, from, to bool) (*Item, error)
}
