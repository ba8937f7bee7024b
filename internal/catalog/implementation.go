// internal/catalog/implementation.go
package catalog

import (
	"context"
	"errors"
	"log"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"biblioteca/internal/apperr"
)

// service implements the Service interface.
type service struct {
	store   ItemStore
	tracer  trace.Tracer
	lends   metric.Int64Counter
	returns metric.Int64Counter
}

// NewService creates a new catalog service instance.
func NewService(store ItemStore) Service {
	meter := otel.Meter("biblioteca/catalog")
	lends, err := meter.Int64Counter("catalog.lends",
		metric.WithDescription("Successful item lends"))
	if err != nil {
		log.Printf("failed to register lend counter: %v", err)
	}
	returns, err := meter.Int64Counter("catalog.returns",
		metric.WithDescription("Successful item returns"))
	if err != nil {
		log.Printf("failed to register return counter: %v", err)
	}

	return &service{
		store:   store,
		tracer:  otel.Tracer("biblioteca/catalog"),
		lends:   lends,
		returns: returns,
	}
}

// AddItem validates the spec and adds an available item to the catalog.
// The duplicate-code check runs before anything is persisted, so a
// failed add never leaves a catalog entry behind.
func (s *service) AddItem(ctx context.Context, spec ItemSpec) (*Item, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.add_item",
		trace.WithAttributes(attribute.String("item.code", spec.Code)))
	defer span.End()

	item, err := newItem(spec)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindByCode(ctx, item.Code)
	if err != nil {
		return nil, apperr.Internal("failed to check item code", err)
	}
	if existing != nil {
		log.Printf("duplicate item code rejected: %s", item.Code)
		return nil, apperr.ItemAlreadyExists(item.Code)
	}

	if err := s.store.Save(ctx, item); err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			return nil, apperr.ItemAlreadyExists(item.Code)
		}
		return nil, apperr.Internal("failed to save item", err)
	}

	log.Printf("item added: %s (%s)", item.Code, item.Kind)
	return item, nil
}

// GetItem returns a single item by code.
func (s *service) GetItem(ctx context.Context, code string) (*Item, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.get_item",
		trace.WithAttributes(attribute.String("item.code", code)))
	defer span.End()

	item, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return nil, apperr.Internal("failed to look up item", err)
	}
	if item == nil {
		return nil, apperr.ItemNotFound(code)
	}
	return item, nil
}

// LendItem transitions an item from available to borrowed. The store
// performs the flip as an atomic compare-and-swap, so concurrent lends
// of the same code cannot both succeed.
func (s *service) LendItem(ctx context.Context, code string) (*Item, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.lend_item",
		trace.WithAttributes(attribute.String("item.code", code)))
	defer span.End()

	item, err := s.store.SetBorrowed(ctx, code, false, true)
	if err != nil {
		if errors.Is(err, ErrWrongState) {
			log.Printf("lend rejected, already borrowed: %s", code)
			return nil, apperr.InvalidOperation("item is already borrowed")
		}
		return nil, apperr.Internal("failed to lend item", err)
	}
	if item == nil {
		return nil, apperr.ItemNotFound(code)
	}

	if s.lends != nil {
		s.lends.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(item.Kind))))
	}
	log.Printf("item lent: %s", code)
	return item, nil
}

// ReturnItem transitions an item from borrowed back to available.
func (s *service) ReturnItem(ctx context.Context, code string) (*Item, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.return_item",
		trace.WithAttributes(attribute.String("item.code", code)))
	defer span.End()

	item, err := s.store.SetBorrowed(ctx, code, true, false)
	if err != nil {
		if errors.Is(err, ErrWrongState) {
			log.Printf("return rejected, not borrowed: %s", code)
			return nil, apperr.InvalidOperation("item is not borrowed")
		}
		return nil, apperr.Internal("failed to return item", err)
	}
	if item == nil {
		return nil, apperr.ItemNotFound(code)
	}

	if s.returns != nil {
		s.returns.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(item.Kind))))
	}
	log.Printf("item returned: %s", code)
	return item, nil
}

// RemoveItem deletes an item, reporting whether anything was removed.
// Removing an unknown code is not an error.
func (s *service) RemoveItem(ctx context.Context, code string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.remove_item",
		trace.WithAttributes(attribute.String("item.code", code)))
	defer span.End()

	removed, err := s.store.Remove(ctx, code)
	if err != nil {
		return false, apperr.Internal("failed to remove item", err)
	}
	if removed {
		log.Printf("item removed: %s", code)
	}
	return removed, nil
}

// ListAll returns every catalog item ordered by code.
func (s *service) ListAll(ctx context.Context) ([]*Item, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.list_all")
	defer span.End()

	items, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list items", err)
	}
	sortByCode(items)
	return items, nil
}

// ListAvailable returns the items not currently borrowed.
func (s *service) ListAvailable(ctx context.Context) ([]*Item, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.list_available")
	defer span.End()

	items, err := s.store.ListAvailable(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list items", err)
	}
	sortByCode(items)
	return items, nil
}

// ListBorrowed returns the items currently borrowed.
func (s *service) ListBorrowed(ctx context.Context) ([]*Item, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.list_borrowed")
	defer span.End()

	items, err := s.store.ListBorrowed(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list items", err)
	}
	sortByCode(items)
	return items, nil
}

// ListByKind returns the items of one variant kind.
func (s *service) ListByKind(ctx context.Context, kind Kind) ([]*Item, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.list_by_kind",
		trace.WithAttributes(attribute.String("item.kind", string(kind))))
	defer span.End()

	items, err := s.store.ListByKind(ctx, kind)
	if err != nil {
		return nil, apperr.Internal("failed to list items", err)
	}
	sortByCode(items)
	return items, nil
}

// Statistics summarizes the catalog.
func (s *service) Statistics(ctx context.Context) (*Statistics, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.statistics")
	defer span.End()

	items, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list items", err)
	}

	stats := &Statistics{ByKind: make(map[Kind]int)}
	for _, item := range items {
		stats.Total++
		if item.Borrowed {
			stats.Borrowed++
		} else {
			stats.Available++
		}
		stats.ByKind[item.Kind]++
	}
	return stats, nil
}

func sortByCode(items []*Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].Code < items[j].Code })
}
