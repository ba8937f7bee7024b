// Package memory provides mutex-guarded in-memory implementations of
// the storage contracts. The check-and-modify sequences run inside the
// write lock, which gives the per-key atomicity the services rely on.
package memory

import (
	"context"
	"strings"
	"sync"

	"biblioteca/internal/catalog"
	"biblioteca/internal/membership"
)

// UserStore keeps user records in memory, indexed by id and by
// lower-cased email.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]membership.User
	byEmail map[string]string // lower(email) -> id
}

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]membership.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) Save(ctx context.Context, user *membership.User) error {
	key := strings.ToLower(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[key]; taken {
		return membership.ErrDuplicateEmail
	}
	s.byID[user.ID] = *user
	s.byEmail[key] = user.ID
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*membership.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*membership.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	user := s.byID[id]
	return &user, nil
}

func (s *UserStore) ListAll(ctx context.Context) ([]*membership.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*membership.User, 0, len(s.byID))
	for _, user := range s.byID {
		u := user
		users = append(users, &u)
	}
	return users, nil
}

func (s *UserStore) Update(ctx context.Context, user *membership.User) error {
	key := strings.ToLower(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[user.ID]
	if !ok {
		// Updating a record that was removed concurrently is a no-op;
		// the services re-check existence before patching.
		return nil
	}

	if owner, taken := s.byEmail[key]; taken && owner != user.ID {
		return membership.ErrDuplicateEmail
	}

	oldKey := strings.ToLower(current.Email)
	if oldKey != key {
		delete(s.byEmail, oldKey)
		s.byEmail[key] = user.ID
	}
	s.byID[user.ID] = *user
	return nil
}

func (s *UserStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.byID[id]; ok {
		delete(s.byEmail, strings.ToLower(user.Email))
		delete(s.byID, id)
	}
	return nil
}

func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byEmail[strings.ToLower(email)]
	return ok, nil
}

// ItemStore keeps catalog items in memory, indexed by code.
type ItemStore struct {
	mu     sync.RWMutex
	byCode map[string]catalog.Item
}

// NewItemStore creates an empty in-memory item store.
func NewItemStore() *ItemStore {
	return &ItemStore{byCode: make(map[string]catalog.Item)}
}

func (s *ItemStore) Save(ctx context.Context, item *catalog.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byCode[item.Code]; taken {
		return catalog.ErrDuplicateCode
	}
	s.byCode[item.Code] = *item
	return nil
}

func (s *ItemStore) FindByCode(ctx context.Context, code string) (*catalog.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.byCode[code]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *ItemStore) ListAll(ctx context.Context) ([]*catalog.Item, error) {
	return s.list(func(catalog.Item) bool { return true })
}

func (s *ItemStore) ListByKind(ctx context.Context, kind catalog.Kind) ([]*catalog.Item, error) {
	return s.list(func(item catalog.Item) bool { return item.Kind == kind })
}

func (s *ItemStore) ListAvailable(ctx context.Context) ([]*catalog.Item, error) {
	return s.list(func(item catalog.Item) bool { return !item.Borrowed })
}

func (s *ItemStore) ListBorrowed(ctx context.Context) ([]*catalog.Item, error) {
	return s.list(func(item catalog.Item) bool { return item.Borrowed })
}

func (s *ItemStore) list(keep func(catalog.Item) bool) ([]*catalog.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []*catalog.Item
	for _, item := range s.byCode {
		if keep(item) {
			i := item
			items = append(items, &i)
		}
	}
	return items, nil
}

func (s *ItemStore) Remove(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byCode[code]; !ok {
		return false, nil
	}
	delete(s.byCode, code)
	return true, nil
}

func (s *ItemStore) Update(ctx context.Context, item *catalog.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byCode[item.Code]; ok {
		s.byCode[item.Code] = *item
	}
	return nil
}

func (s *ItemStore) SetBorrowed(ctx context.Context, code string, from, to bool) (*catalog.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.byCode[code]
	if !ok {
		return nil, nil
	}
	if item.Borrowed != from {
		return nil, catalog.ErrWrongState
	}

	item.Borrowed = to
	s.byCode[code] = item
	return &item, nil
}
