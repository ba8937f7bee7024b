// Package postgres provides lib/pq-backed implementations of the
// storage contracts. Uniqueness lives in database constraints and the
// borrowed flip is a single-statement compare-and-swap, so the per-key
// atomicity the services rely on holds across processes too.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"biblioteca/internal/catalog"
	"biblioteca/internal/membership"
)

const uniqueViolation = "23505"

// InitSchema creates the tables and indexes if they do not exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			credential_hash TEXT NOT NULL,
			credential_salt TEXT NOT NULL,
			role TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_access_at TIMESTAMPTZ
		);
		CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (LOWER(email));

		CREATE TABLE IF NOT EXISTS items (
			code TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			kind TEXT NOT NULL,
			borrowed BOOLEAN NOT NULL DEFAULT FALSE,
			author TEXT NOT NULL DEFAULT '',
			page_count INT NOT NULL DEFAULT 0,
			isbn TEXT NOT NULL DEFAULT '',
			issue_number INT NOT NULL DEFAULT 0,
			issue_date TEXT NOT NULL DEFAULT '',
			publisher TEXT NOT NULL DEFAULT '',
			director TEXT NOT NULL DEFAULT '',
			duration_minutes INT NOT NULL DEFAULT 0,
			genre TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// UserStore persists user records in Postgres.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a Postgres-backed user store.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = "id, name, email, credential_hash, credential_salt, role, active, created_at, last_access_at"

func (s *UserStore) Save(ctx context.Context, user *membership.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, user.ID, user.Name, user.Email, user.CredentialHash, user.CredentialSalt,
		user.Role, user.Active, user.CreatedAt, nullTime(user.LastAccessAt))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return membership.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*membership.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*membership.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (s *UserStore) findOne(ctx context.Context, query string, arg any) (*membership.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

func (s *UserStore) ListAll(ctx context.Context) ([]*membership.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*membership.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *UserStore) Update(ctx context.Context, user *membership.User) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, email = $3, credential_hash = $4, credential_salt = $5,
		    role = $6, active = $7, last_access_at = $8
		WHERE id = $1
	`, user.ID, user.Name, user.Email, user.CredentialHash, user.CredentialSalt,
		user.Role, user.Active, nullTime(user.LastAccessAt))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return membership.ErrDuplicateEmail
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (s *UserStore) Remove(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query email: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*membership.User, error) {
	var (
		user       membership.User
		lastAccess sql.NullTime
	)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.CredentialHash,
		&user.CredentialSalt, &user.Role, &user.Active, &user.CreatedAt, &lastAccess)
	if err != nil {
		return nil, err
	}
	if lastAccess.Valid {
		user.LastAccessAt = lastAccess.Time
	}
	return &user, nil
}

// nullTime maps the zero time to SQL NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// ItemStore persists catalog items in Postgres.
type ItemStore struct {
	db *sql.DB
}

// NewItemStore creates a Postgres-backed item store.
func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

const itemColumns = "code, title, kind, borrowed, author, page_count, isbn, issue_number, issue_date, publisher, director, duration_minutes, genre, created_at"

func (s *ItemStore) Save(ctx context.Context, item *catalog.Item) error {
	book, periodical, recording := flatten(item)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, item.Code, item.Title, item.Kind, item.Borrowed,
		book.Author, book.PageCount, book.ISBN,
		periodical.IssueNumber, periodical.IssueDate, periodical.Publisher,
		recording.Director, recording.DurationMinutes, recording.Genre,
		item.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return catalog.ErrDuplicateCode
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (s *ItemStore) FindByCode(ctx context.Context, code string) (*catalog.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE code = $1`, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

func (s *ItemStore) ListAll(ctx context.Context) ([]*catalog.Item, error) {
	return s.list(ctx, `SELECT `+itemColumns+` FROM items ORDER BY code`)
}

func (s *ItemStore) ListByKind(ctx context.Context, kind catalog.Kind) ([]*catalog.Item, error) {
	return s.list(ctx, `SELECT `+itemColumns+` FROM items WHERE kind = $1 ORDER BY code`, kind)
}

func (s *ItemStore) ListAvailable(ctx context.Context) ([]*catalog.Item, error) {
	return s.list(ctx, `SELECT `+itemColumns+` FROM items WHERE NOT borrowed ORDER BY code`)
}

func (s *ItemStore) ListBorrowed(ctx context.Context) ([]*catalog.Item, error) {
	return s.list(ctx, `SELECT `+itemColumns+` FROM items WHERE borrowed ORDER BY code`)
}

func (s *ItemStore) list(ctx context.Context, query string, args ...any) ([]*catalog.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []*catalog.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *ItemStore) Remove(ctx context.Context, code string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE code = $1`, code)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	return affected > 0, nil
}

func (s *ItemStore) Update(ctx context.Context, item *catalog.Item) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE items SET title = $2, borrowed = $3 WHERE code = $1`,
		item.Code, item.Title, item.Borrowed)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func (s *ItemStore) SetBorrowed(ctx context.Context, code string, from, to bool) (*catalog.Item, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE items SET borrowed = $3 WHERE code = $1 AND borrowed = $2`,
		code, from, to)
	if err != nil {
		return nil, fmt.Errorf("flip borrowed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("flip borrowed: %w", err)
	}
	if affected == 0 {
		item, err := s.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, nil
		}
		return nil, catalog.ErrWrongState
	}
	return s.FindByCode(ctx, code)
}

// flatten spreads the variant payload into the flat column set, filling
// the other variants' columns with zero values.
func flatten(item *catalog.Item) (catalog.BookDetails, catalog.PeriodicalDetails, catalog.RecordingDetails) {
	var (
		book       catalog.BookDetails
		periodical catalog.PeriodicalDetails
		recording  catalog.RecordingDetails
	)
	if item.Book != nil {
		book = *item.Book
	}
	if item.Periodical != nil {
		periodical = *item.Periodical
	}
	if item.Recording != nil {
		recording = *item.Recording
	}
	return book, periodical, recording
}

func scanItem(row rowScanner) (*catalog.Item, error) {
	var (
		item       catalog.Item
		book       catalog.BookDetails
		periodical catalog.PeriodicalDetails
		recording  catalog.RecordingDetails
	)
	err := row.Scan(&item.Code, &item.Title, &item.Kind, &item.Borrowed,
		&book.Author, &book.PageCount, &book.ISBN,
		&periodical.IssueNumber, &periodical.IssueDate, &periodical.Publisher,
		&recording.Director, &recording.DurationMinutes, &recording.Genre,
		&item.CreatedAt)
	if err != nil {
		return nil, err
	}

	switch item.Kind {
	case catalog.KindBook:
		item.Book = &book
	case catalog.KindPeriodical:
		item.Periodical = &periodical
	case catalog.KindRecording:
		item.Recording = &recording
	}
	return &item, nil
}
