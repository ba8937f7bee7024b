// internal/membership/seed.go
package membership

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"biblioteca/internal/authz"
)

// Seed creates the demonstration accounts if their emails are not yet
// registered. Existing accounts are left untouched, so seeding is safe
// to run on every startup.
func Seed(ctx context.Context, store UserStore) error {
	demo := []struct {
		name       string
		email      string
		credential string
		role       authz.Role
	}{
		{"Administrador", "admin@biblioteca.com", "admin123", authz.RoleAdmin},
		{"João Silva", "bibliotecario@biblioteca.com", "senha123", authz.RoleLibrarian},
		{"Maria Santos", "usuario@biblioteca.com", "senha123", authz.RoleMember},
	}

	for _, d := range demo {
		exists, err := store.ExistsByEmail(ctx, d.email)
		if err != nil {
			return fmt.Errorf("check seed account %s: %w", d.email, err)
		}
		if exists {
			continue
		}

		hash, salt, err := hashCredential(d.credential)
		if err != nil {
			return fmt.Errorf("hash seed credential: %w", err)
		}

		user := &User{
			ID:             uuid.NewString(),
			Name:           d.name,
			Email:          d.email,
			CredentialHash: hash,
			CredentialSalt: salt,
			Role:           d.role,
			Active:         true,
			CreatedAt:      time.Now(),
		}
		if err := store.Save(ctx, user); err != nil {
			return fmt.Errorf("save seed account %s: %w", d.email, err)
		}
		log.Printf("seeded account: %s (%s)", d.email, d.role)
	}
	return nil
}
