// seed inserts the default user types and verified demo accounts for local testing.
// Idempotent: rows whose name or email already exist are left untouched.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"storefront-auth/backend/internal/account/domain"
	accountrepo "storefront-auth/backend/internal/account/repository"
	"storefront-auth/backend/internal/config"
	"storefront-auth/backend/internal/db"
	"storefront-auth/backend/internal/security"
	usertypedomain "storefront-auth/backend/internal/usertype/domain"
	usertyperepo "storefront-auth/backend/internal/usertype/repository"
)

// devPassword satisfies the sign-up password policy.
const devPassword = "Password1!"

var devAccounts = []struct {
	name  string
	email string
}{
	{"Dev Shopper", "dev@example.com"},
	{"Second Shopper", "dev2@example.com"},
}

var defaultUserTypes = []string{"Buyer", "Seller"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("seed: DATABASE_URL is required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	now := time.Now().UTC()
	types := usertyperepo.NewPostgresRepository(database)
	for _, name := range defaultUserTypes {
		ut := &usertypedomain.UserType{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
		switch err := types.Insert(ctx, ut); {
		case errors.Is(err, usertyperepo.ErrDuplicateName):
			log.Printf("seed: user type %s already exists, skipping", name)
		case err != nil:
			log.Fatalf("seed: insert user type %s: %v", name, err)
		default:
			log.Printf("seed: created user type %s", name)
		}
	}

	repo := accountrepo.NewPostgresRepository(database)
	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash(devPassword)
	if err != nil {
		log.Fatalf("hash: %v", err)
	}

	for _, a := range devAccounts {
		acct := &domain.Account{
			ID:           uuid.NewString(),
			Email:        domain.NormalizeEmail(a.email),
			Name:         a.name,
			PasswordHash: hash,
			IsVerified:   true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		switch err := repo.Insert(ctx, acct); {
		case errors.Is(err, accountrepo.ErrDuplicateEmail):
			log.Printf("seed: %s already exists, skipping", acct.Email)
		case err != nil:
			log.Fatalf("seed: insert %s: %v", acct.Email, err)
		default:
			log.Printf("seed: created %s (password %s)", acct.Email, devPassword)
		}
	}
}
