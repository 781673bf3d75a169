package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-auth/backend/internal/usertype/domain"
)

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	if err := repo.Insert(ctx, buyer(now)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	dup := &domain.UserType{ID: "ut-2", Name: " BUYER ", CreatedAt: now, UpdatedAt: now}
	if err := repo.Insert(ctx, dup); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Insert(dup) = %v, want ErrDuplicateName", err)
	}
	if err := repo.Insert(ctx, &domain.UserType{ID: "ut-3", Name: "Seller"}); err != nil {
		t.Fatalf("Insert(Seller): %v", err)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Buyer" || got[1].Name != "Seller" {
		t.Fatalf("List = %+v", got)
	}
	got[0].Name = "mutated"
	again, _ := repo.List(ctx)
	if again[0].Name != "Buyer" {
		t.Error("List must return copies")
	}
}

func TestMemoryRepository_CanceledContext(t *testing.T) {
	repo := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := repo.Insert(ctx, buyer(time.Now())); !errors.Is(err, context.Canceled) {
		t.Errorf("Insert = %v, want context.Canceled", err)
	}
	if _, err := repo.List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("List = %v, want context.Canceled", err)
	}
}
