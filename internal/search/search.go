package search

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

// Index finds products by free text and keeps itself in sync with catalog mutations.
type Index interface {
	Search(ctx context.Context, q string, from, size int) (int64, []models.Product, error)
	Upsert(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id uint) error
}

// SQLIndex searches the products table directly; it needs no syncing.
type SQLIndex struct {
	Repo *repo.GormRepo
}

func (s *SQLIndex) Search(ctx context.Context, q string, from, size int) (int64, []models.Product, error) {
	return s.Repo.SearchProducts(ctx, q, from, size)
}

func (s *SQLIndex) Upsert(context.Context, models.Product) error { return nil }
func (s *SQLIndex) Delete(context.Context, uint) error          { return nil }
