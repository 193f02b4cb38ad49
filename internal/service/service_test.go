package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/images"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/pkg/db"
)

type fixture struct {
	repo    *repo.GormRepo
	events  *events.Recorder
	auth    *AuthService
	catalog *CatalogService
	cart    *CartService
	uploads string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	gdb, err := db.Open(context.Background(), "sqlite", filepath.Join(dir, "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, repo.Migrate(gdb))

	r := &repo.GormRepo{DB: gdb}
	rec := &events.Recorder{}
	uploads := filepath.Join(dir, "uploads")
	return &fixture{
		repo:    r,
		events:  rec,
		auth:    &AuthService{Repo: r, Secret: []byte("svc-secret"), TTL: time.Hour, Events: rec},
		catalog: &CatalogService{Repo: r, Images: &images.Store{Dir: uploads}, Index: &search.SQLIndex{Repo: r}, Events: rec},
		cart:    &CartService{Repo: r, Events: rec},
		uploads: uploads,
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), name, "secret1")
	require.NoError(t, err)
	return u
}

func (f *fixture) product(t *testing.T, name, price string) *models.Product {
	t.Helper()
	p, err := f.catalog.Create(context.Background(), ProductInput{Name: name, Price: decimal.RequireFromString(price)})
	require.NoError(t, err)
	return p
}
