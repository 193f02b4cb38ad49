package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/db"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	gdb, err := db.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, Migrate(gdb))
	return &GormRepo{DB: gdb}
}

func seedUser(t *testing.T, r *GormRepo, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, PasswordHash: "x"}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, r *GormRepo, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price)}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func TestUsers(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	taken, err := r.UsernameTaken(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, taken)

	u := seedUser(t, r, "alice")
	assert.NotZero(t, u.ID)

	taken, err = r.UsernameTaken(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, taken)

	assert.Error(t, r.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "y"}))

	got, err := r.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = r.FindUserByUsername(ctx, "nobody")
	assert.True(t, IsNotFound(err))
}

func TestDeleteUser_RemovesCartAndSessions(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, r, "carol")
	p := seedProduct(t, r, "Mug", "5.00")
	_, err := r.AddToCart(ctx, u.ID, p.ID)
	require.NoError(t, err)
	require.NoError(t, r.CreateSession(ctx, &models.Session{JTI: "j1", UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour).Unix()}))

	require.NoError(t, r.DeleteUser(ctx, u.ID))

	items, err := r.FindCartItemsByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	_, err = r.FindSessionByJTI(ctx, "j1")
	assert.True(t, IsNotFound(err))

	assert.True(t, IsNotFound(r.DeleteUser(ctx, u.ID)))
}

func TestSessions(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, r.CreateSession(ctx, &models.Session{JTI: "live", UserID: 1, ExpiresAt: now.Add(time.Hour).Unix()}))
	require.NoError(t, r.CreateSession(ctx, &models.Session{JTI: "old", UserID: 1, ExpiresAt: now.Add(-time.Hour).Unix()}))

	_, ok, err := r.SessionActive(ctx, "live", now)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = r.SessionActive(ctx, "old", now)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = r.SessionActive(ctx, "missing", now)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.RevokeSession(ctx, "live"))
	_, ok, err = r.SessionActive(ctx, "live", now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProducts(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		seedProduct(t, r, "Item", "1.00")
	}
	special := seedProduct(t, r, "Caneca Azul", "10.99")
	special.Description = "100% ceramica"
	require.NoError(t, r.SaveProduct(ctx, special))

	total, page, err := r.ListProducts(ctx, 20, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(26), total)
	assert.Len(t, page, 6)

	got, err := r.GetProduct(ctx, special.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultImage, got.Image)
	assert.True(t, decimal.RequireFromString("10.99").Equal(got.Price))

	n, found, err := r.SearchProducts(ctx, "caneca", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.Len(t, found, 1)
	assert.Equal(t, special.ID, found[0].ID)

	n, _, err = r.SearchProducts(ctx, "100%", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	byIDs, err := r.FindProductsByIDs(ctx, []uint{special.ID, 9999})
	require.NoError(t, err)
	assert.Len(t, byIDs, 1)

	require.NoError(t, r.DeleteProduct(ctx, special.ID))
	assert.True(t, IsNotFound(r.DeleteProduct(ctx, special.ID)))
	_, err = r.GetProduct(ctx, special.ID)
	assert.True(t, IsNotFound(err))
}

func TestAddToCart_Accumulates(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, r, "dave")
	p := seedProduct(t, r, "Pen", "2.50")

	for i := 1; i <= 3; i++ {
		item, err := r.AddToCart(ctx, u.ID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, uint(i), item.Quantity)
	}

	items, err := r.FindCartItemsByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(3), items[0].Quantity)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Pen", items[0].Product.Name)
}

func TestCartItems_PerUserAndOrphans(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	a := seedUser(t, r, "erin")
	b := seedUser(t, r, "frank")
	p1 := seedProduct(t, r, "A", "1.00")
	p2 := seedProduct(t, r, "B", "2.00")

	_, err := r.AddToCart(ctx, a.ID, p1.ID)
	require.NoError(t, err)
	_, err = r.AddToCart(ctx, a.ID, p2.ID)
	require.NoError(t, err)
	_, err = r.AddToCart(ctx, b.ID, p1.ID)
	require.NoError(t, err)

	require.NoError(t, r.DeleteProduct(ctx, p2.ID))
	items, err := r.FindCartItemsByUser(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.NotNil(t, items[0].Product)
	assert.Nil(t, items[1].Product)

	require.NoError(t, r.DeleteCartItem(ctx, a.ID, p1.ID))
	assert.True(t, IsNotFound(r.DeleteCartItem(ctx, a.ID, p1.ID)))

	n, err := r.DeleteCartItemsByUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := r.FindCartItemsByUser(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
