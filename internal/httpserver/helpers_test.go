package httpserver

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/images"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/view"
	"github.com/Skotchmaster/storefront/pkg/db"
)

type app struct {
	e       *echo.Echo
	repo    *repo.GormRepo
	events  *events.Recorder
	uploads string
}

func newApp(t *testing.T, withCSRF bool) *app {
	t.Helper()
	dir := t.TempDir()
	gdb, err := db.Open(context.Background(), "sqlite", filepath.Join(dir, "http.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, repo.Migrate(gdb))

	r := &repo.GormRepo{DB: gdb}
	rec := &events.Recorder{}
	uploads := filepath.Join(dir, "uploads")

	authSvc := &service.AuthService{Repo: r, Secret: []byte("http-secret"), TTL: time.Hour, Events: rec}
	catalogSvc := &service.CatalogService{Repo: r, Images: &images.Store{Dir: uploads}, Index: &search.SQLIndex{Repo: r}, Events: rec}
	cartSvc := &service.CartService{Repo: r, Events: rec}

	renderer, err := view.New()
	require.NoError(t, err)

	e := New(Options{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Renderer:       renderer,
		MaxUploadBytes: 1 << 20,
		CSRF:           withCSRF,
	}, &Deps{
		AuthHandler:    &AuthHTTP{Svc: authSvc},
		CatalogHandler: &CatalogHTTP{Svc: catalogSvc},
		CartHandler:    &CartHTTP{Svc: cartSvc},
		Gate:           &auth.Gate{Resolver: authSvc},
		DB:             gdb,
		UploadDir:      uploads,
	})
	return &app{e: e, repo: r, events: rec, uploads: uploads}
}

// browser keeps cookies between requests like a real client would.
type browser struct {
	t       *testing.T
	app     *app
	cookies map[string]*http.Cookie
}

func (a *app) browser(t *testing.T) *browser {
	return &browser{t: t, app: a, cookies: map[string]*http.Cookie{}}
}

func (b *browser) send(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	req.Header.Set("Origin", "http://example.com")
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	b.app.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	b.t.Helper()
	return b.send(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	if ck, ok := b.cookies["XSRF-TOKEN"]; ok && form.Get("csrf_token") == "" {
		form.Set("csrf_token", ck.Value)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return b.send(req)
}

func (b *browser) postMultipart(path string, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	b.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(b.t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(b.t, err)
		_, err = fw.Write(content)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return b.send(req)
}

// follow performs the redirect in rec and returns the rendered page.
func (b *browser) follow(rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	b.t.Helper()
	require.Equal(b.t, http.StatusFound, rec.Code, rec.Body.String())
	return b.get(rec.Header().Get(echo.HeaderLocation))
}

func (b *browser) signUp(username, password string) {
	b.t.Helper()
	rec := b.post("/register", url.Values{"username": {username}, "password": {password}, "confirm_password": {password}})
	require.Equal(b.t, http.StatusFound, rec.Code, rec.Body.String())
	rec = b.post("/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(b.t, http.StatusFound, rec.Code, rec.Body.String())
	require.Contains(b.t, b.cookies, auth.SessionCookie)
}

func (b *browser) createProduct(name, price string) uint {
	b.t.Helper()
	rec := b.postMultipart("/adicionar_produto", map[string]string{"name": name, "price": price}, "", nil)
	require.Equal(b.t, http.StatusFound, rec.Code, rec.Body.String())
	_, items, err := b.app.repo.SearchProducts(context.Background(), name, 0, 1)
	require.NoError(b.t, err)
	require.NotEmpty(b.t, items)
	return items[0].ID
}
