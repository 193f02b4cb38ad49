package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/view"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	Gate           *auth.Gate
	DB             *gorm.DB
	UploadDir      string
}

// Register mounts every route. The gate's Resolve middleware must already be
// installed on e so that public pages also see the identity.
func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := pkgdb.Ping(c.Request().Context(), d.DB); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	e.Static("/static/uploads", d.UploadDir)
	e.StaticFS("/static", view.Static())

	methods := []string{http.MethodGet, http.MethodPost}

	e.GET("/", d.CatalogHandler.Index)
	e.GET("/buscar", d.CatalogHandler.Search)
	e.Match(methods, "/register", d.AuthHandler.Register)
	e.Match(methods, "/login", d.AuthHandler.Login)

	// Guarded per route so unknown paths still 404.
	login := d.Gate.Require(auth.Authenticated)

	e.GET("/logout", d.AuthHandler.Logout, login)
	e.POST("/excluir_conta", d.AuthHandler.DeleteAccount, login)

	e.Match(methods, "/adicionar_produto", d.CatalogHandler.Create, login)
	e.Match(methods, "/editar_produto/:id", d.CatalogHandler.Update, login)
	e.GET("/excluir_produto/:id", d.CatalogHandler.Delete, login)

	e.GET("/add_carrinho/:id", d.CartHandler.Add, login)
	e.GET("/remover_carrinho/:id", d.CartHandler.Remove, login)
	e.GET("/carrinho", d.CartHandler.View, login)
	e.Match(methods, "/checkout", d.CartHandler.Checkout, login)
	e.GET("/pedido_sucesso", d.CartHandler.Success, login)
}
