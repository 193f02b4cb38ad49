package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/flash"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const LoginRequiredMessage = "Por favor, faça login para acessar esta página."

type Resolver interface {
	ResolveSession(ctx context.Context, token string) (Identity, error)
}

// Check is a capability a request must have to reach a handler.
type Check func(ctx context.Context) bool

// Authenticated passes when the request carries a resolved identity.
func Authenticated(ctx context.Context) bool {
	_, ok := FromContext(ctx)
	return ok
}

type Gate struct {
	Resolver     Resolver
	LoginPath    string
	CookieSecure bool
}

// Resolve attaches the session's identity to the request context. Requests
// without a valid session continue anonymously.
func (g *Gate) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ck, err := c.Cookie(SessionCookie)
		if err != nil || ck.Value == "" {
			return next(c)
		}

		req := c.Request()
		ctx := req.Context()
		id, err := g.Resolver.ResolveSession(ctx, ck.Value)
		if err != nil {
			logging.FromContext(ctx).Debug("session_rejected", "error", err)
			c.SetCookie(DeleteCookie(SessionCookie, "/", g.CookieSecure))
			return next(c)
		}

		ctx = IntoContext(ctx, id)
		ctx = logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", id.UserID))
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}

// Require rejects requests failing any check with a flash and a redirect to the login page.
func (g *Gate) Require(checks ...Check) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			for _, check := range checks {
				if !check(ctx) {
					flash.Add(c, flash.Warning, LoginRequiredMessage)
					return c.Redirect(http.StatusFound, g.loginPath())
				}
			}
			return next(c)
		}
	}
}

func (g *Gate) loginPath() string {
	if g.LoginPath == "" {
		return "/login"
	}
	return g.LoginPath
}
