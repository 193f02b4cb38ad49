package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/flash"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/view"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	if c.Request().Method == http.MethodGet {
		return render(c, http.StatusOK, "register", "Criar Conta", view.Page{})
	}

	var form RegisterForm
	if err := c.Bind(&form); err != nil {
		l.Warn("register_failed", "status", 400, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	values := map[string]string{"username": form.Username}

	if err := c.Validate(&form); err != nil {
		return render(c, http.StatusOK, "register", "Criar Conta", view.Page{Errors: fieldErrors(err, registerMessages), Form: values})
	}

	if _, err := h.Svc.Register(ctx, form.Username, form.Password); err != nil {
		if fields := service.FieldErrors(err); fields != nil {
			return render(c, http.StatusOK, "register", "Criar Conta", view.Page{Errors: fields, Form: values})
		}
		return err
	}

	flash.Add(c, flash.Success, "Conta criada com sucesso! Faça o login.")
	return redirect(c, "/login")
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	if c.Request().Method == http.MethodGet {
		return render(c, http.StatusOK, "login", "Entrar", view.Page{})
	}

	var form LoginForm
	if err := c.Bind(&form); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	values := map[string]string{"username": form.Username}

	if err := c.Validate(&form); err != nil {
		return render(c, http.StatusOK, "login", "Entrar", view.Page{Errors: fieldErrors(err, loginMessages), Form: values})
	}

	res, err := h.Svc.Login(ctx, form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			flash.Add(c, flash.Danger, "Login falhou. Verifique seu nome de usuário e senha.")
			return render(c, http.StatusOK, "login", "Entrar", view.Page{Form: values})
		}
		return err
	}

	c.SetCookie(auth.CreateCookie(auth.SessionCookie, res.Token, "/", res.ExpiresAt, h.CookieSecure))
	if err := csrf.Rotate(c); err != nil {
		return err
	}
	flash.Add(c, flash.Success, "Bem-vindo, "+res.User.Username+"!")
	return redirect(c, "/")
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	id := identity(c)

	if err := h.Svc.Logout(ctx, id.SessionID); err != nil {
		logging.FromContext(ctx).Error("logout_failed", "status", 500, "error", err)
		return err
	}

	c.SetCookie(auth.DeleteCookie(auth.SessionCookie, "/", h.CookieSecure))
	flash.Add(c, flash.Info, "Você saiu da sua conta.")
	return redirect(c, "/login")
}

func (h *AuthHTTP) DeleteAccount(c echo.Context) error {
	ctx := c.Request().Context()
	id := identity(c)

	if err := h.Svc.DeleteAccount(ctx, id.UserID); err != nil && !errors.Is(err, service.ErrNotFound) {
		logging.FromContext(ctx).Error("delete_account_failed", "status", 500, "error", err)
		return err
	}

	c.SetCookie(auth.DeleteCookie(auth.SessionCookie, "/", h.CookieSecure))
	flash.Add(c, flash.Info, "Sua conta foi excluída.")
	return redirect(c, "/")
}
