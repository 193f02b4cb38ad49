package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/flash"
	"github.com/Skotchmaster/storefront/internal/view"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

// render fills the request-scoped parts of p and renders the named page.
func render(c echo.Context, status int, name, title string, p view.Page) error {
	p.Title = title
	if id, ok := auth.FromContext(c.Request().Context()); ok {
		p.User = &id
	}
	p.Flashes = flash.Pop(c)
	p.CSRF = csrf.Token(c)
	return c.Render(status, name, p)
}

func redirect(c echo.Context, to string) error {
	return c.Redirect(http.StatusFound, to)
}

func identity(c echo.Context) auth.Identity {
	id, _ := auth.FromContext(c.Request().Context())
	return id
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "invalid id")
	}
	return uint(id), nil
}

type errorPage struct {
	Code    int
	Message string
}

var errorMessages = map[int]string{
	http.StatusBadRequest:            "Requisição inválida.",
	http.StatusForbidden:             "Acesso negado. Recarregue a página e tente novamente.",
	http.StatusNotFound:              "Página não encontrada.",
	http.StatusMethodNotAllowed:      "Método não permitido.",
	http.StatusRequestEntityTooLarge: "O arquivo enviado é muito grande.",
}

// ErrorHandler renders every unhandled error as an HTML error page.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	msg, ok := errorMessages[code]
	if !ok {
		msg = "Ocorreu um erro inesperado. Tente novamente mais tarde."
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if rerr := render(c, code, "error", "Erro", view.Page{Data: errorPage{Code: code, Message: msg}}); rerr != nil {
		logging.FromContext(c.Request().Context()).Error("error_page_failed", "error", rerr)
		_ = c.String(code, msg)
	}
}
