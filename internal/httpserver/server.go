package httpserver

import (
	"log/slog"
	"strconv"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

type Options struct {
	Logger         *slog.Logger
	Renderer       echo.Renderer
	MaxUploadBytes int64
	CSRF           bool
	CookieSecure   bool
}

// New builds the echo instance with the full middleware chain and all routes.
func New(opts Options, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = opts.Renderer
	e.Validator = NewFormValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(loggingmw.Config{Logger: opts.Logger, QuietPrefixes: []string{"/static/", "/health/"}}))
	if opts.MaxUploadBytes > 0 {
		e.Use(echomw.BodyLimit(strconv.FormatInt(opts.MaxUploadBytes, 10)))
	}
	e.Use(echomw.Secure())
	if opts.CSRF {
		cfg := csrf.DefaultConfig()
		cfg.Secure = opts.CookieSecure
		cfg.SkipPaths = append(cfg.SkipPaths, "/health/")
		e.Use(csrf.Middleware(cfg))
	}
	e.Use(d.Gate.Resolve)

	Register(e, d)
	return e
}
