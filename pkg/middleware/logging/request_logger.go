package loggingmw

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

// Config for RequestLogger. Successful requests whose path starts with a
// QuietPrefixes entry are logged at debug.
type Config struct {
	Logger        *slog.Logger
	QuietPrefixes []string
}

// RequestLogger puts a request-scoped logger into the request context, renders
// handler errors through the echo error handler and logs one line per request.
func RequestLogger(cfg Config) echo.MiddlewareFunc {
	base := cfg.Logger
	if base == nil {
		base = slog.Default()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()

			rid := res.Header().Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = req.Header.Get(echo.HeaderXRequestID)
			}
			if rid != "" {
				res.Header().Set(echo.HeaderXRequestID, rid)
			}

			l := base.With("request_id", rid, "method", req.Method, "path", req.URL.Path)
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}

			status := res.Status
			attrs := []slog.Attr{
				slog.Int("status", status),
				slog.String("route", c.Path()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.Int64("bytes", res.Size),
				slog.String("remote_ip", c.RealIP()),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}

			// The handler may have swapped in a logger carrying the user.
			logging.FromContext(c.Request().Context()).LogAttrs(context.Background(), levelFor(status, quiet(cfg.QuietPrefixes, req.URL.Path)), "request completed", attrs...)
			return nil
		}
	}
}

func levelFor(status int, quiet bool) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case quiet:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func quiet(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
