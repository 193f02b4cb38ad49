package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	CookieName = "flash"
	ctxKey     = "flash.pending"
)

const (
	Success = "success"
	Info    = "info"
	Warning = "warning"
	Danger  = "danger"
)

type Message struct {
	Category string `json:"c"`
	Text     string `json:"t"`
}

// Add queues a message for the next rendered page, which may be in this
// response or after a redirect.
func Add(c echo.Context, category, text string) {
	msgs := append(pending(c), Message{Category: category, Text: text})
	c.Set(ctxKey, msgs)

	raw, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns and clears the queued messages.
func Pop(c echo.Context) []Message {
	msgs := pending(c)
	c.Set(ctxKey, []Message{})
	if len(msgs) > 0 || hasCookie(c) {
		c.SetCookie(&http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return msgs
}

func pending(c echo.Context) []Message {
	if v, ok := c.Get(ctxKey).([]Message); ok {
		return v
	}
	ck, err := c.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil
	}
	return msgs
}

func hasCookie(c echo.Context) bool {
	ck, err := c.Cookie(CookieName)
	return err == nil && ck.Value != ""
}
