package web

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// Cookie names holding the reader context.
const (
	workCookie  = "work"
	themeCookie = "theme"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

const cookieMaxAge = 365 * 24 * time.Hour

// Context is the reader state shared by every page: the work being read and
// the colour theme. It is derived from cookies once per request and never
// mutated; use the With methods to derive a changed copy.
type Context struct {
	CurrentWorkID int
	Theme         string
}

// Dark reports whether the dark theme is active.
func (c Context) Dark() bool { return c.Theme == ThemeDark }

// WithWork returns a copy of c reading workID.
func (c Context) WithWork(workID int) Context {
	c.CurrentWorkID = workID
	return c
}

// Toggled returns a copy of c with the other theme.
func (c Context) Toggled() Context {
	if c.Dark() {
		c.Theme = ThemeLight
	} else {
		c.Theme = ThemeDark
	}
	return c
}

type ctxKey struct{}

// FromContext returns the reader context of a request, or the zero-work
// light-theme context outside ReaderContext.
func FromContext(ctx context.Context) Context {
	if c, ok := ctx.Value(ctxKey{}).(Context); ok {
		return c
	}
	return Context{Theme: ThemeLight}
}

// ReaderContext derives the reader Context from request cookies and stores it
// in the request context.
func ReaderContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := Context{Theme: ThemeLight}
		if ck, err := r.Cookie(workCookie); err == nil {
			if id, err := strconv.Atoi(ck.Value); err == nil && id > 0 {
				c.CurrentWorkID = id
			}
		}
		if ck, err := r.Cookie(themeCookie); err == nil && ck.Value == ThemeDark {
			c.Theme = ThemeDark
		}
		next.ServeHTTP(w, r.WithContext(withReaderContext(r.Context(), c)))
	})
}

func withReaderContext(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func setCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
