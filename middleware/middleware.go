package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"yatube/auth"
	"yatube/models"
	. "yatube/utils/log"
)

const (
	SessionCookie = "token"
	LoginPath     = "/auth/login/"

	viewerKey = "viewer"
)

type UserLookup interface {
	UserByID(ctx context.Context, id uint) (*models.User, error)
}

// CurrentUser resolves the session token, from the cookie or an
// Authorization header, to a user. Any failure leaves the request anonymous.
func CurrentUser(tokens *auth.Tokens, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, _ := c.Cookie(SessionCookie)
		if tokenString == "" {
			tokenString = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if tokenString == "" {
			c.Next()
			return
		}

		userID, err := tokens.Parse(tokenString)
		if err != nil {
			c.Next()
			return
		}
		user, err := users.UserByID(c.Request.Context(), userID)
		if err != nil {
			Log.WithError(err).WithField("user_id", userID).Debug("session names an unknown user")
			c.Next()
			return
		}

		c.Set(viewerKey, user)
		c.Next()
	}
}

// Viewer returns the signed-in user, or nil for anonymous requests.
func Viewer(c *gin.Context) *models.User {
	v, ok := c.Get(viewerKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// ClearViewer makes the rest of the request anonymous.
func ClearViewer(c *gin.Context) {
	c.Set(viewerKey, (*models.User)(nil))
}

// RequireAuth sends anonymous requests to the login page, remembering where
// they were going.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// protected pages must not be cached by the browser
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")

		if Viewer(c) == nil {
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginURL is the login page with next pointing back at path. Slashes in
// path stay readable.
func LoginURL(path string) string {
	next := url.Values{"next": {path}}.Encode()
	return LoginPath + "?" + strings.ReplaceAll(next, "%2F", "/")
}

// Logger writes one logrus line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		viewer := "anonymous"
		if user := Viewer(c); user != nil {
			viewer = user.Username
		}
		entry := Log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
			"viewer":  viewer,
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request failed")
		case len(c.Errors) > 0:
			entry.Warn(c.Errors.String())
		default:
			entry.Info("request served")
		}
	}
}
