package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"yatube/auth"
	"yatube/forms"
	"yatube/middleware"
	"yatube/models"
	"yatube/store"
	. "yatube/utils/log"
)

const msgBadCredentials = "Please enter a correct username and password. Note that both fields may be case-sensitive."

func (s *Server) signup(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		s.html(c, http.StatusOK, "users/signup", gin.H{"Form": &forms.SignupForm{Errors: forms.Errors{}}})
		return
	}

	form := forms.BindSignupForm(c)
	if !form.Valid() {
		s.html(c, http.StatusOK, "users/signup", gin.H{"Form": form})
		return
	}

	hashed, err := auth.HashPassword(form.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	user := &models.User{
		Username:  form.Username,
		Password:  hashed,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
	}
	err = s.store.CreateUser(c.Request.Context(), user)
	if errors.Is(err, store.ErrUsernameTaken) {
		form.Errors.Add("username", "A user with that username already exists.")
		s.html(c, http.StatusOK, "users/signup", gin.H{"Form": form})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	Log.WithField("username", user.Username).Info("user signed up")
	if err := s.startSession(c, user); err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) login(c *gin.Context) {
	next := c.Query("next")
	if c.Request.Method != http.MethodPost {
		s.html(c, http.StatusOK, "users/login", gin.H{"Form": &forms.LoginForm{Errors: forms.Errors{}}, "Next": next})
		return
	}
	if posted := c.PostForm("next"); posted != "" {
		next = posted
	}

	form := forms.BindLoginForm(c)
	if form.Valid() {
		user, err := s.store.UserByUsername(c.Request.Context(), form.Username)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			s.fail(c, err)
			return
		case auth.CheckPassword(user.Password, form.Password):
			if err := s.startSession(c, user); err != nil {
				s.fail(c, err)
				return
			}
			c.Redirect(http.StatusFound, safeNext(next))
			return
		}
		form.Errors.Add(forms.NonFieldErrors, msgBadCredentials)
	}
	s.html(c, http.StatusOK, "users/login", gin.H{"Form": form, "Next": next})
}

func (s *Server) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", s.secureCookies, true)
	middleware.ClearViewer(c)
	s.html(c, http.StatusOK, "users/logged_out", nil)
}

func (s *Server) startSession(c *gin.Context, user *models.User) error {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(s.tokens.TTL().Seconds()), "/", "", s.secureCookies, true)
	return nil
}

// safeNext keeps redirects after login on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return next
}
