package forms

import (
	"regexp"

	"github.com/gin-gonic/gin"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type SignupForm struct {
	Username  string `form:"username" binding:"required,max=150"`
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Email     string `form:"email" binding:"omitempty,email"`
	Password  string `form:"password1" binding:"required,min=8"`
	Password2 string `form:"password2" binding:"required,eqfield=Password"`

	Errors Errors `form:"-"`
}

func BindSignupForm(c *gin.Context) *SignupForm {
	var f SignupForm
	f.Errors = FromBindError(c.ShouldBind(&f))
	requireText(f.Errors, "username", f.Username)
	if f.Username != "" && !usernamePattern.MatchString(f.Username) && !f.Errors.Has("username") {
		f.Errors.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	return &f
}

func (f *SignupForm) Valid() bool {
	return !f.Errors.Any()
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`

	Errors Errors `form:"-"`
}

func BindLoginForm(c *gin.Context) *LoginForm {
	var f LoginForm
	f.Errors = FromBindError(c.ShouldBind(&f))
	return &f
}

func (f *LoginForm) Valid() bool {
	return !f.Errors.Any()
}
