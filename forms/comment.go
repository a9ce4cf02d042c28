package forms

import (
	"github.com/gin-gonic/gin"
)

type commentInput struct {
	Text string `form:"text" binding:"required"`
}

type CommentForm struct {
	Text   string
	Errors Errors
}

func BindCommentForm(c *gin.Context) *CommentForm {
	var in commentInput
	f := &CommentForm{Errors: FromBindError(c.ShouldBind(&in))}
	f.Text = in.Text
	requireText(f.Errors, "text", f.Text)
	return f
}

func (f *CommentForm) Valid() bool {
	return !f.Errors.Any()
}
