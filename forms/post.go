package forms

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"yatube/models"
	"yatube/store"
)

type GroupLookup interface {
	GroupByID(ctx context.Context, id uint) (*models.Group, error)
}

type postInput struct {
	Text  string `form:"text" binding:"required"`
	Group string `form:"group"`
}

// PostForm is the create/edit form of a post. Text and Group keep what the
// user typed so an invalid form can be shown again as entered.
type PostForm struct {
	Text   string
	Group  string
	Errors Errors

	GroupID   *uint
	Image     *multipart.FileHeader
	ImageType string
}

// PostFormFor prefills the form from an existing post.
func PostFormFor(post *models.Post) *PostForm {
	f := &PostForm{Text: post.Text, Errors: Errors{}, GroupID: post.GroupID}
	if post.GroupID != nil {
		f.Group = strconv.FormatUint(uint64(*post.GroupID), 10)
	}
	return f
}

// BindPostForm reads and validates a submitted post form. The returned
// error is reserved for lookups that failed for reasons other than bad input.
func BindPostForm(c *gin.Context, groups GroupLookup) (*PostForm, error) {
	var in postInput
	f := &PostForm{Errors: FromBindError(c.ShouldBind(&in))}
	f.Text = in.Text
	f.Group = in.Group
	requireText(f.Errors, "text", f.Text)

	if err := f.bindGroup(c.Request.Context(), groups); err != nil {
		return f, err
	}
	if err := f.bindImage(c); err != nil {
		return f, err
	}
	return f, nil
}

func (f *PostForm) Valid() bool {
	return !f.Errors.Any()
}

func (f *PostForm) bindGroup(ctx context.Context, groups GroupLookup) error {
	raw := strings.TrimSpace(f.Group)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		f.Errors.Add("group", msgInvalidGroup)
		return nil
	}
	group, err := groups.GroupByID(ctx, uint(id))
	if errors.Is(err, store.ErrNotFound) {
		f.Errors.Add("group", msgInvalidGroup)
		return nil
	}
	if err != nil {
		return err
	}
	f.GroupID = &group.ID
	return nil
}

func (f *PostForm) bindImage(c *gin.Context) error {
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	if err != nil {
		f.Errors.Add("image", msgInvalidImage)
		return nil
	}
	if header.Size == 0 {
		// an empty file input: nothing uploaded
		return nil
	}

	contentType, err := DetectImage(header)
	if err != nil {
		return err
	}
	if contentType == "" {
		f.Errors.Add("image", msgInvalidImage)
		return nil
	}
	f.Image = header
	f.ImageType = contentType
	return nil
}

// DetectImage sniffs an uploaded file and returns its MIME type, or "" when
// it is not an image.
func DetectImage(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", errors.Wrap(err, "open upload")
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", errors.Wrap(err, "sniff upload")
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", nil
	}
	return mtype.String(), nil
}
