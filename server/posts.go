package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"yatube/forms"
	"yatube/media"
	"yatube/middleware"
	"yatube/models"
	"yatube/store"
	. "yatube/utils/log"
)

func (s *Server) index(c *gin.Context) {
	listing, err := s.feeds.Global(c.Request.Context(), c.Query("page"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.html(c, http.StatusOK, "posts/index", gin.H{"Listing": listing})
}

func (s *Server) groupPosts(c *gin.Context) {
	listing, err := s.feeds.Group(c.Request.Context(), c.Param("slug"), c.Query("page"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.html(c, http.StatusOK, "posts/group_list", gin.H{"Listing": listing, "Group": listing.Group})
}

func (s *Server) profile(c *gin.Context) {
	listing, err := s.feeds.Profile(c.Request.Context(), middleware.Viewer(c), c.Param("username"), c.Query("page"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.html(c, http.StatusOK, "posts/profile", gin.H{"Listing": listing, "Author": listing.Author})
}

func (s *Server) followIndex(c *gin.Context) {
	listing, err := s.feeds.Following(c.Request.Context(), middleware.Viewer(c), c.Query("page"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.html(c, http.StatusOK, "posts/follow", gin.H{"Listing": listing})
}

func (s *Server) postDetail(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		s.notFound(c)
		return
	}
	detail, err := s.feeds.PostDetail(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.html(c, http.StatusOK, "posts/post_detail", gin.H{
		"Detail":      detail,
		"Post":        detail.Post,
		"CommentForm": &forms.CommentForm{Errors: forms.Errors{}},
	})
}

func (s *Server) postCreate(c *gin.Context) {
	viewer := middleware.Viewer(c)
	groups, err := s.store.Groups(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	if c.Request.Method != http.MethodPost {
		s.html(c, http.StatusOK, "posts/create_post", gin.H{
			"Form":   &forms.PostForm{Errors: forms.Errors{}},
			"Groups": groups,
		})
		return
	}

	form, err := forms.BindPostForm(c, s.store)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !form.Valid() {
		s.html(c, http.StatusOK, "posts/create_post", gin.H{"Form": form, "Groups": groups})
		return
	}

	post := &models.Post{Text: form.Text, AuthorID: viewer.ID, GroupID: form.GroupID}
	if post.Image, err = s.saveImage(c, form); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.store.CreatePost(c.Request.Context(), post); err != nil {
		s.fail(c, err)
		return
	}
	Log.WithField("post_id", post.ID).WithField("author", viewer.Username).Info("post created")
	c.Redirect(http.StatusFound, profileURL(viewer.Username))
}

func (s *Server) postEdit(c *gin.Context) {
	viewer := middleware.Viewer(c)
	id, ok := postID(c)
	if !ok {
		s.notFound(c)
		return
	}
	ctx := c.Request.Context()
	post, err := s.store.PostByID(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	detailURL := postURL(post.ID)
	if post.AuthorID != viewer.ID {
		c.Redirect(http.StatusFound, detailURL)
		return
	}
	groups, err := s.store.Groups(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}

	if c.Request.Method != http.MethodPost {
		s.html(c, http.StatusOK, "posts/create_post", gin.H{
			"Form":   forms.PostFormFor(post),
			"Groups": groups,
			"IsEdit": true,
			"Post":   post,
		})
		return
	}

	form, err := forms.BindPostForm(c, s.store)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !form.Valid() {
		s.html(c, http.StatusOK, "posts/create_post", gin.H{
			"Form":   form,
			"Groups": groups,
			"IsEdit": true,
			"Post":   post,
		})
		return
	}

	oldImage := post.Image
	post.Text = form.Text
	post.GroupID = form.GroupID
	if form.Image != nil {
		if post.Image, err = s.saveImage(c, form); err != nil {
			s.fail(c, err)
			return
		}
	}
	if err := s.store.UpdatePost(ctx, post); err != nil {
		s.fail(c, err)
		return
	}
	if oldImage != "" && oldImage != post.Image {
		if err := s.media.Delete(ctx, oldImage); err != nil {
			Log.WithError(err).WithField("key", oldImage).Warn("could not remove replaced image")
		}
	}
	c.Redirect(http.StatusFound, detailURL)
}

func (s *Server) addComment(c *gin.Context) {
	viewer := middleware.Viewer(c)
	id, ok := postID(c)
	if !ok {
		s.notFound(c)
		return
	}
	ctx := c.Request.Context()
	post, err := s.store.PostByID(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}

	// invalid comments are dropped without feedback
	form := forms.BindCommentForm(c)
	if form.Valid() {
		comment := &models.Comment{PostID: post.ID, AuthorID: viewer.ID, Text: form.Text}
		if err := s.store.CreateComment(ctx, comment); err != nil {
			s.fail(c, err)
			return
		}
	}
	c.Redirect(http.StatusFound, postURL(post.ID))
}

// saveImage stores the uploaded image of form, if any, and returns its key.
func (s *Server) saveImage(c *gin.Context, form *forms.PostForm) (string, error) {
	if form.Image == nil {
		return "", nil
	}
	file, err := form.Image.Open()
	if err != nil {
		return "", errors.Wrap(err, "open upload")
	}
	defer file.Close()

	return s.media.Save(c.Request.Context(), media.PostsPrefix, form.Image.Filename, form.ImageType, file, form.Image.Size)
}

func postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func postURL(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}

var _ forms.GroupLookup = (*store.Store)(nil)
