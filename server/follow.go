package server

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"yatube/middleware"
	"yatube/subscription"
)

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

// profileFollow subscribes the viewer to the author and returns to the
// profile. Following yourself or following twice changes nothing.
func (s *Server) profileFollow(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := middleware.Viewer(c)
	author, err := s.store.UserByUsername(ctx, c.Param("username"))
	if err != nil {
		s.fail(c, err)
		return
	}

	if subscription.CanShowFollowControl(viewer, author) {
		following, err := s.subscriptions.IsFollowing(ctx, viewer, author)
		if err != nil {
			s.fail(c, err)
			return
		}
		if !following {
			if err := s.subscriptions.Follow(ctx, viewer, author); err != nil {
				s.fail(c, err)
				return
			}
		}
	}
	c.Redirect(http.StatusFound, profileURL(author.Username))
}

// profileUnfollow is a 404 when the viewer does not follow the author.
func (s *Server) profileUnfollow(c *gin.Context) {
	ctx := c.Request.Context()
	author, err := s.store.UserByUsername(ctx, c.Param("username"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.subscriptions.Unfollow(ctx, middleware.Viewer(c), author); err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(author.Username))
}
