package server

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"yatube/store"
	. "yatube/utils/log"
)

func (s *Server) notFound(c *gin.Context) {
	s.html(c, http.StatusNotFound, "core/404", nil)
}

func (s *Server) serverError(c *gin.Context, err error) {
	Log.WithError(err).WithField("path", c.Request.URL.Path).Errorf("request failed\n%s", debug.Stack())
	s.html(c, http.StatusInternalServerError, "core/500", nil)
}

// fail answers a failed lookup or write: missing records are a 404,
// anything else a 500.
func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.notFound(c)
	} else {
		s.serverError(c, err)
	}
	c.Abort()
}

func (s *Server) recovered(c *gin.Context, recovered any) {
	s.serverError(c, errors.Errorf("panic: %v", recovered))
	c.Abort()
}
