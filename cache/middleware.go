package cache

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"yatube/monitoring"
	. "yatube/utils/log"
)

// KeyFunc picks the cache key of a request.
type KeyFunc func(c *gin.Context) string

type bodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware serves GET requests from the page cache and stores successful
// responses in it. A broken cache backend only costs the cache: the page is
// rendered as if nothing was cached.
func Middleware(pc *PageCache, keyOf KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		key := keyOf(c)

		entry, ok, err := pc.Get(c.Request.Context(), key)
		if err != nil {
			Log.WithError(err).Warn("page cache read failed")
		}
		if ok {
			monitoring.PageCacheHits.Inc()
			c.Data(entry.Status, entry.ContentType, entry.Body)
			c.Abort()
			return
		}
		monitoring.PageCacheMisses.Inc()

		w := &bodyWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w
		c.Next()

		if w.Status() != http.StatusOK {
			return
		}
		err = pc.Set(c.Request.Context(), key, &Entry{
			Status:      w.Status(),
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		})
		if err != nil {
			Log.WithError(err).Warn("page cache write failed")
		}
	}
}
