package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/pkg/errors"

	"yatube/middleware"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	baseTemplate = "templates/base.html"
	partials     = "templates/includes/*.html"
)

// renderer parses every page together with the base layout and the shared
// partials, once, at startup.
type renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*renderer)(nil)

func newRenderer(funcs template.FuncMap) (*renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "list templates")
	}

	r := &renderer{pages: map[string]*template.Template{}}
	for _, file := range files {
		if strings.HasPrefix(file, "templates/includes/") {
			continue
		}
		t, err := template.New("").Funcs(funcs).ParseFS(templateFS, baseTemplate, partials, file)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", file)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/"), ".html")
		r.pages[name] = t
	}
	return r, nil
}

func (r *renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		panic("unknown page template " + name)
	}
	return render.HTML{Template: t, Name: "base", Data: data}
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"mediaURL": s.media.URL,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2 January 2006")
		},
		"truncatewords": truncateWords,
		"linebreaksbr": func(text string) template.HTML {
			escaped := template.HTMLEscapeString(text)
			return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
		},
		"pageURL": func(n int) string {
			return "?page=" + strconv.Itoa(n)
		},
	}
}

func truncateWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ") + " …"
}

// html renders page with the viewer and the request path added to data.
func (s *Server) html(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Viewer"] = middleware.Viewer(c)
	data["Path"] = c.Request.URL.Path
	c.HTML(status, page, data)
}

func (s *Server) static(page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.html(c, http.StatusOK, page, nil)
	}
}
