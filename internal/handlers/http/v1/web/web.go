// Package web serves the server-rendered post list and submit form.
package web

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gfdmit/web-forum/blog-service/internal/handlers/http/httperr"
	"github.com/gfdmit/web-forum/blog-service/internal/service"
	"github.com/gfdmit/web-forum/blog-service/internal/view"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

type Handler struct {
	svc    *service.Service
	opts   view.Options
	logger *zap.Logger
}

type page struct {
	Cards   []view.Card
	Error   string
	Name    string
	Content string
}

func New(svc *service.Service, opts view.Options, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, opts: opts, logger: logger}
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}

// Static returns the embedded assets, the default cover image included.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Register mounts the page routes on router. The router must have the
// templates from Templates installed.
func (h *Handler) Register(router gin.IRouter) {
	router.GET("/", h.Index)
	router.POST("/posts", h.Submit)
}

func (h *Handler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, page{})
}

func (h *Handler) Submit(c *gin.Context) {
	form := page{
		Name:    c.PostForm("name"),
		Content: c.PostForm("content"),
	}

	in := service.SubmitInput{Name: form.Name}
	if form.Content != "" {
		content := form.Content
		in.Content = &content
	}

	file, header, err := c.Request.FormFile("coverImage")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		form.Error = "could not read the uploaded file"
		h.render(c, http.StatusBadRequest, form)
		return
	default:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			h.logger.Error("failed to read uploaded file", zap.Error(err))
			form.Error = "could not read the uploaded file"
			h.render(c, http.StatusBadRequest, form)
			return
		}
		in.Image = data
		in.ImageName = header.Filename
	}

	if _, err := h.svc.Submit(c.Request.Context(), in); err != nil {
		status := httperr.Status(err)
		if status == http.StatusInternalServerError {
			c.Error(err)
		}
		form.Error = httperr.Message(err)
		h.render(c, status, form)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// render queries the posts on every call so the list always reflects the
// store.
func (h *Handler) render(c *gin.Context, status int, p page) {
	posts, err := h.svc.GetPosts(c.Request.Context())
	if err != nil {
		c.Error(err)
		if p.Error == "" {
			p.Error = "could not load posts"
		}
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
	}
	p.Cards = slices.Collect(view.Cards(posts, h.opts))
	c.HTML(status, "index.html", p)
}
