package v1

import (
	"net/http"
	"path"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	gql "github.com/gfdmit/web-forum/blog-service/internal/handlers/http/v1/graphql"
	"github.com/gfdmit/web-forum/blog-service/internal/handlers/http/v1/web"
	"github.com/gfdmit/web-forum/blog-service/internal/middleware"
	"github.com/gfdmit/web-forum/blog-service/internal/observability"
	"github.com/gfdmit/web-forum/blog-service/internal/service"
	"github.com/gfdmit/web-forum/blog-service/internal/view"
)

type Deps struct {
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	View         view.Options
	AllowOrigins []string
	// PublicPrefix is the path stored files are served under; it must match
	// the prefix the file store builds public paths with.
	PublicPrefix string
}

func New(svc *service.Service, deps Deps) (*gin.Engine, error) {
	var (
		router = gin.New()
	)

	router.Use(
		middleware.RequestLogger(deps.Logger),
		middleware.Metrics(deps.Metrics),
		gin.CustomRecovery(middleware.HandlePanics(deps.Logger)),
	)

	allowOrigins := deps.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300 * time.Second,
	}))

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	gqlHandler, err := gql.New(svc, deps.Logger)
	if err != nil {
		return nil, err
	}

	uploads := &uploadsHandler{svc: svc}

	web.New(svc, deps.View, deps.Logger).Register(router)
	router.StaticFS("/static", web.Static())
	router.GET(uploadsRoute(deps.PublicPrefix), uploads.GetUpload)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	apiGroup := router.Group("/api/v1")
	{
		apiGroup.Any("/graphql", gin.WrapH(gqlHandler))
		apiGroup.POST("/uploads", uploads.PostUpload)

		apiGroup.GET("/ping", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
	}

	return router, nil
}

func uploadsRoute(prefix string) string {
	if prefix == "" {
		prefix = "/uploads"
	}
	return path.Join("/", prefix, ":name")
}
