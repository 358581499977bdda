package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/notegen-backend/internal/http/handlers"
	httpMW "github.com/yungbote/notegen-backend/internal/http/middleware"
	"github.com/yungbote/notegen-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	CORSOrigins []string

	HealthHandler   *httpH.HealthHandler
	TemplateHandler *httpH.TemplateHandler
}

// NewRouter assembles the gin engine. Middleware order matters: CORS must
// answer preflights before tracing, and the trace-context attach has to run
// inside the otelgin span so header fallbacks can read the active trace.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(otelgin.Middleware("notegen"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Template pipeline
		if cfg.TemplateHandler != nil {
			api.POST("/templates/schemas", cfg.TemplateHandler.CompileSchemas)
			api.POST("/templates/conflicts", cfg.TemplateHandler.ListConflicts)
			api.POST("/templates/resolve", cfg.TemplateHandler.ResolveSnapshot)
			api.POST("/templates/compose", cfg.TemplateHandler.ComposeBundle)
			api.POST("/templates/draft", cfg.TemplateHandler.GenerateDraft)
		}
	}

	return r
}
