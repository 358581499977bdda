package app

import (
	"github.com/gin-gonic/gin"

	notegenhttp "github.com/yungbote/notegen-backend/internal/http"
	"github.com/yungbote/notegen-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg *Config, handlers Handlers) *gin.Engine {
	return notegenhttp.NewRouter(notegenhttp.RouterConfig{
		Log:             log,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
		HealthHandler:   handlers.Health,
		TemplateHandler: handlers.Template,
	})
}
