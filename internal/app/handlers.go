package app

import (
	httpH "github.com/yungbote/notegen-backend/internal/http/handlers"
	"github.com/yungbote/notegen-backend/internal/inference/engine"
	"github.com/yungbote/notegen-backend/internal/inference/engine/mock"
	"github.com/yungbote/notegen-backend/internal/modules/notes"
	"github.com/yungbote/notegen-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Template *httpH.TemplateHandler
}

func wireHandlers(log *logger.Logger, uc *notes.Usecases) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Template: httpH.NewTemplateHandler(log, uc),
	}
}

func wireEngine(log *logger.Logger, cfg EngineConfig) engine.Engine {
	switch cfg.Type {
	case "mock":
		log.Info("Using mock generative engine")
		return mock.New()
	default:
		log.Warn("No generative engine configured; draft endpoint disabled")
		return nil
	}
}
