package appcontext

import (
	"github.com/SeakMengs/AutoTermo/internal/config"
	"github.com/SeakMengs/AutoTermo/internal/repository"
	"github.com/SeakMengs/AutoTermo/internal/service"
	"go.uber.org/zap"
)

// Application is what the http controllers are handed. Everything else is
// wired into the service in cmd/api.
type Application struct {
	Config *config.Config
	Logger *zap.SugaredLogger

	// Repository serves the read-only user mirror and the health check.
	Repository *repository.Repository

	// Termos generates, signs and serves commitment terms.
	Termos service.Termos
}
