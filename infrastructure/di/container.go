package di

import (
	"numtree-backend/application/commands/bus"
	"numtree-backend/application/ports"
	querybus "numtree-backend/application/queries/bus"
	"numtree-backend/infrastructure/config"
	"numtree-backend/pkg/auth"
	pkgerrors "numtree-backend/pkg/errors"
	"numtree-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Users        ports.UserRepository
	Health       ports.HealthChecker
	Cache        ports.Cache
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	Tokens       *auth.JWTValidator
	RateLimiter  *auth.IPRateLimiter
	Metrics      *observability.Collector
	ErrorHandler *pkgerrors.ErrorHandler
}
