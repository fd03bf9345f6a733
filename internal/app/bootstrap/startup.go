// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/kaizenlab/gembatrack/internal/app/resources"
	"github.com/kaizenlab/gembatrack/internal/app/store/sessions"
	"github.com/kaizenlab/gembatrack/internal/app/system/workers"
	"go.uber.org/zap"
)

// sessionCleanup closes activity sessions abandoned without a logout.
// Started here, stopped in Shutdown.
var sessionCleanup *workers.SessionCleanup

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It is the
// place to load shared resources (like templates), warm caches, or perform
// any app-wide setup that depends on config and backends.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	sessionCleanup = workers.NewSessionCleanup(
		sessions.New(deps.MongoDatabase),
		logger,
		15*time.Minute, // sweep interval
		2*time.Hour,    // inactivity threshold
	)
	sessionCleanup.Start()

	return nil
}
