// internal/app/features/findings/handler.go
package findings

import (
	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	"github.com/kaizenlab/gembatrack/internal/app/lifecycle"
	"github.com/kaizenlab/gembatrack/internal/app/notify"
	findingstore "github.com/kaizenlab/gembatrack/internal/app/store/findings"
	notificationstore "github.com/kaizenlab/gembatrack/internal/app/store/notifications"
	walkstore "github.com/kaizenlab/gembatrack/internal/app/store/walks"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the findings feature.
// UploadDir is the local directory where finding attachments are written;
// UploadURL is the URL prefix they are served from.
type Handler struct {
	DB        *mongo.Database
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	UploadDir string
	UploadURL string
}

// NewHandler constructs a findings Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, uploadDir, uploadURL string) *Handler {
	return &Handler{
		DB:        db,
		Log:       logger,
		ErrLog:    uierrors.NewErrorLogger(logger),
		UploadDir: uploadDir,
		UploadURL: uploadURL,
	}
}

// controller wires the lifecycle controller over the Mongo-backed stores.
// Every finding mutation in this feature goes through it.
func (h *Handler) controller() *lifecycle.Controller {
	notifier := notify.New(notificationstore.New(h.DB), h.Log)
	return lifecycle.NewController(walkstore.New(h.DB), findingstore.New(h.DB), notifier, nil)
}
