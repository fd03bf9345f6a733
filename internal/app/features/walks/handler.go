// internal/app/features/walks/handler.go
package walks

import (
	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	"github.com/kaizenlab/gembatrack/internal/app/notify"
	notificationstore "github.com/kaizenlab/gembatrack/internal/app/store/notifications"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the walks feature. It holds
// the Mongo database and logger so the list, create, view, and delete
// handlers share the same core dependencies.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs a walks Handler. It is typically called from the
// bootstrap BuildHandler function, where the application's DB and logger are
// already initialized.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: uierrors.NewErrorLogger(logger),
	}
}

// notifier builds the notification emitter over the notifications store.
func (h *Handler) notifier() *notify.Notifier {
	return notify.New(notificationstore.New(h.DB), h.Log)
}
