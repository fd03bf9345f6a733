// internal/app/features/errors/errlog.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger pairs logging an internal failure with rendering a friendly
// page, so handlers don't repeat the log-then-render dance.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger on top of the app logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Internal logs err under the given operation name and renders a generic
// error page pointing the user back to backURL.
func (e *ErrorLogger) Internal(w http.ResponseWriter, r *http.Request, op string, err error, backURL string) {
	e.log.Error(op, zap.Error(err))
	RenderForbidden(w, r, "Something went wrong. Please try again.", backURL)
}
