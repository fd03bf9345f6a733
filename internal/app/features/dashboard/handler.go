// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	findingstore "github.com/kaizenlab/gembatrack/internal/app/store/findings"
	notificationstore "github.com/kaizenlab/gembatrack/internal/app/store/notifications"
	walkstore "github.com/kaizenlab/gembatrack/internal/app/store/walks"
	"github.com/kaizenlab/gembatrack/internal/app/system/authz"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/kaizenlab/gembatrack/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: uierrors.NewErrorLogger(logger),
	}
}

type upcomingWalkVM struct {
	ID    string
	Date  string
	Areas []string
}

type openFindingVM struct {
	ID        string
	Category  string
	DueDate   string
	IsOverdue bool
	NeedsDue  bool
}

type dashboardData struct {
	viewdata.BaseVM
	UpcomingWalks  []upcomingWalkVM
	OpenFindings   []openFindingVM
	OpenCount      int64
	PendingActions int64
	UpcomingCount  int64
}

// ServeDashboard shows the signed-in user's upcoming walks, open findings,
// and pending-action count. One dashboard for every role; admins simply see
// their own assignments like anyone else.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "dashboard")
	defer cancel()

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	walks, err := walkstore.New(h.DB).ListAccessibleTo(ctx, userID)
	if err != nil {
		h.ErrLog.Internal(w, r, "dashboard walks failed", err, "/")
		return
	}

	findings := findingstore.New(h.DB)
	open, err := findings.ListByResponsible(ctx, userID)
	if err != nil {
		h.ErrLog.Internal(w, r, "dashboard findings failed", err, "/")
		return
	}
	openCount, err := findings.CountOpenByResponsible(ctx, userID)
	if err != nil {
		h.ErrLog.Internal(w, r, "dashboard open count failed", err, "/")
		return
	}
	pending, err := notificationstore.New(h.DB).PendingActionCount(ctx, userID)
	if err != nil {
		h.ErrLog.Internal(w, r, "dashboard pending count failed", err, "/")
		return
	}

	// ListAccessibleTo returns newest first; walk it backwards so the
	// soonest upcoming walks come out on top.
	var upcoming []upcomingWalkVM
	for i := len(walks) - 1; i >= 0 && len(upcoming) < 5; i-- {
		walk := walks[i]
		if walk.Date.Before(today) {
			continue
		}
		upcoming = append(upcoming, upcomingWalkVM{
			ID:    walk.ID.Hex(),
			Date:  walk.Date.Format("2006-01-02"),
			Areas: walk.Areas,
		})
	}

	var openRows []openFindingVM
	for _, f := range open {
		if f.IsClosed() {
			continue
		}
		row := openFindingVM{
			ID:        f.ID.Hex(),
			Category:  f.Category,
			IsOverdue: f.IsOverdue(now),
			NeedsDue:  f.DueDate == nil,
		}
		if f.DueDate != nil {
			row.DueDate = f.DueDate.Format("2006-01-02")
		}
		openRows = append(openRows, row)
	}

	data := dashboardData{
		BaseVM:         viewdata.NewBaseVM(r, h.DB, "Dashboard", "/"),
		UpcomingWalks:  upcoming,
		OpenFindings:   openRows,
		OpenCount:      openCount,
		PendingActions: pending,
		UpcomingCount:  int64(len(upcoming)),
	}
	templates.Render(w, r, "dashboard", data)
}
