// internal/app/features/notifications/list.go
package notifications

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	notificationstore "github.com/kaizenlab/gembatrack/internal/app/store/notifications"
	"github.com/kaizenlab/gembatrack/internal/app/system/authz"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/kaizenlab/gembatrack/internal/app/system/viewdata"
)

type notificationRowVM struct {
	ID            string
	Title         string
	Message       string
	When          string
	IsRead        bool
	PendingAction bool
	FindingID     string
	WalkID        string
}

type listData struct {
	viewdata.BaseVM
	Notifications []notificationRowVM
	HasUnread     bool
}

// ServeNotifications lists the user's notifications, newest first. Rows
// whose action is still pending keep their badge even after being read.
func (h *Handler) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "notifications list")
	defer cancel()

	list, err := notificationstore.New(h.DB).ListByUser(ctx, userID)
	if err != nil {
		h.ErrLog.Internal(w, r, "list notifications failed", err, "/")
		return
	}

	var hasUnread bool
	rows := make([]notificationRowVM, 0, len(list))
	for _, n := range list {
		if !n.IsRead {
			hasUnread = true
		}
		row := notificationRowVM{
			ID:            n.ID.Hex(),
			Title:         n.Title,
			Message:       n.Message,
			When:          n.CreatedAt.Format("Jan 2, 2006 15:04"),
			IsRead:        n.IsRead,
			PendingAction: n.IsActionRequired && !n.IsActionCompleted,
		}
		if n.RelatedFindingID != nil {
			row.FindingID = n.RelatedFindingID.Hex()
		}
		if n.RelatedWalkID != nil {
			row.WalkID = n.RelatedWalkID.Hex()
		}
		rows = append(rows, row)
	}

	data := listData{
		BaseVM:        viewdata.NewBaseVM(r, h.DB, "Notifications", "/"),
		Notifications: rows,
		HasUnread:     hasUnread,
	}
	templates.Render(w, r, "notification_list", data)
}
