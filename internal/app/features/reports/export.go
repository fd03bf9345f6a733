// internal/app/features/reports/export.go
package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	findingstore "github.com/kaizenlab/gembatrack/internal/app/store/findings"
	userstore "github.com/kaizenlab/gembatrack/internal/app/store/users"
	walkstore "github.com/kaizenlab/gembatrack/internal/app/store/walks"
	"github.com/kaizenlab/gembatrack/internal/app/system/authz"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/kaizenlab/gembatrack/internal/app/system/viewdata"
	"github.com/kaizenlab/gembatrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type reportsData struct {
	viewdata.BaseVM
	Total     int
	Open      int
	Closed    int
	Overdue   int
	StartDate string
	EndDate   string
}

// ServeReports renders the findings report page with aggregate counts and
// the TSV download link. Admins and schedulers see every finding; everyone
// else sees the findings they are responsible for.
func (h *Handler) ServeReports(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "reports page")
	defer cancel()

	start, end := parseDateRange(r)
	rows, err := h.fetchScopedFindings(ctx, role, userID, start, end)
	if err != nil {
		h.ErrLog.Internal(w, r, "fetch findings for report failed", err, "/")
		return
	}

	now := time.Now().UTC()
	data := reportsData{
		BaseVM:    viewdata.NewBaseVM(r, h.DB, "Reports", "/"),
		Total:     len(rows),
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
	}
	for _, f := range rows {
		if f.IsClosed() {
			data.Closed++
			continue
		}
		data.Open++
		if f.IsOverdue(now) {
			data.Overdue++
		}
	}

	templates.Render(w, r, "reports", data)
}

// ServeFindingsTSV streams the scoped findings as a tab-separated file.
// Tab separation keeps free-text descriptions with embedded commas intact
// for the plant's spreadsheet imports.
func (h *Handler) ServeFindingsTSV(w http.ResponseWriter, r *http.Request) {
	role, userName, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "findings TSV export")
	defer cancel()

	start, end := parseDateRange(r)
	rows, err := h.fetchScopedFindings(ctx, role, userID, start, end)
	if err != nil {
		h.ErrLog.Internal(w, r, "fetch findings for export failed", err, "/reports")
		return
	}

	walkDates, err := h.walkDates(ctx, rows)
	if err != nil {
		h.ErrLog.Internal(w, r, "fetch walks for export failed", err, "/reports")
		return
	}
	names, err := h.responsibleNames(ctx, rows)
	if err != nil {
		h.ErrLog.Internal(w, r, "fetch users for export failed", err, "/reports")
		return
	}

	filename := fmt.Sprintf("findings_%s_%s.tsv", start.Format("20060102"), end.Format("20060102"))
	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))

	// UTF-8 BOM for Excel
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		h.Log.Error("TSV write failed (BOM)", zap.Error(err))
		return
	}

	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	cw.UseCRLF = true
	defer cw.Flush()

	if err := cw.Write([]string{"finding_id", "walk_date", "area", "category", "description", "responsible", "due_date", "status", "closed_at", "close_comment"}); err != nil {
		h.Log.Error("TSV write failed (header)", zap.Error(err))
		return
	}

	for _, f := range rows {
		due := ""
		if f.DueDate != nil {
			due = f.DueDate.Format("2006-01-02")
		}
		closedAt := ""
		if f.ClosedAt != nil {
			closedAt = f.ClosedAt.Format(time.RFC3339)
		}
		if err := cw.Write([]string{
			f.ID.Hex(),
			walkDates[f.WalkID],
			sanitizeField(f.Area),
			sanitizeField(f.Category),
			sanitizeField(f.Description),
			sanitizeField(names[f.ResponsibleID]),
			due,
			f.Status,
			closedAt,
			sanitizeField(f.CloseComment),
		}); err != nil {
			h.Log.Error("TSV write failed (row)", zap.Error(err))
			return
		}
	}

	h.Log.Info("findings TSV exported", zap.String("user", userName), zap.Int("rows", len(rows)))
}

// fetchScopedFindings returns findings in the requester's report scope,
// filtered to the created_at range.
func (h *Handler) fetchScopedFindings(ctx context.Context, role string, userID primitive.ObjectID, start, end time.Time) ([]models.Finding, error) {
	store := findingstore.New(h.DB)
	var (
		list []models.Finding
		err  error
	)
	if role == authz.RoleAdmin || role == authz.RoleScheduler {
		list, err = store.ListAll(ctx)
	} else {
		list, err = store.ListByResponsible(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	out := list[:0]
	for _, f := range list {
		if f.CreatedAt.Before(start) || f.CreatedAt.After(end) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (h *Handler) walkDates(ctx context.Context, rows []models.Finding) (map[primitive.ObjectID]string, error) {
	store := walkstore.New(h.DB)
	dates := make(map[primitive.ObjectID]string)
	for _, f := range rows {
		if _, done := dates[f.WalkID]; done {
			continue
		}
		walk, err := store.GetByID(ctx, f.WalkID)
		if err == mongo.ErrNoDocuments {
			dates[f.WalkID] = ""
			continue
		}
		if err != nil {
			return nil, err
		}
		dates[f.WalkID] = walk.Date.Format("2006-01-02")
	}
	return dates, nil
}

func (h *Handler) responsibleNames(ctx context.Context, rows []models.Finding) (map[primitive.ObjectID]string, error) {
	store := userstore.New(h.DB)
	names := make(map[primitive.ObjectID]string)
	for _, f := range rows {
		if _, done := names[f.ResponsibleID]; done {
			continue
		}
		u, err := store.GetByID(ctx, f.ResponsibleID)
		if err == mongo.ErrNoDocuments {
			names[f.ResponsibleID] = "(removed)"
			continue
		}
		if err != nil {
			return nil, err
		}
		names[f.ResponsibleID] = u.FullName
	}
	return names, nil
}

// parseDateRange reads start/end query params, defaulting to the last 90
// days. The end date is extended to the end of its day.
func parseDateRange(r *http.Request) (time.Time, time.Time) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -90)

	if s := r.URL.Query().Get("start"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			start = t
		}
	}
	if e := r.URL.Query().Get("end"); e != "" {
		if t, err := time.Parse("2006-01-02", e); err == nil {
			end = t.Add(24*time.Hour - time.Second)
		}
	}
	return start, end
}

// sanitizeField prevents spreadsheet formula injection.
func sanitizeField(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}
