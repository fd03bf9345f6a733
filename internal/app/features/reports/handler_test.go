package reports_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kaizenlab/gembatrack/internal/app/features/reports"
	"github.com/kaizenlab/gembatrack/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*reports.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	handler := reports.NewHandler(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	return handler, fixtures
}

func TestServeFindingsTSV_AdminSeesAll(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateScheduler(ctx, "Sam Scheduler", "sam@test.com")
	r1 := fixtures.CreateUser(ctx, "Rita Responsible", "rita@test.com", "user")
	r2 := fixtures.CreateUser(ctx, "Raul Responsible", "raul@test.com", "user")
	walk := fixtures.CreateWalk(ctx, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		creator.ID, nil, []string{"Pintura"}, nil)
	fixtures.CreateFinding(ctx, walk.ID, "Pintura", "seguridad", r1.ID)
	fixtures.CreateFinding(ctx, walk.ID, "Pintura", "calidad", r2.ID)

	req := testutil.NewAuthenticatedRequest("GET", "/reports/findings.tsv", testutil.AdminUser())
	rec := httptest.NewRecorder()
	handler.ServeFindingsTSV(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "tab-separated") {
		t.Errorf("Content-Type: got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, ".tsv") {
		t.Errorf("Content-Disposition: got %q", cd)
	}

	body := rec.Body.String()
	// BOM, header line, then one line per finding.
	if !strings.HasPrefix(body, "\xEF\xBB\xBF") {
		t.Errorf("missing UTF-8 BOM")
	}
	lines := strings.Split(strings.TrimRight(body, "\r\n"), "\r\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(strings.TrimPrefix(lines[0], "\xEF\xBB\xBF"), "finding_id\t") {
		t.Errorf("header: got %q", lines[0])
	}
	if !strings.Contains(body, "seguridad\t") || !strings.Contains(body, "calidad\t") {
		t.Errorf("rows missing categories: %q", body)
	}
	if !strings.Contains(body, "2024-06-10") {
		t.Errorf("rows missing walk date: %q", body)
	}
}

func TestServeFindingsTSV_UserScopedToOwn(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateScheduler(ctx, "Sam Scheduler", "sam@test.com")
	mine := fixtures.CreateUser(ctx, "Rita Responsible", "rita@test.com", "user")
	other := fixtures.CreateUser(ctx, "Raul Responsible", "raul@test.com", "user")
	walk := fixtures.CreateWalk(ctx, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		creator.ID, nil, []string{"Pintura"}, nil)
	fixtures.CreateFinding(ctx, walk.ID, "Pintura", "seguridad", mine.ID)
	fixtures.CreateFinding(ctx, walk.ID, "Pintura", "calidad", other.ID)

	req := testutil.NewAuthenticatedRequest("GET", "/reports/findings.tsv",
		testutil.UserWithID(mine.ID, "user"))
	rec := httptest.NewRecorder()
	handler.ServeFindingsTSV(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "seguridad\t") {
		t.Errorf("own finding missing from export")
	}
	if strings.Contains(body, "calidad\t") {
		t.Errorf("someone else's finding leaked into export")
	}
}
