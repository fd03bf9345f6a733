package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kaizenlab/gembatrack/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func reqWithUser(role string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:   primitive.NewObjectID().Hex(),
		Name: "Test User",
		Role: role,
	})
}

func TestUserCtx_Anonymous(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	role, name, uid, ok := UserCtx(r)
	if ok {
		t.Error("expected ok=false for anonymous request")
	}
	if role != "visitor" || name != "" || uid != primitive.NilObjectID {
		t.Errorf("unexpected visitor context: %q %q %v", role, name, uid)
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: "not-a-hex-id", Role: "admin"})
	if _, _, _, ok := UserCtx(r); ok {
		t.Error("expected ok=false for malformed user ID")
	}
}

func TestUserCtx_NormalizesRole(t *testing.T) {
	role, _, _, ok := UserCtx(reqWithUser("Admin"))
	if !ok {
		t.Fatal("expected ok=true")
	}
	if role != "admin" {
		t.Errorf("role: got %q, want %q", role, "admin")
	}
}

func TestCanScheduleWalks(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{RoleAdmin, true},
		{RoleScheduler, true},
		{RoleUser, false},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := CanScheduleWalks(reqWithUser(tt.role)); got != tt.want {
				t.Errorf("CanScheduleWalks(%s) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}

	if CanScheduleWalks(httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Error("anonymous request should not be able to schedule walks")
	}
}

func TestCanManageUsers(t *testing.T) {
	if !CanManageUsers(reqWithUser(RoleAdmin)) {
		t.Error("admin should manage users")
	}
	if CanManageUsers(reqWithUser(RoleScheduler)) {
		t.Error("scheduler should not manage users")
	}
}
