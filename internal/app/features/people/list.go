// internal/app/features/people/list.go
package people

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	userstore "github.com/kaizenlab/gembatrack/internal/app/store/users"
	"github.com/kaizenlab/gembatrack/internal/app/system/gates"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/kaizenlab/gembatrack/internal/app/system/viewdata"
)

type personRowVM struct {
	ID       string
	FullName string
	Email    string
	Role     string
	Status   string
	Disabled bool
}

type peopleListData struct {
	viewdata.BaseVM
	People []personRowVM
}

// ServePeopleList shows every account, sorted by name. Admin only.
func (h *Handler) ServePeopleList(w http.ResponseWriter, r *http.Request) {
	if g := gates.RequireAdmin(w, r, "You do not have access to manage people.", "/"); !g.OK {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "people list")
	defer cancel()

	users, err := userstore.New(h.DB).List(ctx)
	if err != nil {
		h.ErrLog.Internal(w, r, "list users failed", err, "/")
		return
	}

	rows := make([]personRowVM, 0, len(users))
	for _, u := range users {
		rows = append(rows, personRowVM{
			ID:       u.ID.Hex(),
			FullName: u.FullName,
			Email:    u.Email,
			Role:     u.Role,
			Status:   u.Status,
			Disabled: u.Status == "disabled",
		})
	}

	data := peopleListData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "People", "/"),
		People: rows,
	}
	templates.Render(w, r, "person_list", data)
}
