// internal/app/features/walks/templates.go
package walks

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "walks",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
