// Package htmlsanitize strips unsafe HTML from user-generated content.
//
// Finding descriptions and close comments are free text typed on the shop
// floor; they are rendered back into pages, so anything beyond basic
// formatting is removed.
package htmlsanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

// policy allows basic formatting (p, strong, em, lists, links) and strips
// scripts, event handlers, and javascript: URLs.
var policy = bluemonday.UGCPolicy()

// Sanitize returns s with unsafe HTML removed.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}
