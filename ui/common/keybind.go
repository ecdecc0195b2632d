package common

import (
	"strings"

	"charm.land/bubbles/v2/key"

	"github.com/miosa/osa-view/style"
)

// KeyHelp renders bindings for the status bar as "key desc" pairs.
// Disabled bindings are omitted.
func KeyHelp(bindings ...key.Binding) string {
	var parts []string
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, style.StatusKey.Render(h.Key)+style.StatusBar.Render(" "+h.Desc))
	}
	return strings.Join(parts, style.StatusBar.Render("  "))
}
