package formatting

import (
	"strings"

	"github.com/rivo/tview"
)

// HelpBar renders key/description pairs, e.g. HelpBar("Esc", "back"), as a
// bordered one-line controls bar. Ctrl+C is always listed last.
func HelpBar(pairs ...string) *tview.TextView {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString("[yellow]" + pairs[i] + "[white] " + pairs[i+1] + "  ")
	}
	b.WriteString("[yellow]Ctrl+C[white] quit")

	view := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetTextAlign(tview.AlignCenter).
		SetText(b.String())
	view.SetBorder(true).SetTitle("Controls")
	return view
}
