package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/robert-malhotra/go-postgrest-client/cmd/tui/formatting"
	"github.com/robert-malhotra/go-postgrest-client/pkg/model"
)

const rowViewPageID = "rowView"

// rowViewer shows the JSON of one row of the current result, or of the whole
// result, under a header naming the entity and its declared fields. It is
// only touched from the event loop.
type rowViewer struct {
	tui    *TUI
	header *tview.TextView
	body   *tview.TextView

	entity string
	schema *model.Schema
	rows   []any
	// index is the row on display; -1 shows every row.
	index int
	doc   []byte
}

func newRowViewer(t *TUI) *rowViewer {
	v := &rowViewer{tui: t, index: -1}

	v.header = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true)
	v.header.SetBorder(true).SetTitle("Entity")

	v.body = tview.NewTextView().
		SetDynamicColors(false).
		SetScrollable(true).
		SetWordWrap(false)
	v.body.SetBorder(true)
	v.body.SetInputCapture(v.handleInput)

	help := formatting.HelpBar("n/p", "next/previous row", "a", "row/all rows", "s", "save", "Esc", "back")
	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.header, 4, 0, false).
		AddItem(v.body, 0, 1, true).
		AddItem(help, 3, 0, false)

	t.pages.AddPage(rowViewPageID, layout, true, false)
	return v
}

// open shows row index of rows (or all rows for a negative index).
func (v *rowViewer) open(entity string, schema *model.Schema, rows []any, index int) {
	if len(rows) == 0 {
		return
	}
	v.entity, v.schema, v.rows = entity, schema, rows
	if !v.render(index) {
		return
	}
	v.tui.pages.SwitchToPage(rowViewPageID)
	v.tui.app.SetFocus(v.body)
}

// render switches the view to index, keeping the previous view on error.
func (v *rowViewer) render(index int) bool {
	doc, err := formatting.RowDocument(v.rows, index)
	if err != nil {
		v.tui.showError(fmt.Sprintf("Failed to render row: %v", err))
		return false
	}
	v.index, v.doc = index, doc

	v.header.SetText(formatting.RowHeader(v.entity, v.schema, index, len(v.rows)))
	if index < 0 {
		v.body.SetTitle(fmt.Sprintf("%s (%d rows)", v.entity, len(v.rows)))
	} else {
		v.body.SetTitle(fmt.Sprintf("%s row %d", v.entity, index+1))
		v.tui.rowsList.SetCurrentItem(index)
	}
	v.body.SetText(string(doc))
	v.body.ScrollToBeginning()
	return true
}

// step moves to the neighbouring row; it does nothing past either end or
// while all rows are shown.
func (v *rowViewer) step(delta int) {
	next := v.index + delta
	if v.index < 0 || next < 0 || next >= len(v.rows) {
		return
	}
	v.render(next)
}

func (v *rowViewer) close() {
	v.doc = nil
	v.tui.pages.SwitchToPage(rowsPageID)
	v.tui.app.SetFocus(v.tui.rowsList)
}

func (v *rowViewer) save(entity string, index int, doc []byte) {
	filename := formatting.SnapshotFilename(entity, index, time.Now())
	if err := os.WriteFile(filename, doc, 0o644); err != nil {
		v.tui.showError(fmt.Sprintf("Failed to save JSON: %v", err))
		return
	}
	v.tui.showInfo(fmt.Sprintf("Saved %s", filename))
}

func (v *rowViewer) handleInput(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		v.close()
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'n', 'N':
			v.step(1)
			return nil
		case 'p', 'P':
			v.step(-1)
			return nil
		case 'a', 'A':
			if v.index < 0 {
				v.render(max(v.tui.rowsList.GetCurrentItem(), 0))
			} else {
				v.render(-1)
			}
			return nil
		case 's', 'S':
			// showInfo queues a draw, which must not block the event loop.
			go v.save(v.entity, v.index, append([]byte(nil), v.doc...))
			return nil
		}
	}
	return event
}

// schemaFor returns the declared schema of entity, or nil when the profile
// does not declare it.
func (t *TUI) schemaFor(entity string) *model.Schema {
	if t.models == nil {
		return nil
	}
	schema, err := t.models.Registry().Lookup(entity)
	if err != nil {
		return nil
	}
	return schema
}
