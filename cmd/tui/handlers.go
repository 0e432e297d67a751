package main

import (
	"github.com/gdamore/tcell/v2"
)

func (t *TUI) onInputCapture(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlC {
		t.Stop()
		return nil
	}

	currentPage, _ := t.pages.GetFrontPage()

	if currentPage == rowsPageID {
		switch event.Key() {
		case tcell.KeyRune:
			switch event.Rune() {
			case 'j', 'J':
				index := t.rowsList.GetCurrentItem()
				if index >= 0 && index < len(t.rows) {
					t.rowView.open(t.entity, t.schemaFor(t.entity), t.rows, index)
				}
				return nil
			case 'a', 'A':
				t.rowView.open(t.entity, t.schemaFor(t.entity), t.rows, -1)
				return nil
			}
		case tcell.KeyTab, tcell.KeyBacktab:
			if t.app.GetFocus() == t.rowsList {
				t.app.SetFocus(t.rowSummary)
			} else {
				t.app.SetFocus(t.rowsList)
			}
			return nil
		}
	}

	if event.Key() == tcell.KeyEscape {
		switch currentPage {
		case rowViewPageID, builderPageID:
			// Both pages handle Escape themselves.
			return event
		case rowsPageID:
			t.cancelQuery()
			t.pages.SwitchToPage(queryPageID)
			t.app.SetFocus(t.queryForm)
			return nil
		case queryPageID:
			t.pages.SwitchToPage(connectPageID)
			t.app.SetFocus(t.connectForm)
			return nil
		}
	}

	return event
}
