package main

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/robert-malhotra/go-postgrest-client/pkg/client"
	"github.com/robert-malhotra/go-postgrest-client/pkg/config"
)

const (
	connectPageID = "connect"
	queryPageID   = "query"
	builderPageID = "filterBuilder"
	rowsPageID    = "rows"
)

type TUI struct {
	app   *tview.Application
	pages *tview.Pages

	connectForm      *tview.Form
	urlField         *tview.InputField
	profileField     *tview.InputField
	authTypeDropDown *tview.DropDown
	authTokenField   *tview.InputField
	authUserField    *tview.InputField
	authPassField    *tview.InputField
	authHeaderField  *tview.InputField
	authValueField   *tview.InputField

	queryForm    *tview.Form
	entityField  *tview.InputField
	selectField  *tview.InputField
	filtersField *tview.TextArea
	limitField   *tview.InputField
	offsetField  *tview.InputField
	schemaView   *tview.TextView

	builderForm     *tview.Form
	builderField    *tview.InputField
	builderOperator *tview.DropDown
	builderNegate   *tview.Checkbox
	builderShape    *tview.DropDown
	builderValue    *tview.InputField

	rowsList   *tview.List
	rowSummary *tview.TextView
	rowsHelp   *tview.TextView

	profile *config.Config
	client  *client.Client
	models  *client.ModelClient

	// rows holds what the last query returned, either client.Row or
	// *model.Record values, in list order.
	rows   []any
	entity string

	queryMu     sync.Mutex
	queryCancel context.CancelFunc

	baseCtx    context.Context
	baseCancel context.CancelFunc
	stopOnce   sync.Once

	rowView *rowViewer
}

// configureStyles sets the tview global styles for the TUI.
func configureStyles() {
	tview.Styles.PrimitiveBackgroundColor = tcell.ColorBlack
	tview.Styles.ContrastBackgroundColor = tcell.ColorDarkSlateGray
	tview.Styles.MoreContrastBackgroundColor = tcell.ColorGreen
	tview.Styles.BorderColor = tcell.ColorWhite
	tview.Styles.TitleColor = tcell.ColorWhite
	tview.Styles.GraphicsColor = tcell.ColorWhite
	tview.Styles.PrimaryTextColor = tcell.ColorWhite
	tview.Styles.SecondaryTextColor = tcell.ColorYellow
	tview.Styles.TertiaryTextColor = tcell.ColorGreen
	tview.Styles.InverseTextColor = tcell.ColorBlue
	tview.Styles.ContrastSecondaryTextColor = tcell.ColorNavy
}

// NewTUI creates a new TUI instance prefilled with baseURL and profilePath.
// The provided context controls the lifetime of background requests; pass
// nil to use context.Background().
func NewTUI(ctx context.Context, baseURL, profilePath string) *TUI {
	if ctx == nil {
		ctx = context.Background()
	}
	baseCtx, baseCancel := context.WithCancel(ctx)

	configureStyles()

	tui := &TUI{
		app:        tview.NewApplication(),
		pages:      tview.NewPages(),
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
	}

	tui.setupPages()
	tui.urlField.SetText(baseURL)
	tui.profileField.SetText(profilePath)
	tui.rowView = newRowViewer(tui)

	tui.app.SetInputCapture(tui.onInputCapture)
	tui.app.SetFocus(tui.connectForm)

	return tui
}

// Run starts the TUI event loop. It blocks until the application exits
// and returns any error that occurred.
func (t *TUI) Run() error {
	return t.app.SetRoot(t.pages, true).Run()
}

func (t *TUI) Stop() {
	t.stopOnce.Do(func() {
		if t.baseCancel != nil {
			t.baseCancel()
		}
		t.cancelQuery()
		t.app.Stop()
	})
}

func (t *TUI) cancelQuery() {
	t.queryMu.Lock()
	defer t.queryMu.Unlock()
	if t.queryCancel != nil {
		t.queryCancel()
		t.queryCancel = nil
	}
}

// startQuery cancels any running request and returns the context for the
// next one.
func (t *TUI) startQuery() context.Context {
	t.cancelQuery()
	ctx, cancel := context.WithCancel(t.baseCtx)
	t.queryMu.Lock()
	t.queryCancel = cancel
	t.queryMu.Unlock()
	return ctx
}
