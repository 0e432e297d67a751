package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/robert-malhotra/go-postgrest-client/cmd/tui/formatting"
	"github.com/robert-malhotra/go-postgrest-client/pkg/client"
	"github.com/robert-malhotra/go-postgrest-client/pkg/config"
	"github.com/robert-malhotra/go-postgrest-client/pkg/filter"
)

const requestTimeout = 30 * time.Second

func (t *TUI) setupPages() {
	t.setupConnectPage()
	t.setupQueryPage()
	t.setupFilterBuilderPage()
	t.setupRowsPage()
}

func (t *TUI) setupConnectPage() {
	t.urlField = tview.NewInputField().SetLabel("Base URL").SetFieldWidth(60)
	t.profileField = tview.NewInputField().SetLabel("Profile (YAML, optional)").SetFieldWidth(60)

	options := make([]string, len(authModes))
	for i, m := range authModes {
		options[i] = string(m)
	}
	t.authTypeDropDown = tview.NewDropDown().SetLabel("Authentication").SetOptions(options, nil)
	t.authTypeDropDown.SetCurrentOption(0)

	t.authTokenField = tview.NewInputField().SetLabel("Bearer token").SetFieldWidth(60).SetMaskCharacter('*')
	t.authUserField = tview.NewInputField().SetLabel("Username").SetFieldWidth(30)
	t.authPassField = tview.NewInputField().SetLabel("Password").SetFieldWidth(30).SetMaskCharacter('*')
	t.authHeaderField = tview.NewInputField().SetLabel("Header name").SetFieldWidth(30)
	t.authValueField = tview.NewInputField().SetLabel("Header value").SetFieldWidth(60)

	t.connectForm = tview.NewForm().
		AddFormItem(t.urlField).
		AddFormItem(t.profileField).
		AddFormItem(t.authTypeDropDown).
		AddFormItem(t.authTokenField).
		AddFormItem(t.authUserField).
		AddFormItem(t.authPassField).
		AddFormItem(t.authHeaderField).
		AddFormItem(t.authValueField)
	t.connectForm.AddButton("Connect", t.connect)
	t.connectForm.SetBorder(true).SetTitle("Connect to PostgREST")

	help := formatting.HelpBar("Tab", "next field", "Enter", "activate button")
	page := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.connectForm, 0, 1, true).
		AddItem(help, 3, 0, false)

	t.pages.AddPage(connectPageID, page, true, true)
}

func (t *TUI) setupQueryPage() {
	t.entityField = tview.NewInputField().SetLabel("Entity").SetFieldWidth(40)
	t.entityField.SetAutocompleteFunc(t.completeEntity)
	t.entityField.SetChangedFunc(func(string) { t.updateSchemaView() })
	t.selectField = tview.NewInputField().SetLabel("Columns (comma-separated)").SetFieldWidth(40)
	t.filtersField = tview.NewTextArea().SetLabel("Filters (one per line)").SetSize(6, 60)
	t.filtersField.SetPlaceholder("age=gte.18\nname=not.in.(a,b)")
	t.limitField = tview.NewInputField().SetLabel("Limit").SetFieldWidth(10).SetAcceptanceFunc(tview.InputFieldInteger)
	t.offsetField = tview.NewInputField().SetLabel("Offset").SetFieldWidth(10).SetAcceptanceFunc(tview.InputFieldInteger)

	t.queryForm = tview.NewForm().
		AddFormItem(t.entityField).
		AddFormItem(t.selectField).
		AddFormItem(t.filtersField).
		AddFormItem(t.limitField).
		AddFormItem(t.offsetField)
	t.queryForm.AddButton("Run", t.runQuery)
	t.queryForm.AddButton("Add filter", t.openFilterBuilder)
	t.queryForm.AddButton("Show URL", t.showQueryURL)
	t.queryForm.AddButton("Back", func() {
		t.pages.SwitchToPage(connectPageID)
		t.app.SetFocus(t.connectForm)
	})
	t.queryForm.SetBorder(true).SetTitle("Query")

	t.schemaView = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true).SetScrollable(true)
	t.schemaView.SetBorder(true).SetTitle("Schema")

	content := tview.NewFlex().
		AddItem(t.queryForm, 0, 2, true).
		AddItem(t.schemaView, 0, 1, false)

	help := formatting.HelpBar("Tab", "next field", "Enter", "activate button", "Esc", "back")
	page := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(content, 0, 1, true).
		AddItem(help, 3, 0, false)

	t.pages.AddPage(queryPageID, page, true, false)
}

func (t *TUI) setupFilterBuilderPage() {
	ops := filter.Operators()
	labels := make([]string, len(ops))
	for i, op := range ops {
		labels[i] = string(op)
	}

	t.builderField = tview.NewInputField().SetLabel("Field").SetFieldWidth(30)
	t.builderOperator = tview.NewDropDown().SetLabel("Operator").SetOptions(labels, nil)
	t.builderOperator.SetCurrentOption(0)
	t.builderNegate = tview.NewCheckbox().SetLabel("Negate")
	t.builderValue = tview.NewInputField().SetLabel("Value").SetFieldWidth(40).
		SetPlaceholder(shapeValue.placeholder())

	shapes := make([]string, len(operandShapes))
	for i, shape := range operandShapes {
		shapes[i] = string(shape)
	}
	t.builderShape = tview.NewDropDown().SetLabel("Operand").SetOptions(shapes, func(_ string, index int) {
		if index >= 0 {
			t.builderValue.SetPlaceholder(operandShapes[index].placeholder())
		}
	})
	t.builderShape.SetCurrentOption(0)

	t.builderForm = tview.NewForm().
		AddFormItem(t.builderField).
		AddFormItem(t.builderOperator).
		AddFormItem(t.builderNegate).
		AddFormItem(t.builderShape).
		AddFormItem(t.builderValue)
	t.builderForm.AddButton("Add", t.addBuiltFilter)
	t.builderForm.AddButton("Cancel", t.closeFilterBuilder)
	t.builderForm.SetCancelFunc(t.closeFilterBuilder)
	t.builderForm.SetBorder(true).SetTitle("Filter Builder")

	help := formatting.HelpBar("Tab", "next field", "Enter", "activate button", "Esc", "cancel")
	page := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.builderForm, 0, 1, true).
		AddItem(help, 3, 0, false)

	t.pages.AddPage(builderPageID, page, true, false)
}

func (t *TUI) setupRowsPage() {
	t.rowsList = tview.NewList()
	t.rowsList.SetBorder(true).SetTitle("Rows")
	t.rowsList.ShowSecondaryText(false)
	t.rowsList.SetWrapAround(false)

	t.rowSummary = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true).SetScrollable(true)
	t.rowSummary.SetBorder(true).SetTitle("Row")

	content := tview.NewFlex().
		AddItem(t.rowsList, 0, 1, true).
		AddItem(t.rowSummary, 0, 2, false)

	t.rowsHelp = formatting.HelpBar("↑/↓", "select", "j", "row JSON", "a", "all rows", "Tab", "toggle focus", "Esc", "back")
	page := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(content, 0, 1, true).
		AddItem(t.rowsHelp, 3, 0, false)

	t.rowsList.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		if index >= 0 && index < len(t.rows) {
			t.rowSummary.SetText(formatting.FormatRowSummary(formatting.RowMap(t.rows[index])))
			t.rowSummary.ScrollToBeginning()
		} else {
			t.rowSummary.Clear()
		}
	})

	t.pages.AddPage(rowsPageID, page, true, false)
}

func (t *TUI) authFromForm() authConfig {
	_, mode := t.authTypeDropDown.GetCurrentOption()
	return authConfig{
		mode:        authMode(mode),
		token:       t.authTokenField.GetText(),
		username:    t.authUserField.GetText(),
		password:    t.authPassField.GetText(),
		headerName:  t.authHeaderField.GetText(),
		headerValue: t.authValueField.GetText(),
	}
}

// connect builds the clients from the connect form. A profile is loaded
// first; the URL field and credentials override it.
func (t *TUI) connect() {
	profile := &config.Config{}
	if path := strings.TrimSpace(t.profileField.GetText()); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			t.showError(err.Error())
			return
		}
		profile = loaded
	}
	if u := strings.TrimSpace(t.urlField.GetText()); u != "" {
		profile.URL = u
	}

	opts, err := t.authFromForm().apply(profile)
	if err != nil {
		t.showError(err.Error())
		return
	}

	cli, err := profile.NewClient(opts...)
	if err != nil {
		t.showError(err.Error())
		return
	}
	reg, err := profile.Registry()
	if err != nil {
		t.showError(err.Error())
		return
	}
	models, err := client.NewModelClient(cli, reg, profile.ModelOptions()...)
	if err != nil {
		t.showError(err.Error())
		return
	}

	t.profile, t.client, t.models = profile, cli, models
	t.queryForm.SetTitle(fmt.Sprintf("Query – %s", cli.BaseURL()))
	t.updateSchemaView()
	t.pages.SwitchToPage(queryPageID)
	t.app.SetFocus(t.queryForm)
}

func (t *TUI) completeEntity(current string) []string {
	if t.models == nil || current == "" {
		return nil
	}
	var matches []string
	for _, name := range t.models.Registry().EntityTypes() {
		if strings.HasPrefix(name, current) {
			matches = append(matches, name)
		}
	}
	return matches
}

func (t *TUI) updateSchemaView() {
	if t.schemaView == nil || t.models == nil {
		return
	}
	name := strings.TrimSpace(t.entityField.GetText())
	schema, err := t.models.Registry().Lookup(name)
	if err != nil {
		t.schemaView.SetText(formatting.FormatEntityList(t.models.Registry().EntityTypes()))
		return
	}
	t.schemaView.SetText(formatting.FormatSchema(schema))
}

func (t *TUI) queryInput() queryInput {
	return queryInput{
		entity:  t.entityField.GetText(),
		columns: t.selectField.GetText(),
		filters: t.filtersField.GetText(),
		limit:   t.limitField.GetText(),
		offset:  t.offsetField.GetText(),
	}
}

func (t *TUI) showQueryURL() {
	if t.client == nil {
		t.showError("Connect before building a query.")
		return
	}
	in := t.queryInput()
	p, err := in.params()
	if err != nil {
		t.showError(err.Error())
		return
	}
	u, err := t.client.TargetURL(strings.TrimSpace(in.entity), p)
	if err != nil {
		t.showError(err.Error())
		return
	}
	t.showInfo(u.String())
}

func (t *TUI) runQuery() {
	if t.client == nil {
		t.showError("Connect before running a query.")
		return
	}
	in := t.queryInput()
	p, err := in.params()
	if err != nil {
		t.showError(err.Error())
		return
	}
	entity := strings.TrimSpace(in.entity)

	t.rowsList.Clear()
	t.rowSummary.Clear()
	t.rowsList.AddItem("Loading rows…", "", 0, nil)
	t.rowsList.SetTitle(fmt.Sprintf("Rows – %s (loading...)", entity))
	t.pages.SwitchToPage(rowsPageID)
	t.app.SetFocus(t.rowsList)

	ctx := t.startQuery()
	go func() {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		rows, err := t.fetchRows(ctx, entity, p)
		if ctx.Err() == context.Canceled {
			return
		}
		if err != nil {
			t.showError(err.Error())
			t.app.QueueUpdateDraw(func() {
				t.rowsList.Clear()
				t.rowsList.SetTitle(fmt.Sprintf("Rows – %s", entity))
			})
			return
		}

		t.app.QueueUpdateDraw(func() {
			t.entity, t.rows = entity, rows
			t.rowsList.Clear()
			for i, row := range rows {
				t.rowsList.AddItem(formatting.RowTitle(formatting.RowMap(row), i), "", 0, nil)
			}
			t.rowsList.SetTitle(fmt.Sprintf("Rows – %s (%d)", entity, len(rows)))
			if len(rows) == 0 {
				t.rowSummary.SetText("[gray]No rows matched.[white]")
			}
		})
	}()
}

// fetchRows decodes through the declared schema when there is one.
func (t *TUI) fetchRows(ctx context.Context, entity string, p *client.SelectParams) ([]any, error) {
	if _, err := t.models.Registry().Lookup(entity); err == nil {
		recs, err := t.models.Select(ctx, entity, p)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(recs))
		for i, rec := range recs {
			out[i] = rec
		}
		return out, nil
	}

	rows, err := t.client.Select(ctx, entity, p)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = row
	}
	return out, nil
}

func (t *TUI) openFilterBuilder() {
	t.builderField.SetText("")
	t.builderValue.SetText("")
	t.builderNegate.SetChecked(false)
	t.builderShape.SetCurrentOption(0)
	t.pages.SwitchToPage(builderPageID)
	t.app.SetFocus(t.builderForm)
}

func (t *TUI) closeFilterBuilder() {
	t.pages.SwitchToPage(queryPageID)
	t.app.SetFocus(t.queryForm)
}

func (t *TUI) addBuiltFilter() {
	_, op := t.builderOperator.GetCurrentOption()
	shape := shapeValue
	if i, _ := t.builderShape.GetCurrentOption(); i >= 0 {
		shape = operandShapes[i]
	}
	term, err := builderTerm(t.builderField.GetText(), filter.Operator(op), t.builderNegate.IsChecked(), shape, t.builderValue.GetText())
	if err != nil {
		t.showError(err.Error())
		return
	}

	existing := strings.TrimRight(t.filtersField.GetText(), "\n")
	if existing != "" {
		existing += "\n"
	}
	t.filtersField.SetText(existing+term, true)
	t.closeFilterBuilder()
}

func (t *TUI) showInfo(message string) {
	t.app.QueueUpdateDraw(func() {
		modal := tview.NewModal().
			SetText(message).
			AddButtons([]string{"OK"}).
			SetDoneFunc(func(buttonIndex int, buttonLabel string) {
				t.pages.HidePage("info")
			})
		t.pages.RemovePage("info")
		t.pages.AddPage("info", modal, false, true)
		t.pages.ShowPage("info")
	})
}

func (t *TUI) showError(message string) {
	t.app.QueueUpdateDraw(func() {
		modal := tview.NewModal().
			SetText(message).
			AddButtons([]string{"OK"}).
			SetDoneFunc(func(buttonIndex int, buttonLabel string) {
				t.pages.HidePage("error")
			})
		t.pages.RemovePage("error")
		t.pages.AddPage("error", modal, false, true)
		t.pages.ShowPage("error")
	})
}
