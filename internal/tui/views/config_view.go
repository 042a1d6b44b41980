package views

import (
	"strings"

	"github.com/rivo/tview"

	"github.com/matheus3301/botadmin/internal/configtree"
	"github.com/matheus3301/botadmin/internal/tui/ui"
)

// ConfigView is a form generated from the configuration snapshot. Saving
// sends the whole document back.
type ConfigView struct {
	*tview.Form
	theme   *ui.Theme
	doc     *configtree.Node
	fields  []FormField
	onSave  func(*configtree.Node)
	onError func(error)
	onStart func()
}

// NewConfigView creates the config editor page.
func NewConfigView(theme *ui.Theme) *ConfigView {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetTitle(" Config ")
	form.SetTitleColor(theme.TitleColor)
	form.SetFieldBackgroundColor(theme.FieldBgColor)
	form.SetLabelColor(theme.MenuKeyColor)

	cv := &ConfigView{Form: form, theme: theme}
	cv.Load(nil)
	return cv
}

// Name implements ui.Page.
func (cv *ConfigView) Name() string { return "config" }

// Start implements ui.Page.
func (cv *ConfigView) Start() {
	if cv.onStart != nil {
		cv.onStart()
	}
}

// Stop implements ui.Page.
func (cv *ConfigView) Stop() {}

// Hints implements ui.Page.
func (cv *ConfigView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Esc", Description: "Leave form"},
	}
}

// SetHandlers sets the save, validation error and page-shown callbacks.
func (cv *ConfigView) SetHandlers(onSave func(*configtree.Node), onError func(error), onStart func()) {
	cv.onSave = onSave
	cv.onError = onError
	cv.onStart = onStart
}

// Load rebuilds the form from doc. A nil doc shows an empty form.
func (cv *ConfigView) Load(doc *configtree.Node) {
	cv.Clear(true)
	cv.doc = doc
	cv.fields = FormFields(doc)

	for _, f := range cv.fields {
		label := f.Label()
		switch {
		case f.Kind == configtree.Bool:
			cv.AddCheckbox(label, f.Checked, nil)
		case f.Secret && f.Kind == configtree.String:
			cv.AddPasswordField(label, f.Text, 48, '*', nil)
		case f.Kind == configtree.Number:
			cv.AddInputField(label, f.Text, 20, acceptNumber, nil)
		default:
			cv.AddInputField(label, f.Text, 48, nil, nil)
		}
	}

	if doc == nil {
		cv.SetTitle(" Config (not loaded) ")
		return
	}
	cv.SetTitle(" Config ")
	cv.AddButton("Save", cv.save)
	cv.AddButton("Revert", func() { cv.Load(cv.doc) })
}

func (cv *ConfigView) save() {
	for i := range cv.fields {
		switch item := cv.GetFormItem(i).(type) {
		case *tview.Checkbox:
			cv.fields[i].Checked = item.IsChecked()
		case *tview.InputField:
			cv.fields[i].Text = item.GetText()
		}
	}
	doc, err := ApplyFields(cv.doc, cv.fields)
	if err != nil {
		if cv.onError != nil {
			cv.onError(err)
		}
		return
	}
	if cv.onSave != nil {
		cv.onSave(doc)
	}
}

func acceptNumber(text string, last rune) bool {
	return strings.ContainsRune("0123456789-+.eE", last)
}
