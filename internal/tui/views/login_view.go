package views

import (
	"strings"

	"github.com/rivo/tview"

	"github.com/matheus3301/botadmin/internal/tui/ui"
)

// LoginView is the username/password form shown while unauthenticated.
type LoginView struct {
	*tview.Form
	theme    *ui.Theme
	onSubmit func(username, password string)
}

// NewLoginView creates the login form.
func NewLoginView(theme *ui.Theme) *LoginView {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetTitle(" Login ")
	form.SetTitleColor(theme.TitleColor)
	form.SetFieldBackgroundColor(theme.FieldBgColor)
	form.SetLabelColor(theme.MenuKeyColor)
	form.SetButtonsAlign(tview.AlignCenter)

	lv := &LoginView{Form: form, theme: theme}

	form.AddInputField("Username", "", 32, nil, nil)
	form.AddPasswordField("Password", "", 32, '*', nil)
	form.AddButton("Login", lv.submit)
	return lv
}

// Name implements ui.Page.
func (lv *LoginView) Name() string { return "login" }

// Start implements ui.Page. The password never survives a page change.
func (lv *LoginView) Start() {
	lv.password().SetText("")
	lv.SetFocus(0)
}

// Stop implements ui.Page.
func (lv *LoginView) Stop() {
	lv.password().SetText("")
}

// Hints implements ui.Page.
func (lv *LoginView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Login"},
		{Key: "Ctrl-C", Description: "Quit"},
	}
}

// SetOnSubmit sets the callback run with the entered credentials.
func (lv *LoginView) SetOnSubmit(fn func(username, password string)) {
	lv.onSubmit = fn
}

func (lv *LoginView) username() *tview.InputField {
	return lv.GetFormItemByLabel("Username").(*tview.InputField)
}

func (lv *LoginView) password() *tview.InputField {
	return lv.GetFormItemByLabel("Password").(*tview.InputField)
}

func (lv *LoginView) submit() {
	user := strings.TrimSpace(lv.username().GetText())
	pass := lv.password().GetText()
	if user == "" || pass == "" || lv.onSubmit == nil {
		return
	}
	lv.onSubmit(user, pass)
}
