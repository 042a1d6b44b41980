// Package tui is the interactive operator console: login, dashboard, live
// console and config editor pages over a shared console.State.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/matheus3301/botadmin/internal/bus"
	"github.com/matheus3301/botadmin/internal/configcache"
	"github.com/matheus3301/botadmin/internal/configtree"
	"github.com/matheus3301/botadmin/internal/console"
	"github.com/matheus3301/botadmin/internal/feed"
	"github.com/matheus3301/botadmin/internal/gateway"
	"github.com/matheus3301/botadmin/internal/logging"
	"github.com/matheus3301/botadmin/internal/session"
	"github.com/matheus3301/botadmin/internal/status"
	"github.com/matheus3301/botadmin/internal/tui/keys"
	"github.com/matheus3301/botadmin/internal/tui/ui"
	"github.com/matheus3301/botadmin/internal/tui/views"
)

// Page names.
const (
	PageLogin     = "login"
	PageDashboard = "dashboard"
	PageConsole   = "console"
	PageConfig    = "config"
	PageHelp      = "help"
)

var pageTitles = map[string]string{
	PageDashboard: "Dashboard",
	PageConsole:   "Console",
	PageConfig:    "Config",
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	pages    *ui.Pages
	state    *console.State
	theme    *ui.Theme
	registry *keys.Registry
	logger   *zap.Logger

	info      *ui.ProfileInfo
	logo      *ui.Logo
	menu      *ui.Menu
	crumbs    *ui.Crumbs
	flashBar  *ui.FlashBar
	statusBar *views.StatusBar

	login     *views.LoginView
	dashboard *views.DashboardView
	consoleV  *views.ConsoleView
	configV   *views.ConfigView
	help      *views.HelpView

	apiURL string
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI over st.
func NewApp(st *console.State, apiURL string, logger *zap.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		pages:     ui.NewPages(),
		state:     st,
		theme:     theme,
		registry:  keys.NewRegistry(),
		logger:    logging.OrNop(logger),
		info:      ui.NewProfileInfo(theme),
		logo:      ui.NewLogo(theme),
		menu:      ui.NewMenu(theme),
		crumbs:    ui.NewCrumbs(theme),
		flashBar:  ui.NewFlashBar(theme),
		statusBar: views.NewStatusBar(theme),
		login:     views.NewLoginView(theme),
		dashboard: views.NewDashboardView(theme),
		consoleV:  views.NewConsoleView(theme),
		configV:   views.NewConfigView(theme),
		help:      views.NewHelpView(theme),
		apiURL:    apiURL,
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetProfile(st.Profile)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	r := a.registry
	r.Global(keys.Rune('q', "Quit", a.app.Stop))
	r.Global(keys.Rune('?', "Help", func() { a.pages.Push(PageHelp) }))

	mainPages := []string{PageDashboard, PageConsole, PageConfig}
	for i, page := range mainPages {
		b := keys.Rune(rune('1'+i), pageTitles[page], func() { a.show(page) })
		b.PageSwitch = true
		r.Page(b, mainPages...)
	}

	r.Page(keys.Rune('r', "Refresh", func() { go a.reload() }), PageDashboard, PageConfig)
	r.Page(keys.Rune('r', "Reconnect", a.reconnect), PageConsole)
	r.Page(keys.Rune('L', "Logout", func() { go a.state.Logout() }), mainPages...)
}

func (a *App) setupCallbacks() {
	a.login.SetOnSubmit(func(username, password string) {
		go func() {
			err := a.state.Login(a.ctx, username, password)
			if errors.Is(err, gateway.ErrInvalidCredentials) {
				a.state.Flash.Warn("invalid username or password")
				return
			}
			if a.state.Report("login", err) {
				return
			}
			a.state.Flash.Info("logged in as " + username)
			a.app.QueueUpdateDraw(func() {
				a.statusBar.SetUser(username)
				a.show(PageDashboard)
			})
			a.reload()
		}()
	})

	a.consoleV.SetLifecycle(
		func() {
			a.consoleV.Update(a.state.Messages())
			go func() {
				err := a.state.ActivateFeed(a.ctx)
				if errors.Is(err, feed.ErrAlreadyActive) {
					return
				}
				a.state.Report("live feed", err)
			}()
		},
		a.state.DeactivateFeed,
	)

	a.configV.SetHandlers(
		func(doc *configtree.Node) {
			go func() {
				err := a.state.SaveConfig(a.ctx, doc)
				switch {
				case errors.Is(err, configcache.ErrReconcile):
					a.state.Flash.Warn("saved, but reloading the config failed")
				case a.state.Report("save config", err):
				default:
					a.state.Flash.Info("configuration saved")
				}
			}()
		},
		func(err error) { a.state.Flash.Err(err) },
		func() { a.configV.Load(a.state.Config.Snapshot()) },
	)

	a.pages.SetOnChange(func(stack []string) {
		a.crumbs.Update(a.state.Profile, stack)
		a.menu.Update(a.hints())
	})
}

func (a *App) setupLayout() {
	for _, pg := range []ui.Page{a.login, a.dashboard, a.consoleV, a.configV, a.help} {
		a.pages.Add(pg)
	}

	header := tview.NewFlex().
		AddItem(a.info, 0, 2, false).
		AddItem(a.menu, 0, 2, false).
		AddItem(a.logo, 16, 0, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 7, 0, false).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.flashBar, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		current := a.pages.Current()

		if event.Key() == tcell.KeyEscape {
			if a.pages.Pop() != "" {
				a.focusCurrent()
				return nil
			}
			if current == PageConfig {
				a.app.SetFocus(a.configV)
			}
			return event
		}

		// Let form widgets handle all keys normally.
		switch a.app.GetFocus().(type) {
		case *tview.InputField, *tview.Checkbox, *tview.Button:
			return event
		}

		if a.registry.Handle(current, event) {
			return nil
		}
		return event
	})
}

// show switches to page, sending unauthenticated users to the login page.
func (a *App) show(page string) {
	if page != PageLogin && !a.state.Authenticated() {
		page = PageLogin
	}
	a.pages.Reset(page)
	a.focusCurrent()
	a.render()
}

func (a *App) focusCurrent() {
	if pg := a.pages.Top(); pg != nil {
		a.app.SetFocus(pg)
	}
}

// hints lists the visible page's widget keys followed by its bindings.
func (a *App) hints() []ui.MenuHint {
	var hints []ui.MenuHint
	if pg := a.pages.Top(); pg != nil {
		hints = append(hints, pg.Hints()...)
	}
	// The login form keeps focus, so no binding reaches it.
	if a.pages.Current() == PageLogin {
		return hints
	}
	for _, b := range a.registry.Bindings(a.pages.Current()) {
		if !b.Hidden {
			hints = append(hints, ui.MenuHint{Key: b.KeyName(), Description: b.Label, PageSwitch: b.PageSwitch})
		}
	}
	return hints
}

// reconnect reopens the live feed; a dropped connection is not retried on
// its own.
func (a *App) reconnect() {
	go func() {
		a.state.DeactivateFeed()
		a.state.Report("live feed", a.state.ActivateFeed(a.ctx))
	}()
}

// reload fetches everything from the backend and redraws. Call it off the
// UI goroutine.
func (a *App) reload() {
	a.state.Refresh(a.ctx)
	a.app.QueueUpdateDraw(func() {
		if a.pages.Current() == PageConfig {
			a.configV.Load(a.state.Config.Snapshot())
		}
		a.render()
	})
}

// render redraws data-bound widgets. Call it on the UI goroutine.
func (a *App) render() {
	feedState := a.state.FeedState()
	var configAge time.Duration
	if at := a.state.Config.FetchedAt(); !at.IsZero() {
		configAge = time.Since(at)
	}
	a.info.Update(&ui.ProfileData{
		Profile:       a.state.Profile,
		APIURL:        a.apiURL,
		Authenticated: a.state.Authenticated(),
		Feed:          feedState,
		Buffered:      a.state.Buffer.Len(),
		Capacity:      a.state.Buffer.Cap(),
		ConfigAge:     configAge,
	})
	a.statusBar.SetFeed(feedState)
	a.logo.SetFeed(feedState)

	switch a.pages.Current() {
	case PageDashboard:
		a.dashboard.Update(views.DashboardData{
			Messages: a.state.Buffer.Len(),
			Capacity: a.state.Buffer.Cap(),
			Feed:     feedState,
			Toggles:  a.state.Toggles(),
			Sessions: a.state.Sessions(),
		})
	case PageConsole:
		a.consoleV.Update(a.state.Messages())
	}
}

// watch applies bus events and flash messages to the screen until the app
// stops.
func (a *App) watch() {
	events, unsubscribe := a.state.Bus.Subscribe("", 64)
	defer unsubscribe()
	flashes := a.state.Flash.Watch()

	for {
		select {
		case evt := <-events:
			a.handleEvent(evt)
		case fm := <-flashes:
			a.app.QueueUpdateDraw(func() { a.flashBar.Update(&fm) })
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.SessionLoggedOut:
		a.logger.Info("session ended, returning to login")
		a.app.QueueUpdateDraw(func() {
			a.statusBar.SetUser("")
			a.show(PageLogin)
		})
	case bus.FeedStateChanged:
		change, _ := evt.Payload.(status.StatusChange)
		a.logger.Debug("feed state", zap.String("from", string(change.From)), zap.String("to", string(change.To)))
		a.app.QueueUpdateDraw(a.render)
	case bus.FeedMessage, bus.MessagesReplaced, bus.ConfigUpdated:
		a.app.QueueUpdateDraw(a.render)
	}
}

// startTicker keeps the clock, flash expiry and header ages current.
func (a *App) startTicker() {
	ticker := time.NewTicker(5 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.app.QueueUpdateDraw(func() {
					a.flashBar.Update(a.state.Flash.Current())
					a.statusBar.Tick()
					a.render()
				})
			case <-a.ctx.Done():
				return
			}
		}
	}()
}

// Run starts the TUI and blocks until the user quits.
func (a *App) Run() error {
	if a.state.Authenticated() {
		a.statusBar.SetUser(userLabel(a.state.Session.Credential()))
		a.show(PageDashboard)
		go a.reload()
	} else {
		a.show(PageLogin)
	}

	go a.watch()
	a.startTicker()

	err := a.app.Run()
	a.cancel()
	return err
}

// Stop shuts the TUI down from outside the UI goroutine.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// userLabel names the operator behind a restored credential.
func userLabel(token string) string {
	claims, err := session.Inspect(token)
	if err != nil || claims.Role == "" {
		return "authenticated"
	}
	return claims.Role
}
