package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bryanwahyu/ecosense/internal/client/auth"
	"github.com/bryanwahyu/ecosense/internal/client/dashboard"
	"github.com/bryanwahyu/ecosense/internal/client/workflow"
)

type screen int

const (
	screenSignIn screen = iota
	screenDashboard
)

// App is the root model: a sign-in form in front of the module tabs.
type App struct {
	ctx      context.Context
	provider *auth.Provider
	dash     *dashboard.Dashboard

	screen  screen
	spinner spinner.Model
	width   int

	// sign-in form
	email     textinput.Model
	password  textinput.Model
	busy      bool
	user      *auth.User
	errMsg    string
	statusMsg string

	// mounted module
	module dashboard.Module
	widget dashboard.Widget
	mount  int
	watch  *watcher
	form   []textinput.Model
	focus  int
	cursor int
}

func NewApp(ctx context.Context, provider *auth.Provider, dash *dashboard.Dashboard) *App {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email:    "
	email.CharLimit = 120
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &App{
		ctx:      ctx,
		provider: provider,
		dash:     dash,
		spinner:  sp,
		email:    email,
		password: password,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.spinner.Tick)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case SignedIn:
		a.busy = false
		if msg.Err != nil {
			a.errMsg = msg.Err.Error()
			return a, nil
		}
		a.user, a.errMsg = msg.User, ""
		a.password.SetValue("")
		a.screen = screenDashboard
		return a, a.selectModule(dashboard.ModuleSolar)

	case SignedOut:
		a.busy = false
		if msg.Err != nil {
			a.errMsg = msg.Err.Error()
			return a, nil
		}
		a.unmount()
		a.user = nil
		a.screen = screenSignIn
		return a, a.email.Focus()

	case WorkflowChanged:
		if msg.Mount != a.mount || a.watch == nil {
			return a, nil
		}
		return a, a.watch.wait(a.mount)

	case Pinged:
		if msg.Mount == a.mount {
			a.statusMsg = "Backend " + msg.Connectivity.String()
		}
		return a, nil

	case Submitted:
		if msg.Mount == a.mount && msg.Err != nil && !errors.Is(msg.Err, workflow.ErrSuperseded) {
			a.errMsg = msg.Err.Error()
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.unmount()
			return a, tea.Quit
		}
		if a.screen == screenSignIn {
			return a.updateSignIn(msg)
		}
		return a.updateDashboard(msg)
	}
	return a, nil
}

func (a *App) updateSignIn(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.busy {
		return a, nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		if a.email.Focused() {
			a.email.Blur()
			return a, a.password.Focus()
		}
		a.password.Blur()
		return a, a.email.Focus()
	case "enter":
		a.busy, a.errMsg = true, ""
		email, password := a.email.Value(), a.password.Value()
		return a, func() tea.Msg {
			u, err := a.provider.SignIn(a.ctx, email, password)
			return SignedIn{User: u, Err: err}
		}
	}
	var cmd tea.Cmd
	if a.email.Focused() {
		a.email, cmd = a.email.Update(msg)
	} else {
		a.password, cmd = a.password.Update(msg)
	}
	return a, cmd
}

func (a *App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "f1", "f2", "f3", "f4":
		return a, a.selectModule(dashboard.Modules[int(key[1]-'1')])
	case "tab":
		return a, a.selectModule(a.nextModule(1))
	case "shift+tab":
		return a, a.selectModule(a.nextModule(-1))
	case "ctrl+o":
		a.busy = true
		return a, func() tea.Msg { return SignedOut{Err: a.provider.SignOut(a.ctx)} }
	}
	return a, a.updateWidget(msg)
}

func (a *App) nextModule(step int) dashboard.Module {
	n := len(dashboard.Modules)
	for i, m := range dashboard.Modules {
		if m == a.module {
			return dashboard.Modules[((i+step)%n+n)%n]
		}
	}
	return dashboard.Modules[0]
}

// selectModule unmounts the current widget and mounts a fresh one.
func (a *App) selectModule(m dashboard.Module) tea.Cmd {
	a.unmount()
	w, err := a.dash.Select(m)
	if err != nil {
		a.errMsg = err.Error()
		return nil
	}
	a.mount++
	a.module, a.widget = m, w
	a.errMsg, a.statusMsg = "", ""
	a.focus, a.cursor = 0, 0
	a.form = formFor(m)

	var cmds []tea.Cmd
	if len(a.form) > 0 {
		cmds = append(cmds, a.form[0].Focus())
	}
	switch w := w.(type) {
	case *dashboard.SolarWidget:
		a.watch = watchWorkflow(w.Workflow)
		cmds = append(cmds, a.watch.wait(a.mount), ping(a.ctx, a.mount, w.Workflow.Ping))
	case *dashboard.CarbonWidget:
		a.watch = watchWorkflow(w.Workflow)
		cmds = append(cmds, a.watch.wait(a.mount), ping(a.ctx, a.mount, w.Workflow.Ping))
	}
	return tea.Batch(cmds...)
}

func (a *App) unmount() {
	if a.watch != nil {
		a.watch.stop()
		a.watch = nil
	}
	a.module, a.widget, a.form = "", nil, nil
}

func (a *App) View() string {
	if a.screen == screenSignIn {
		return a.viewSignIn()
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render("🌱 EcoSense"))
	if a.user != nil {
		b.WriteString(LabelStyle.Render(" signed in as " + a.user.Name))
	}
	b.WriteString("\n")

	tabs := make([]string, 0, len(dashboard.Modules))
	for i, m := range dashboard.Modules {
		label := fmt.Sprintf("F%d %s", i+1, m.Title())
		if m == a.module {
			tabs = append(tabs, ActiveTab.Render(label))
		} else {
			tabs = append(tabs, InactiveTab.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	body := a.viewWidget()
	if a.width > 4 {
		b.WriteString(PanelStyle.Width(a.width - 4).Render(body))
	} else {
		b.WriteString(PanelStyle.Render(body))
	}
	b.WriteString("\n")

	if a.statusMsg != "" {
		b.WriteString(LabelStyle.Render(a.statusMsg) + "\n")
	}
	if a.errMsg != "" {
		b.WriteString(ErrorStyle.Render(a.errMsg) + "\n")
	}
	b.WriteString(HelpStyle.Render("tab/F1-F4 switch module • enter submit • ctrl+r reset • ctrl+o sign out • ctrl+c quit"))
	return b.String()
}

func (a *App) viewSignIn() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("🌱 EcoSense sign in") + "\n\n")
	b.WriteString(a.email.View() + "\n")
	b.WriteString(a.password.View() + "\n\n")
	if a.busy {
		b.WriteString(a.spinner.View() + " Signing in...\n")
	}
	if a.errMsg != "" {
		b.WriteString(ErrorStyle.Render(a.errMsg) + "\n")
	}
	b.WriteString(HelpStyle.Render("Any email and password work in this demo • tab switch field • enter sign in • ctrl+c quit"))
	return b.String()
}
