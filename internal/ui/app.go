package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/saravenpi/chorus/internal/auth"
	"github.com/saravenpi/chorus/internal/client"
	"github.com/saravenpi/chorus/internal/models"
	"github.com/saravenpi/chorus/internal/presence"
	"github.com/saravenpi/chorus/internal/scheduler"
	"github.com/saravenpi/chorus/internal/session"
)

// screen is one view of the client. Screens read and mutate the shared
// state directly; the App rebuilds the screen when the route changes.
type screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (screen, tea.Cmd)
	View() string
	// capturing reports whether keys go to a text input rather than
	// the global shortcuts.
	capturing() bool
	resize(width, height int) screen
	refresh() screen
}

type callTickMsg struct {
	id int
}

// openAuthMsg asks the App to show the sign-in modal.
type openAuthMsg struct{}

type signOutMsg struct{}

type noticeMsg string

func notice(text string) tea.Cmd {
	return func() tea.Msg { return noticeMsg(text) }
}

type AppOption func(*App)

// WithSessions remembers successful sign-ins in store.
func WithSessions(store session.Store) AppOption {
	return func(a *App) { a.sessions = store }
}

// WithAuthPrompt opens the sign-in modal on start when nobody is signed in.
func WithAuthPrompt(prompt bool) AppOption {
	return func(a *App) { a.promptAuth = prompt }
}

func WithLogger(l zerolog.Logger) AppOption {
	return func(a *App) { a.log = l }
}

// App is the root model: navigation bar, the current screen, the call bar
// and the sign-in modal.
type App struct {
	state      *client.State
	authn      Authenticator
	sessions   session.Store
	promptAuth bool
	log        zerolog.Logger

	screen screen
	route  string
	modal  *AuthModel
	inCall bool
	callID int
	notice string
	err    error

	windowWidth  int
	windowHeight int
}

func NewApp(state *client.State, authn Authenticator, opts ...AppOption) App {
	a := App{
		state:        state,
		authn:        authn,
		log:          zerolog.Nop(),
		windowWidth:  80,
		windowHeight: 30,
	}
	for _, opt := range opts {
		opt(&a)
	}
	a.screen = a.buildScreen()
	a.route = a.currentRoute()
	return a
}

func (m App) Init() tea.Cmd {
	cmds := []tea.Cmd{m.screen.Init()}
	if m.promptAuth && !m.state.SignedIn() {
		cmds = append(cmds, func() tea.Msg { return openAuthMsg{} })
	}
	return tea.Batch(cmds...)
}

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.screen = m.screen.resize(m.screenSize())
		return m, nil

	case scheduler.FiredMsg:
		cmd, _ := m.state.HandleFired(msg)
		m.screen = m.screen.refresh()
		return m, cmd

	case callTickMsg:
		if msg.id != m.callID || !m.state.Presence.InCall() {
			return m, nil
		}
		return m, callTick(m.callID)

	case openAuthMsg:
		modal := NewAuthModel(m.authn)
		m.modal = &modal
		return m, modal.Init()

	case signOutMsg:
		m.signOut()
		m.screen = m.screen.refresh()
		return m, nil

	case noticeMsg:
		m.notice = string(msg)
		m.err = nil
		return m, nil

	case authResultMsg:
		if m.modal == nil || msg.modalID != m.modal.id {
			m.log.Debug().Int("modal", msg.modalID).Msg("ignoring late auth result")
			return m, nil
		}
		modal, cmd := m.modal.Update(msg)
		m.modal = &modal
		if modal.done {
			m.signIn(modal.result)
			m.modal = nil
		}
		m.screen = m.screen.refresh()
		return m, cmd

	case spinner.TickMsg:
		if m.modal != nil {
			modal, cmd := m.modal.Update(msg)
			m.modal = &modal
			return m, cmd
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.state.Shutdown()
			return m, tea.Quit
		}

		if m.modal != nil {
			modal, cmd := m.modal.Update(msg)
			if modal.closed {
				m.modal = nil
			} else {
				m.modal = &modal
			}
			return m, cmd
		}

		if m.callKeys(msg) {
			return m, tea.Batch(m.syncRoute()...)
		}

		if !m.screen.capturing() {
			if cmd, handled := m.globalKeys(msg); handled {
				cmds = append(cmds, cmd)
				cmds = append(cmds, m.syncRoute()...)
				return m, tea.Batch(cmds...)
			}
		}

		m.notice = ""
		m.err = nil
	}

	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	cmds = append(cmds, cmd)
	cmds = append(cmds, m.syncRoute()...)
	return m, tea.Batch(cmds...)
}

// callKeys handles the controls of an active call. They work on every screen.
func (m *App) callKeys(msg tea.KeyMsg) bool {
	if !m.state.Presence.InCall() {
		return false
	}
	switch msg.String() {
	case "ctrl+o":
		m.state.Presence.ToggleMute()
	case "ctrl+d":
		m.state.Presence.ToggleDeafen()
	case "ctrl+e":
		m.state.EndCall()
		m.notice = "Звонок завершён"
	default:
		return false
	}
	return true
}

func (m *App) globalKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	var err error
	switch msg.String() {
	case "q":
		m.state.Shutdown()
		return tea.Quit, true
	case "h":
		m.state.CloseDM()
		err = m.state.Show(models.ViewDirectMessages)
	case "s":
		err = m.state.SelectServer(m.nextServer())
	case "f":
		err = m.state.Show(models.ViewFriends)
	case "+":
		err = m.state.Show(models.ViewAddFriend)
	case "p":
		err = m.state.Show(models.ViewProfile)
	default:
		return nil, false
	}
	m.err = err
	m.notice = ""
	return nil, true
}

// nextServer cycles through servers. Outside the server view it reopens
// the selected one.
func (m *App) nextServer() string {
	current := m.state.Router.ServerID()
	if m.state.Router.View() != models.ViewServer {
		return current
	}
	servers := m.state.Router.Servers()
	for i, s := range servers {
		if s.ID == current {
			return servers[(i+1)%len(servers)].ID
		}
	}
	return current
}

// syncRoute swaps in the screen for the current route and starts the call
// clock when a call has begun.
func (m *App) syncRoute() []tea.Cmd {
	var cmds []tea.Cmd
	if inCall := m.state.Presence.InCall(); inCall != m.inCall {
		m.inCall = inCall
		m.screen = m.screen.resize(m.screenSize())
		if inCall {
			m.callID++
			cmds = append(cmds, callTick(m.callID))
		}
	}
	if route := m.currentRoute(); route != m.route {
		m.route = route
		m.screen = m.buildScreen()
		cmds = append(cmds, m.screen.Init())
	}
	return cmds
}

func (m App) currentRoute() string {
	return string(m.state.Router.View()) + "|" + string(m.state.Active())
}

func (m App) buildScreen() screen {
	var s screen
	switch m.state.Router.View() {
	case models.ViewServer:
		s = newChatModel(m.state)
	case models.ViewDirectMessages:
		if m.state.Router.DMFriendID() != "" {
			s = newChatModel(m.state)
		} else {
			s = newHomeModel(m.state)
		}
	case models.ViewFriends:
		s = newFriendsModel(m.state)
	case models.ViewAddFriend:
		s = newAddFriendModel(m.state)
	default:
		s = newProfileModel(m.state)
	}
	return s.resize(m.screenSize())
}

func (m App) screenSize() (int, int) {
	height := m.windowHeight - 2
	if m.state.Presence.InCall() {
		height -= 3
	}
	if height < 5 {
		height = 5
	}
	return m.windowWidth, height
}

func (m *App) signIn(res *auth.Result) {
	m.state.SignIn(res.User, res.Token)
	m.notice = fmt.Sprintf("Добро пожаловать, %s!", res.User.Username)
	if m.sessions == nil {
		return
	}
	user, _ := m.state.User()
	if err := m.sessions.Save(session.Session{User: user, Token: m.state.Token()}); err != nil {
		m.log.Warn().Err(err).Msg("failed to remember session")
	}
}

func (m *App) signOut() {
	m.state.SignOut()
	m.notice = "Вы вышли из аккаунта"
	if m.sessions == nil {
		return
	}
	if err := m.sessions.Erase(); err != nil && !errors.Is(err, session.ErrNoSession) {
		m.log.Warn().Err(err).Msg("failed to forget session")
	}
}

func callTick(id int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return callTickMsg{id: id} })
}

func (m App) View() string {
	if m.modal != nil {
		return lipgloss.Place(m.windowWidth, m.windowHeight, lipgloss.Center, lipgloss.Center, m.modal.View())
	}

	var b strings.Builder
	b.WriteString(m.navBar() + "\n")
	b.WriteString(m.screen.View())

	if call, ok := m.state.Presence.Call(); ok {
		b.WriteString("\n" + m.callBar(call))
	}

	switch {
	case m.err != nil:
		b.WriteString("\n" + errorStyle.Render(describeError(m.err)))
	case m.notice != "":
		b.WriteString("\n" + statusStyle.Render(m.notice))
	}
	return b.String()
}

func (m App) navBar() string {
	view := m.state.Router.View()
	tabs := []struct {
		label  string
		active bool
	}{
		{"💬 Личные", view == models.ViewDirectMessages},
		{m.serverTab(), view == models.ViewServer},
		{"👥 Друзья", view == models.ViewFriends},
		{"➕ Добавить", view == models.ViewAddFriend},
		{"👤 Профиль", view == models.ViewProfile},
	}

	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		if t.active {
			rendered[i] = activeTabStyle.Render(t.label)
		} else {
			rendered[i] = tabStyle.Render(t.label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m App) serverTab() string {
	if srv, ok := m.state.Router.Server(); ok {
		return srv.Icon + " " + srv.Name
	}
	return "🏠 Серверы"
}

func (m App) callBar(call presence.Call) string {
	elapsed := m.state.Presence.Elapsed().Round(time.Second)
	mic, sound := "🎙 вкл", "🎧 вкл"
	if call.Muted {
		mic = "🎙 выкл"
	}
	if call.Deafened {
		sound = "🎧 выкл"
	}

	line := fmt.Sprintf("🔊 Звонок: %s • %s • %s • %s", call.PeerName, formatElapsed(elapsed), mic, sound)
	return callBarStyle.Width(m.windowWidth).Render(line) + "\n" +
		helpStyle.Render("ctrl+o: микрофон • ctrl+d: звук • ctrl+e: завершить")
}

func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	if total < 3600 {
		return fmt.Sprintf("%02d:%02d", total/60, total%60)
	}
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total/60%60, total%60)
}

func describeError(err error) string {
	if errors.Is(err, presence.ErrInCall) {
		return "Вы уже в звонке"
	}
	return err.Error()
}
