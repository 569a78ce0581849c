package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/saravenpi/chorus/internal/client"
	"github.com/saravenpi/chorus/internal/models"
)

var statusCycle = []models.Status{models.StatusOnline, models.StatusAway, models.StatusOffline}

// profileModel shows the local user and the account and voice settings.
type profileModel struct {
	state        *client.State
	err          error
	windowWidth  int
	windowHeight int
}

func newProfileModel(state *client.State) profileModel {
	return profileModel{state: state, windowWidth: 80, windowHeight: 30}
}

func (m profileModel) Init() tea.Cmd {
	return nil
}

func (m profileModel) capturing() bool {
	return false
}

func (m profileModel) resize(width, height int) screen {
	m.windowWidth = width
	m.windowHeight = height
	return m
}

func (m profileModel) refresh() screen {
	return m
}

func nextStatus(s models.Status) models.Status {
	for i, st := range statusCycle {
		if st == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return models.StatusOnline
}

func (m profileModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.err = nil
	switch keyMsg.String() {
	case "t":
		m.err = m.state.SetStatus(nextStatus(m.state.Presence.Status()))
	case "m":
		m.state.Presence.ToggleMute()
	case "d":
		m.state.Presence.ToggleDeafen()
	case "y":
		code := m.state.SelfCode()
		if err := clipboard.WriteAll(code); err != nil {
			m.err = fmt.Errorf("failed to copy friend code: %w", err)
			return m, nil
		}
		return m, notice("Код скопирован: " + code)
	case "l":
		if !m.state.SignedIn() {
			return m, func() tea.Msg { return openAuthMsg{} }
		}
	case "o":
		if m.state.SignedIn() {
			return m, func() tea.Msg { return signOutMsg{} }
		}
	case "esc":
		m.err = m.state.Show(models.ViewDirectMessages)
	}
	return m, nil
}

func (m profileModel) View() string {
	self := m.state.Self()
	status := m.state.Presence.Status()

	var b strings.Builder
	b.WriteString(titleStyle.Render("👤 Профиль") + "\n")
	b.WriteString(fmt.Sprintf("  %s  %s\n", self.Avatar, selectedStyle.Render(self.Name)))
	b.WriteString(fmt.Sprintf("  Код друга: %s\n", statusStyle.Render(m.state.SelfCode())))
	if user, ok := m.state.User(); ok {
		if user.Email != "" {
			b.WriteString(fmt.Sprintf("  Email: %s\n", normalStyle.Render(user.Email)))
		}
		b.WriteString("  " + statusStyle.Render("Вы вошли в аккаунт") + "\n")
	} else {
		b.WriteString("  " + messageHeaderStyle.Render("Гостевой режим") + "\n")
	}
	b.WriteString(fmt.Sprintf("\n  Статус: %s %s\n", statusDot(status), statusLabel(status)))

	if call, ok := m.state.Presence.Call(); ok {
		b.WriteString(fmt.Sprintf("  Микрофон: %s • Звук: %s\n", onOff(!call.Muted), onOff(!call.Deafened)))
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(describeError(m.err)) + "\n")
	}

	help := "t: статус • y: копировать код"
	if m.state.Presence.InCall() {
		help += " • m: микрофон • d: звук"
	}
	if m.state.SignedIn() {
		help += " • o: выйти"
	} else {
		help += " • l: войти"
	}
	b.WriteString("\n" + helpStyle.Render(help+" • esc: назад • q: выход"))
	return b.String()
}

func onOff(on bool) string {
	if on {
		return "вкл"
	}
	return "выкл"
}
