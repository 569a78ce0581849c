package ui

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/saravenpi/chorus/internal/auth"
	"github.com/saravenpi/chorus/internal/mock"
)

// Authenticator is the gateway the sign-in modal talks to.
type Authenticator interface {
	Login(ctx context.Context, req auth.LoginRequest) (*auth.Result, error)
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.Result, error)
}

type authMode int

const (
	modeLogin authMode = iota
	modeRegister
)

type authField int

const (
	fieldUsername authField = iota
	fieldEmail
	fieldPassword
	fieldAvatar
)

var lastModalID int64

func nextModalID() int {
	return int(atomic.AddInt64(&lastModalID, 1))
}

// authResultMsg carries the gateway's answer back to the modal that asked.
type authResultMsg struct {
	modalID int
	result  *auth.Result
	err     error
}

// AuthModel is the login/register modal.
type AuthModel struct {
	id      int
	authn   Authenticator
	mode    authMode
	inputs  []textinput.Model
	focus   int
	avatar  int
	loading bool
	spinner spinner.Model
	err     string

	done   bool
	closed bool
	result *auth.Result
}

func NewAuthModel(authn Authenticator) AuthModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	placeholders := []string{"Имя пользователя", "Email", "Пароль"}
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = p
		inputs[i].CharLimit = 100
		inputs[i].Width = 36
	}
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldPassword].EchoCharacter = '•'

	m := AuthModel{
		id:      nextModalID(),
		authn:   authn,
		inputs:  inputs,
		spinner: s,
	}
	m.updateFocus()
	return m
}

func (m AuthModel) Init() tea.Cmd {
	return textinput.Blink
}

// fields lists the focusable fields of the current mode in order.
func (m AuthModel) fields() []authField {
	if m.mode == modeRegister {
		return []authField{fieldUsername, fieldEmail, fieldPassword, fieldAvatar}
	}
	return []authField{fieldEmail, fieldPassword}
}

func (m AuthModel) focused() authField {
	return m.fields()[m.focus]
}

func (m *AuthModel) updateFocus() {
	current := m.focused()
	for i := range m.inputs {
		if authField(i) == current {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m AuthModel) Update(msg tea.Msg) (AuthModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		if msg.modalID != m.id {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = auth.Describe(msg.err)
			return m, nil
		}
		m.result = msg.result
		m.done = true
		m.closed = true
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "esc" {
			m.closed = true
			return m, nil
		}
		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "ctrl+t":
			if m.mode == modeLogin {
				m.mode = modeRegister
			} else {
				m.mode = modeLogin
			}
			m.focus = 0
			m.err = ""
			m.updateFocus()
			return m, nil

		case "tab", "down":
			m.focus = (m.focus + 1) % len(m.fields())
			m.updateFocus()
			return m, nil

		case "shift+tab", "up":
			m.focus--
			if m.focus < 0 {
				m.focus = len(m.fields()) - 1
			}
			m.updateFocus()
			return m, nil

		case "enter":
			return m.submit()
		}

		if m.focused() == fieldAvatar {
			switch msg.String() {
			case "left", "h":
				m.avatar = (m.avatar + len(mock.Avatars) - 1) % len(mock.Avatars)
			case "right", "l":
				m.avatar = (m.avatar + 1) % len(mock.Avatars)
			}
			return m, nil
		}

		f := m.focused()
		var cmd tea.Cmd
		m.inputs[f], cmd = m.inputs[f].Update(msg)
		return m, cmd
	}

	return m, nil
}

// SetAvatar picks an avatar from the registration set by value.
func (m *AuthModel) SetAvatar(avatar string) bool {
	for i, a := range mock.Avatars {
		if a == avatar {
			m.avatar = i
			return true
		}
	}
	return false
}

func (m AuthModel) value(f authField) string {
	return m.inputs[f].Value()
}

// submit validates the form and sends it. Nothing is sent while a field is empty.
func (m AuthModel) submit() (AuthModel, tea.Cmd) {
	for _, f := range m.fields() {
		if f != fieldAvatar && strings.TrimSpace(m.value(f)) == "" {
			m.err = auth.ErrMissingFields.Error()
			return m, nil
		}
	}

	m.loading = true
	m.err = ""

	id, authn, mode := m.id, m.authn, m.mode
	email, password := m.value(fieldEmail), m.value(fieldPassword)
	username, avatar := m.value(fieldUsername), mock.Avatars[m.avatar]

	request := func() tea.Msg {
		var res *auth.Result
		var err error
		if mode == modeRegister {
			res, err = authn.Register(context.Background(), auth.RegisterRequest{
				Username: username,
				Email:    email,
				Password: password,
				Avatar:   avatar,
			})
		} else {
			res, err = authn.Login(context.Background(), auth.LoginRequest{Email: email, Password: password})
		}
		return authResultMsg{modalID: id, result: res, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, request)
}

func (m AuthModel) View() string {
	var b strings.Builder

	login, register := tabStyle.Render("Вход"), tabStyle.Render("Регистрация")
	if m.mode == modeLogin {
		login = activeTabStyle.Render("Вход")
	} else {
		register = activeTabStyle.Render("Регистрация")
	}
	b.WriteString(titleStyle.Render("🎧 Chorus") + "\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, login, register) + "\n\n")

	for _, f := range m.fields() {
		if f == fieldAvatar {
			b.WriteString(m.avatarPicker() + "\n")
			continue
		}
		b.WriteString(m.inputs[f].View() + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " Подождите...\n")
	case m.err != "":
		b.WriteString(errorStyle.Render(m.err) + "\n")
	}

	b.WriteString(helpStyle.Render("tab: поле • enter: отправить • ctrl+t: вход/регистрация • esc: гость"))
	return modalStyle.Render(b.String())
}

func (m AuthModel) avatarPicker() string {
	label := "Аватар:"
	if m.focused() == fieldAvatar {
		label = inputStyle.Render("Аватар:")
	}
	items := make([]string, len(mock.Avatars))
	for i, a := range mock.Avatars {
		if i == m.avatar {
			items[i] = selectedStyle.Render("[" + a + "]")
		} else {
			items[i] = " " + a + " "
		}
	}
	return label + " " + strings.Join(items, "")
}
