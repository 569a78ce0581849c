package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/saravenpi/chorus/internal/client"
	"github.com/saravenpi/chorus/internal/conversation"
	"github.com/saravenpi/chorus/internal/mock"
	"github.com/saravenpi/chorus/internal/models"
)

// chatModel shows a server channel or a direct-message thread.
type chatModel struct {
	state     *client.State
	key       conversation.Key
	messages  []models.Message
	viewport  viewport.Model
	input     textinput.Model
	composing bool
	cursor    int
	err       error

	windowWidth  int
	windowHeight int
}

func newChatModel(state *client.State) chatModel {
	vp := viewport.New(80, 20)

	ti := textinput.New()
	ti.Placeholder = "Написать сообщение..."
	ti.CharLimit = 2000
	ti.Prompt = "› "

	m := chatModel{
		state:        state,
		key:          state.Active(),
		viewport:     vp,
		input:        ti,
		windowWidth:  80,
		windowHeight: 30,
	}
	m.load(true)
	return m
}

func (m chatModel) Init() tea.Cmd {
	return nil
}

func (m chatModel) capturing() bool {
	return m.composing
}

func (m chatModel) resize(width, height int) screen {
	m.windowWidth = width
	m.windowHeight = height

	headerHeight := 3
	if m.state.Router.View() == models.ViewServer {
		headerHeight++
	}
	inputHeight := 3
	m.viewport.Width = width - 2
	m.viewport.Height = max(height-headerHeight-inputHeight, 3)
	m.input.Width = width - 6
	m.render()
	return m
}

func (m chatModel) refresh() screen {
	m.load(false)
	return m
}

// load reads the conversation from the store. New messages scroll the view
// to the bottom.
func (m *chatModel) load(initial bool) {
	msgs := m.state.Convs.Messages(m.key)
	grew := len(msgs) > len(m.messages)
	m.messages = msgs
	if m.cursor >= len(msgs) || grew || initial {
		m.cursor = len(msgs) - 1
	}
	m.render()
	if grew || initial {
		m.viewport.GotoBottom()
	}
}

func (m chatModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.composing {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.composing {
		return m.updateComposing(keyMsg)
	}

	m.err = nil
	switch keyMsg.String() {
	case "enter", "i":
		m.composing = true
		return m, m.input.Focus()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.render()
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.messages)-1 {
			m.cursor++
			m.render()
		}
		return m, nil

	case "1", "2", "3", "4", "5", "6":
		idx := int(keyMsg.String()[0] - '1')
		if m.cursor >= 0 && m.cursor < len(m.messages) {
			_, m.err = m.state.React(m.messages[m.cursor].ID, mock.ReactionEmojis[idx])
		}
		m.load(false)
		return m, nil

	case "[", "]":
		if m.state.Router.View() != models.ViewServer {
			return m, nil
		}
		m.err = m.state.SelectChannel(m.neighbourChannel(keyMsg.String() == "]"))
		m.load(false)
		return m, nil

	case "v":
		if m.state.Router.View() != models.ViewServer {
			return m, nil
		}
		if ch, ok := voiceChannel(m.state.Router.Channels()); ok {
			m.err = m.state.SelectChannel(ch.ID)
		}
		return m, nil

	case "c":
		if friendID := m.state.Router.DMFriendID(); m.state.Router.View() == models.ViewDirectMessages && friendID != "" {
			if f, ok := m.state.Friends.Get(friendID); ok {
				m.err = m.state.StartCall(f.ID, f.Name)
			}
		}
		return m, nil

	case "esc":
		if m.state.Router.View() == models.ViewDirectMessages {
			m.state.CloseDM()
		} else {
			m.err = m.state.Show(models.ViewDirectMessages)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m chatModel) updateComposing(msg tea.KeyMsg) (screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.composing = false
		m.input.Blur()
		return m, nil

	case "enter":
		_, cmd, err := m.state.Send(m.input.Value())
		if errors.Is(err, conversation.ErrEmptyMessage) {
			return m, nil
		}
		m.err = err
		m.input.Reset()
		m.load(false)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, tea.Batch(cmd, m.state.Keystroke())
}

// neighbourChannel returns the text channel after (or before) the selected one.
func (m chatModel) neighbourChannel(forward bool) string {
	var channels []models.Channel
	for _, ch := range m.state.Router.Channels() {
		if ch.Kind == models.ChannelText {
			channels = append(channels, ch)
		}
	}
	if len(channels) == 0 {
		return ""
	}
	current := 0
	for i, ch := range channels {
		if ch.ID == m.state.Router.ChannelID() {
			current = i
			break
		}
	}
	step := len(channels) - 1
	if forward {
		step = 1
	}
	return channels[(current+step)%len(channels)].ID
}

// voiceChannel picks the voice channel to join: the first one with people
// in it, otherwise the first one.
func voiceChannel(channels []models.Channel) (models.Channel, bool) {
	var first *models.Channel
	for i, ch := range channels {
		if ch.Kind != models.ChannelVoice {
			continue
		}
		if ch.Active {
			return ch, true
		}
		if first == nil {
			first = &channels[i]
		}
	}
	if first == nil {
		return models.Channel{}, false
	}
	return *first, true
}

func (m *chatModel) render() {
	wrapWidth := m.viewport.Width
	if wrapWidth <= 0 {
		wrapWidth = 80
	}
	if len(m.messages) == 0 {
		m.viewport.SetContent(normalStyle.Render("  Здесь пока нет сообщений. Начните разговор!"))
		return
	}

	self := m.state.Self().ID
	var content strings.Builder
	for i, message := range m.messages {
		if i > 0 {
			content.WriteString("\n")
		}

		marker := "  "
		if i == m.cursor {
			marker = selectedStyle.Render("› ")
		}
		header := messageHeaderStyle.Render(fmt.Sprintf("%s %s • %s", message.Avatar, message.Author, message.Timestamp.Format("15:04")))
		text := wordwrap.String(message.Content, wrapWidth-10)

		if message.AuthorID == self {
			right := lipgloss.NewStyle().Align(lipgloss.Right).Width(wrapWidth - 2)
			content.WriteString(marker + right.Render(header) + "\n")
			content.WriteString("  " + right.Render(messageFromMeStyle.Render(text)) + "\n")
		} else {
			content.WriteString(marker + header + "\n")
			content.WriteString("  " + messageFromOtherStyle.Render(text) + "\n")
		}

		if len(message.Reactions) > 0 {
			content.WriteString("  " + renderReactions(message.Reactions, self) + "\n")
		}
	}
	m.viewport.SetContent(content.String())
}

func renderReactions(reactions []models.Reaction, self string) string {
	parts := make([]string, len(reactions))
	for i, r := range reactions {
		label := fmt.Sprintf("%s %d", r.Emoji, r.Count)
		if r.HasUser(self) {
			parts[i] = myReactionStyle.Render("[" + label + "]")
		} else {
			parts[i] = reactionStyle.Render(" " + label + " ")
		}
	}
	return strings.Join(parts, " ")
}

func (m chatModel) title() string {
	if m.state.Router.View() == models.ViewServer {
		srv, _ := m.state.Router.Server()
		ch, _ := m.state.Router.Channel()
		return fmt.Sprintf("%s %s › #%s", srv.Icon, srv.Name, ch.Name)
	}
	if f, ok := m.state.Friends.Get(m.state.Router.DMFriendID()); ok {
		return fmt.Sprintf("%s @%s %s", f.Avatar, f.Name, statusDot(f.Status))
	}
	return "💬 Личные сообщения"
}

func (m chatModel) channelBar() string {
	current := m.state.Router.ChannelID()
	parts := make([]string, 0, len(m.state.Router.Channels()))
	for _, ch := range m.state.Router.Channels() {
		label := "# " + ch.Name
		if ch.Kind == models.ChannelVoice {
			label = "🔊 " + ch.Name
		}
		if ch.ID == current {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m chatModel) View() string {
	s := titleStyle.Render(m.title()) + "\n"
	if m.state.Router.View() == models.ViewServer {
		s += m.channelBar() + "\n"
	}

	s += m.viewport.View() + "\n"

	if peer := m.state.Convs.PeerTyping(m.key); peer != "" {
		s += messageHeaderStyle.Render(peer+" печатает...") + "\n"
	} else {
		s += "\n"
	}

	if m.err != nil {
		s += errorStyle.Render(describeError(m.err)) + "\n"
	}

	if m.composing {
		s += inputStyle.Render(m.input.View()) + "\n"
		s += helpStyle.Render("enter: отправить • esc: отмена")
		return s
	}

	help := "enter: написать • ↑↓/jk: сообщение • 1-6: реакция • esc: назад"
	if m.state.Router.View() == models.ViewServer {
		help += " • [ ]: канал • v: голосовой"
	} else {
		help += " • c: позвонить"
	}
	help += " • h/s/f/+/p: разделы • q: выход"
	return s + helpStyle.Render(help)
}
