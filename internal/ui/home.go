package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/saravenpi/chorus/internal/client"
	"github.com/saravenpi/chorus/internal/friends"
	"github.com/saravenpi/chorus/internal/models"
)

type friendItem struct {
	friend models.Friend
	unread int
	last   *models.Message
	now    time.Time
}

func (i friendItem) FilterValue() string { return i.friend.Name }
func (i friendItem) Title() string {
	title := fmt.Sprintf("%s %s %s", statusDot(i.friend.Status), i.friend.Avatar, i.friend.Name)
	if i.unread > 0 {
		title += errorStyle.Render(fmt.Sprintf("  (%d)", i.unread))
	}
	return title
}
func (i friendItem) Description() string {
	if i.last != nil {
		preview := []rune(i.last.Content)
		if len(preview) > 50 {
			preview = append(preview[:47], []rune("...")...)
		}
		return fmt.Sprintf("%s • %s", formatTimeAgo(i.last.Timestamp, i.now), string(preview))
	}
	if i.friend.Activity != "" {
		return i.friend.Activity
	}
	return statusLabel(i.friend.Status)
}

func newFriendList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("5")).
		Bold(true)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("8"))

	l := list.New([]list.Item{}, delegate, 80, 20)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

func formatTimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "давно"
	}

	duration := now.Sub(t)
	switch {
	case duration < time.Minute:
		return "только что"
	case duration < time.Hour:
		return fmt.Sprintf("%d мин назад", int(duration.Minutes()))
	case duration < 24*time.Hour:
		return fmt.Sprintf("%d ч назад", int(duration.Hours()))
	case duration < 48*time.Hour:
		return "вчера"
	case duration < 7*24*time.Hour:
		return fmt.Sprintf("%d дн назад", int(duration.Hours()/24))
	}
	return t.Format("02.01")
}

// homeModel is the direct-messages home: every friend with their unread count.
type homeModel struct {
	state        *client.State
	list         list.Model
	windowWidth  int
	windowHeight int
}

func newHomeModel(state *client.State) homeModel {
	m := homeModel{
		state:        state,
		list:         newFriendList("💬 Личные сообщения"),
		windowWidth:  80,
		windowHeight: 30,
	}
	m.load()
	return m
}

func (m *homeModel) load() {
	threads := make(map[string]models.DirectMessageThread)
	for _, t := range m.state.Convs.Threads() {
		threads[t.FriendID] = t
	}

	now := m.state.Now()
	all := m.state.Friends.List(friends.FilterAll)
	items := make([]list.Item, len(all))
	for i, f := range all {
		item := friendItem{friend: f, now: now}
		if t, ok := threads[f.ID]; ok {
			item.unread = t.UnreadCount
			if n := len(t.Messages); n > 0 {
				item.last = &t.Messages[n-1]
			}
		}
		items[i] = item
	}
	m.list.SetItems(items)
}

func (m homeModel) Init() tea.Cmd {
	return nil
}

func (m homeModel) capturing() bool {
	return false
}

func (m homeModel) resize(width, height int) screen {
	m.windowWidth = width
	m.windowHeight = height
	m.list.SetWidth(width)
	m.list.SetHeight(height - 2)
	return m
}

func (m homeModel) refresh() screen {
	m.load()
	return m
}

func (m homeModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "enter" {
		item, ok := m.list.SelectedItem().(friendItem)
		if !ok {
			return m, nil
		}
		if _, err := m.state.OpenDM(item.friend.ID); err != nil {
			return m, notice(err.Error())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m homeModel) View() string {
	s := m.list.View() + "\n"
	s += helpStyle.Render("↑↓/jk: выбрать • enter: открыть чат • s: серверы • f: друзья • +: добавить • p: профиль • q: выход")
	return s
}
