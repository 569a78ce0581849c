package ui

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/saravenpi/chorus/internal/client"
	"github.com/saravenpi/chorus/internal/friends"
	"github.com/saravenpi/chorus/internal/models"
)

type friendsModel struct {
	state         *client.State
	list          list.Model
	search        textinput.Model
	searching     bool
	filter        friends.Filter
	confirmRemove *models.Friend
	err           error
	windowWidth   int
	windowHeight  int
}

func newFriendsModel(state *client.State) friendsModel {
	search := textinput.New()
	search.Placeholder = "Поиск друзей"
	search.Prompt = "🔍 "
	search.CharLimit = 32

	m := friendsModel{
		state:        state,
		list:         newFriendList("👥 Друзья"),
		search:       search,
		windowWidth:  80,
		windowHeight: 30,
	}
	m.load()
	return m
}

func (m *friendsModel) load() {
	found := m.state.Friends.Search(m.search.Value(), m.filter)
	items := make([]list.Item, len(found))
	for i, f := range found {
		items[i] = friendItem{friend: f}
	}
	m.list.SetItems(items)

	online, total := m.state.Friends.Counts()
	if m.filter == friends.FilterOnline {
		m.list.Title = fmt.Sprintf("👥 Друзья • В сети — %d", online)
	} else {
		m.list.Title = fmt.Sprintf("👥 Друзья • Все — %d", total)
	}
}

func (m friendsModel) Init() tea.Cmd {
	return nil
}

func (m friendsModel) capturing() bool {
	return m.searching || m.confirmRemove != nil
}

func (m friendsModel) resize(width, height int) screen {
	m.windowWidth = width
	m.windowHeight = height
	m.list.SetWidth(width)
	m.list.SetHeight(height - 4)
	return m
}

func (m friendsModel) refresh() screen {
	m.load()
	return m
}

func (m friendsModel) selected() (models.Friend, bool) {
	item, ok := m.list.SelectedItem().(friendItem)
	return item.friend, ok
}

func (m friendsModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.searching {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	if m.confirmRemove != nil {
		switch keyMsg.String() {
		case "y", "Y":
			f := *m.confirmRemove
			m.confirmRemove = nil
			m.err = m.state.RemoveFriend(f.ID)
			m.load()
			if m.err == nil {
				return m, notice(fmt.Sprintf("%s удалён из друзей", f.Name))
			}
		default:
			m.confirmRemove = nil
		}
		return m, nil
	}

	if m.searching {
		switch keyMsg.String() {
		case "esc":
			m.searching = false
			m.search.Reset()
			m.search.Blur()
			m.load()
			return m, nil
		case "enter", "down", "up":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.load()
		return m, cmd
	}

	m.err = nil
	switch keyMsg.String() {
	case "/":
		m.searching = true
		return m, m.search.Focus()

	case "tab":
		if m.filter == friends.FilterAll {
			m.filter = friends.FilterOnline
		} else {
			m.filter = friends.FilterAll
		}
		m.load()
		return m, nil

	case "enter":
		if f, ok := m.selected(); ok {
			_, m.err = m.state.OpenDM(f.ID)
		}
		return m, nil

	case "c":
		if f, ok := m.selected(); ok {
			m.err = m.state.StartCall(f.ID, f.Name)
		}
		return m, nil

	case "x":
		if f, ok := m.selected(); ok {
			m.confirmRemove = &f
		}
		return m, nil

	case "y":
		if f, ok := m.selected(); ok {
			if err := clipboard.WriteAll(f.Code()); err != nil {
				m.err = fmt.Errorf("failed to copy friend code: %w", err)
				return m, nil
			}
			return m, notice("Скопировано: " + f.Code())
		}
		return m, nil

	case "esc":
		m.err = m.state.Show(models.ViewDirectMessages)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m friendsModel) View() string {
	s := ""
	if m.searching || m.search.Value() != "" {
		s += m.search.View() + "\n"
	}
	s += m.list.View() + "\n"

	if m.err != nil {
		s += errorStyle.Render(describeError(m.err)) + "\n"
	}

	switch {
	case m.confirmRemove != nil:
		s += errorStyle.Render(fmt.Sprintf("Удалить %s из друзей? (y/n)", m.confirmRemove.Name))
	case m.searching:
		s += helpStyle.Render("enter: готово • esc: сбросить поиск")
	default:
		s += helpStyle.Render("↑↓/jk: выбрать • enter: написать • c: позвонить • x: удалить • y: копировать код • /: поиск • tab: все/в сети • esc: назад")
	}
	return s
}

// addFriendModel asks for a Username#0000 code.
type addFriendModel struct {
	state        *client.State
	input        textinput.Model
	err          error
	added        string
	windowWidth  int
	windowHeight int
}

func newAddFriendModel(state *client.State) addFriendModel {
	ti := textinput.New()
	ti.Placeholder = "Username#0000"
	ti.CharLimit = 37
	ti.Width = 40
	ti.Focus()

	return addFriendModel{
		state:        state,
		input:        ti,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m addFriendModel) Init() tea.Cmd {
	return textinput.Blink
}

// The code field always has focus.
func (m addFriendModel) capturing() bool {
	return true
}

func (m addFriendModel) resize(width, height int) screen {
	m.windowWidth = width
	m.windowHeight = height
	return m
}

func (m addFriendModel) refresh() screen {
	return m
}

func (m addFriendModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.err = m.state.Show(models.ViewFriends)
			return m, nil
		case "enter":
			f, err := m.state.AddFriend(m.input.Value())
			if err != nil {
				m.err = err
				m.added = ""
				return m, nil
			}
			m.err = nil
			m.added = f.Code()
			m.input.Reset()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m addFriendModel) View() string {
	s := titleStyle.Render("➕ Добавить в друзья") + "\n"
	s += normalStyle.Render("Введите код друга в формате Username#0000.") + "\n"
	s += normalStyle.Render("Ваш код: ") + statusStyle.Render(m.state.SelfCode()) + "\n\n"
	s += inputStyle.Render(m.input.View()) + "\n\n"

	switch {
	case m.err != nil:
		s += errorStyle.Render(m.err.Error()) + "\n"
	case m.added != "":
		s += statusStyle.Render("Добавлен в друзья: "+m.added) + "\n"
	}

	s += helpStyle.Render("enter: добавить • esc: назад")
	return s
}
