package ui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/saravenpi/chorus/internal/auth"
	"github.com/saravenpi/chorus/internal/client"
	"github.com/saravenpi/chorus/internal/conversation"
	"github.com/saravenpi/chorus/internal/models"
	"github.com/saravenpi/chorus/internal/scheduler"
	"github.com/saravenpi/chorus/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, opts ...AppOption) (App, *client.State, *fakeAuth) {
	t.Helper()
	state := client.New(client.Profile{
		Username:      "Юра",
		Discriminator: "1337",
		Avatar:        "👨‍🚀",
		Status:        models.StatusOnline,
	}, client.WithSeed(1))
	t.Cleanup(state.Shutdown)

	fa := &fakeAuth{}
	app := NewApp(state, fa, opts...)
	app = update(t, app, tea.WindowSizeMsg{Width: 100, Height: 40})
	return app, state, fa
}

func update(t *testing.T, app App, msg tea.Msg) App {
	t.Helper()
	app, _ = updateCmd(t, app, msg)
	return app
}

func updateCmd(t *testing.T, app App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	model, cmd := app.Update(msg)
	next, ok := model.(App)
	require.True(t, ok)
	return next, cmd
}

func TestAppStartsOnHome(t *testing.T) {
	app, state, _ := newTestApp(t)
	assert.IsType(t, homeModel{}, app.screen)
	assert.Equal(t, models.ViewDirectMessages, state.Router.View())
	assert.Contains(t, app.View(), "GamerPro")
}

func TestHomeUsesStateClock(t *testing.T) {
	fixed := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)
	state := client.New(client.Profile{Username: "Юра", Discriminator: "1337"},
		client.WithSeed(1),
		client.WithClock(func() time.Time { return fixed }),
	)
	t.Cleanup(state.Shutdown)

	app := update(t, NewApp(state, &fakeAuth{}), tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Contains(t, app.View(), "18 мин назад")
}

func TestGlobalNavigation(t *testing.T) {
	app, state, _ := newTestApp(t)

	app = update(t, app, keyRunes("s"))
	assert.Equal(t, models.ViewServer, state.Router.View())
	assert.Equal(t, "1", state.Router.ServerID())
	assert.IsType(t, chatModel{}, app.screen)

	app = update(t, app, keyRunes("s"))
	assert.Equal(t, "2", state.Router.ServerID())

	app = update(t, app, keyRunes("f"))
	assert.IsType(t, friendsModel{}, app.screen)

	app = update(t, app, keyRunes("+"))
	assert.IsType(t, addFriendModel{}, app.screen)

	app = update(t, app, keyEsc)
	assert.Equal(t, models.ViewFriends, state.Router.View())

	app = update(t, app, keyRunes("p"))
	assert.IsType(t, profileModel{}, app.screen)

	app = update(t, app, keyRunes("h"))
	assert.IsType(t, homeModel{}, app.screen)
}

func TestEnterSendsAndClearsInput(t *testing.T) {
	app, state, _ := newTestApp(t)
	app = update(t, app, keyRunes("s"))
	k := state.Active()
	before := len(state.Convs.Messages(k))

	app = update(t, app, keyEnter)
	require.True(t, app.screen.capturing())

	app = update(t, app, keyRunes("привет"))
	assert.True(t, state.Convs.Typing())
	chat := app.screen.(chatModel)
	assert.Equal(t, "привет", chat.input.Value())

	app, cmd := updateCmd(t, app, keyEnter)
	assert.NotNil(t, cmd)
	chat = app.screen.(chatModel)
	assert.Empty(t, chat.input.Value())

	msgs := state.Convs.Messages(k)
	require.Len(t, msgs, before+1)
	assert.Equal(t, "привет", msgs[len(msgs)-1].Content)

	var reply scheduler.Task
	for _, task := range state.Tasks.Pending(string(k)) {
		if task.Delay == client.DefaultTimings().ReplyDelay {
			reply = task
		}
	}
	require.NotZero(t, reply.ID)

	app = update(t, app, scheduler.FiredMsg{ID: reply.ID})
	assert.Len(t, state.Convs.Messages(k), before+2)
	assert.Len(t, app.screen.(chatModel).messages, before+2)
}

func TestEnterOnEmptyInputSendsNothing(t *testing.T) {
	app, state, _ := newTestApp(t)
	app = update(t, app, keyRunes("s"))
	k := state.Active()
	before := len(state.Convs.Messages(k))

	app = update(t, app, keyEnter)
	app = update(t, app, keyRunes("   "))
	app = update(t, app, keyEnter)

	assert.Len(t, state.Convs.Messages(k), before)
	assert.True(t, app.screen.capturing())
}

func TestReactionKeys(t *testing.T) {
	app, state, _ := newTestApp(t)
	app = update(t, app, keyRunes("s"))
	k := state.Active()

	app = update(t, app, keyRunes("1"))
	msgs := state.Convs.Messages(k)
	last := msgs[len(msgs)-1]
	require.Len(t, last.Reactions, 1)
	assert.Equal(t, "👍", last.Reactions[0].Emoji)
	assert.Contains(t, app.View(), "👍 1")

	update(t, app, keyRunes("1"))
	msgs = state.Convs.Messages(k)
	assert.Empty(t, msgs[len(msgs)-1].Reactions)
}

func TestChannelSwitchingClearsMessages(t *testing.T) {
	app, state, _ := newTestApp(t)
	app = update(t, app, keyRunes("s"))

	app = update(t, app, keyRunes("]"))
	assert.Equal(t, "random", state.Router.ChannelID())
	chat := app.screen.(chatModel)
	assert.Equal(t, conversation.ChannelKey("1", "random"), chat.key)

	update(t, app, keyRunes("["))
	assert.Equal(t, "general", state.Router.ChannelID())
	assert.Empty(t, state.Convs.Messages(conversation.ChannelKey("1", "general")))
}

func TestVoiceChannelShowsCallBar(t *testing.T) {
	app, state, _ := newTestApp(t)
	app = update(t, app, keyRunes("s"))

	app, cmd := updateCmd(t, app, keyRunes("v"))
	require.True(t, state.Presence.InCall())
	assert.NotNil(t, cmd)
	assert.Contains(t, app.View(), "Голосовой 1")

	app = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlO})
	call, _ := state.Presence.Call()
	assert.True(t, call.Muted)

	app = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlE})
	assert.False(t, state.Presence.InCall())
	assert.NotContains(t, app.View(), "ctrl+e")
}

func TestCallFromFriendsWhileInCall(t *testing.T) {
	app, state, _ := newTestApp(t)
	app = update(t, app, keyRunes("f"))

	app = update(t, app, keyRunes("c"))
	require.True(t, state.Presence.InCall())
	first, _ := state.Presence.Call()

	app = update(t, app, keyRunes("j"))
	app = update(t, app, keyRunes("c"))
	call, _ := state.Presence.Call()
	assert.Equal(t, first.PeerID, call.PeerID)
	assert.Contains(t, app.View(), "Вы уже в звонке")
}

func TestOpenDMFromHomeResetsUnread(t *testing.T) {
	app, state, _ := newTestApp(t)
	assert.Contains(t, app.View(), "(2)")

	app = update(t, app, keyRunes("j"))
	app = update(t, app, keyEnter)
	assert.Equal(t, "2", state.Router.DMFriendID())
	assert.IsType(t, chatModel{}, app.screen)

	thread, ok := state.Convs.Thread("2")
	require.True(t, ok)
	assert.Zero(t, thread.UnreadCount)

	app = update(t, app, keyEsc)
	assert.IsType(t, homeModel{}, app.screen)
	assert.NotContains(t, app.View(), "(2)")
}

func TestAddFriendScreen(t *testing.T) {
	app, state, _ := newTestApp(t)
	app = update(t, app, keyRunes("+"))

	app = update(t, app, keyRunes("Юра#1337"))
	app = update(t, app, keyEnter)
	assert.Contains(t, app.View(), "Нельзя добавить себя в друзья")

	app = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlU})
	app = update(t, app, keyRunes("bad"))
	app = update(t, app, keyEnter)
	assert.Contains(t, app.View(), "Неверный формат кода")

	app = update(t, app, tea.KeyMsg{Type: tea.KeyCtrlU})
	app = update(t, app, keyRunes("Newbie#0101"))
	app = update(t, app, keyEnter)
	assert.Contains(t, app.View(), "Добавлен в друзья: Newbie#0101")
	_, total := state.Friends.Counts()
	assert.Equal(t, 5, total)
}

func TestAuthPromptOnStart(t *testing.T) {
	app, _, _ := newTestApp(t, WithAuthPrompt(true))

	var opened bool
	for _, msg := range collect(app.Init()) {
		if _, ok := msg.(openAuthMsg); ok {
			opened = true
		}
	}
	assert.True(t, opened)

	app = update(t, app, openAuthMsg{})
	require.NotNil(t, app.modal)
	assert.Contains(t, app.View(), "Регистрация")
}

func TestSignInThroughModalRemembersSession(t *testing.T) {
	store := session.FileStore{Path: filepath.Join(t.TempDir(), "session.yml")}
	app, state, fa := newTestApp(t, WithSessions(store))
	fa.result = &auth.Result{User: models.User{ID: 7, Username: "pilot", Discriminator: "0042"}, Token: "tok"}

	app = update(t, app, keyRunes("p"))
	app, cmd := updateCmd(t, app, keyRunes("l"))
	for _, msg := range collect(cmd) {
		app = update(t, app, msg)
	}
	require.NotNil(t, app.modal)

	app = update(t, app, keyRunes("pilot@example.com"))
	app = update(t, app, keyTab)
	app = update(t, app, keyRunes("secret"))
	app, cmd = updateCmd(t, app, keyEnter)

	res := findAuthResult(t, cmd)
	app = update(t, app, res)
	assert.Nil(t, app.modal)
	assert.True(t, state.SignedIn())
	assert.Equal(t, "pilot#0042", state.SelfCode())

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, state.Token(), saved.Token)
	assert.Equal(t, "tok", saved.Token)
	assert.Equal(t, int64(7), saved.User.ID)
	assert.Equal(t, "0042", saved.User.Discriminator)

	app, cmd = updateCmd(t, app, keyRunes("o"))
	for _, msg := range collect(cmd) {
		app = update(t, app, msg)
	}
	assert.False(t, state.SignedIn())
	_, err = store.Load()
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.True(t, strings.Contains(app.View(), "Гостевой режим"))
}

func TestLateAuthResultIgnored(t *testing.T) {
	app, state, fa := newTestApp(t)
	fa.result = &auth.Result{User: models.User{ID: 7, Username: "pilot"}, Token: "tok"}

	app = update(t, app, openAuthMsg{})
	require.NotNil(t, app.modal)
	app = update(t, app, keyRunes("pilot@example.com"))
	app = update(t, app, keyTab)
	app = update(t, app, keyRunes("secret"))
	app, cmd := updateCmd(t, app, keyEnter)
	res := findAuthResult(t, cmd)

	app = update(t, app, keyEsc)
	require.Nil(t, app.modal)

	app = update(t, app, res)
	assert.Nil(t, app.modal)
	assert.False(t, state.SignedIn())
}

func TestQuitCancelsTasks(t *testing.T) {
	app, state, _ := newTestApp(t)
	app = update(t, app, keyRunes("s"))
	app = update(t, app, keyEnter)
	app = update(t, app, keyRunes("hi"))
	app = update(t, app, keyEnter)
	require.NotEmpty(t, state.Tasks.Pending(""))

	_, cmd := updateCmd(t, app, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, state.Tasks.Pending(""))
}

func TestFormatElapsed(t *testing.T) {
	tests := map[int]string{0: "00:00", 65: "01:05", 3725: "1:02:05"}
	for secs, want := range tests {
		assert.Equal(t, want, formatElapsed(time.Duration(secs)*time.Second))
	}
}
