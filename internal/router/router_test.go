package router

import (
	"testing"

	"github.com/saravenpi/chorus/internal/conversation"
	"github.com/saravenpi/chorus/internal/mock"
	"github.com/saravenpi/chorus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var me = models.Participant{ID: "me", Name: "Юра"}

func newTestRouter() (*Router, *conversation.Store) {
	store := conversation.New()
	return New(mock.Directory{}, store), store
}

func TestNewStartsOnHome(t *testing.T) {
	r, _ := newTestRouter()
	assert.Equal(t, models.ViewDirectMessages, r.View())
	assert.Equal(t, "1", r.ServerID())
	assert.Equal(t, "general", r.ChannelID())
	assert.Empty(t, r.ActiveConversation())
}

func TestSelectServer(t *testing.T) {
	r, _ := newTestRouter()

	require.NoError(t, r.SelectServer("2"))
	assert.Equal(t, models.ViewServer, r.View())
	assert.Equal(t, "2", r.ServerID())
	assert.Equal(t, conversation.ChannelKey("2", "general"), r.ActiveConversation())

	server, ok := r.Server()
	require.True(t, ok)
	assert.Equal(t, "Космические Путники", server.Name)

	err := r.SelectServer("404")
	assert.ErrorIs(t, err, ErrUnknownServer)
	assert.Equal(t, "2", r.ServerID())
}

func TestSelectChannelClearsMessages(t *testing.T) {
	r, store := newTestRouter()
	require.NoError(t, r.SelectServer("1"))

	k := conversation.ChannelKey("1", "random")
	_, err := store.Send(k, "old", me)
	require.NoError(t, err)

	require.NoError(t, r.SelectChannel("random"))
	assert.Equal(t, "random", r.ChannelID())
	assert.Equal(t, k, r.ActiveConversation())
	assert.Equal(t, k, store.Active())
	assert.Empty(t, store.Messages(k))
}

func TestSelectChannelRejectsVoiceAndUnknown(t *testing.T) {
	r, _ := newTestRouter()
	require.NoError(t, r.SelectServer("1"))

	assert.ErrorIs(t, r.SelectChannel("voice-1"), ErrVoiceChannel)
	assert.ErrorIs(t, r.SelectChannel("nope"), ErrUnknownChannel)
	assert.Equal(t, "general", r.ChannelID())
}

func TestOpenDMTwice(t *testing.T) {
	r, store := newTestRouter()
	store.SeedUnread("2", []models.Message{{ID: "a"}})

	first := r.OpenDM("2")
	second := r.OpenDM("2")

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 0, second.UnreadCount)
	assert.Len(t, store.Threads(), 1)
	assert.Equal(t, models.ViewDirectMessages, r.View())
	assert.Equal(t, conversation.DMKey("2"), r.ActiveConversation())
}

func TestShow(t *testing.T) {
	r, store := newTestRouter()
	r.OpenDM("1")

	for _, v := range []models.View{models.ViewFriends, models.ViewAddFriend, models.ViewProfile} {
		require.NoError(t, r.Show(v))
		assert.Equal(t, v, r.View())
		assert.Empty(t, r.ActiveConversation())
		assert.Empty(t, store.Active())
	}

	require.NoError(t, r.Show(models.ViewDirectMessages))
	assert.Equal(t, conversation.DMKey("1"), r.ActiveConversation())

	r.CloseDM()
	assert.Empty(t, r.ActiveConversation())

	assert.ErrorIs(t, r.Show("settings"), ErrUnknownView)
}

func TestReturningToDMMarksRead(t *testing.T) {
	r, store := newTestRouter()
	r.OpenDM("3")
	require.NoError(t, r.Show(models.ViewFriends))

	store.Deliver(conversation.DMKey("3"), models.Message{Content: "эй"})
	thread, _ := store.Thread("3")
	assert.Equal(t, 1, thread.UnreadCount)

	require.NoError(t, r.Show(models.ViewDirectMessages))
	thread, _ = store.Thread("3")
	assert.Equal(t, 0, thread.UnreadCount)
}
