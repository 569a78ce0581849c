// Package router tracks which view is on screen and which server, channel
// or direct-message thread is selected.
package router

import (
	"errors"
	"fmt"

	"github.com/saravenpi/chorus/internal/conversation"
	"github.com/saravenpi/chorus/internal/models"
)

var (
	ErrUnknownServer  = errors.New("unknown server")
	ErrUnknownChannel = errors.New("unknown channel")
	ErrVoiceChannel   = errors.New("voice channels have no message list")
	ErrUnknownView    = errors.New("unknown view")
)

// Conversations is the part of the conversation store the router drives.
type Conversations interface {
	Reset(k conversation.Key)
	OpenThread(friendID string) models.DirectMessageThread
	SetActive(k conversation.Key)
}

// Directory resolves servers and their channels.
type Directory interface {
	Servers() []models.Server
	Channels(serverID string) []models.Channel
}

type Router struct {
	dir   Directory
	convs Conversations

	view      models.View
	serverID  string
	channelID string
	dmFriend  string
}

// New starts on the direct-messages home view with the first server and its
// first text channel preselected.
func New(dir Directory, convs Conversations) *Router {
	r := &Router{dir: dir, convs: convs, view: models.ViewDirectMessages}
	if servers := dir.Servers(); len(servers) > 0 {
		r.serverID = servers[0].ID
		r.channelID = firstTextChannel(dir.Channels(r.serverID))
	}
	return r
}

func (r *Router) View() models.View  { return r.view }
func (r *Router) ServerID() string   { return r.serverID }
func (r *Router) ChannelID() string  { return r.channelID }
func (r *Router) DMFriendID() string { return r.dmFriend }

func (r *Router) Servers() []models.Server {
	return r.dir.Servers()
}

// Channels lists the channels of the selected server.
func (r *Router) Channels() []models.Channel {
	if r.serverID == "" {
		return nil
	}
	return r.dir.Channels(r.serverID)
}

func (r *Router) Server() (models.Server, bool) {
	for _, s := range r.dir.Servers() {
		if s.ID == r.serverID {
			return s, true
		}
	}
	return models.Server{}, false
}

func (r *Router) Channel() (models.Channel, bool) {
	return r.findChannel(r.serverID, r.channelID)
}

// ActiveConversation returns the conversation the current view shows, or ""
// when the view shows none.
func (r *Router) ActiveConversation() conversation.Key {
	switch r.view {
	case models.ViewServer:
		if r.serverID != "" && r.channelID != "" {
			return conversation.ChannelKey(r.serverID, r.channelID)
		}
	case models.ViewDirectMessages:
		if r.dmFriend != "" {
			return conversation.DMKey(r.dmFriend)
		}
	}
	return ""
}

// SelectServer switches to the server view. The selected channel is kept when
// the server has it, otherwise the server's first text channel is selected.
func (r *Router) SelectServer(id string) error {
	found := false
	for _, s := range r.dir.Servers() {
		if s.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownServer, id)
	}

	r.view = models.ViewServer
	r.serverID = id
	if _, ok := r.findChannel(id, r.channelID); !ok {
		r.channelID = firstTextChannel(r.dir.Channels(id))
	}
	r.sync()
	return nil
}

// SelectChannel selects a text channel of the current server and clears its
// message list.
func (r *Router) SelectChannel(id string) error {
	ch, ok := r.findChannel(r.serverID, id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChannel, id)
	}
	if ch.Kind == models.ChannelVoice {
		return fmt.Errorf("%w: %s", ErrVoiceChannel, id)
	}

	r.view = models.ViewServer
	r.channelID = id
	k := conversation.ChannelKey(r.serverID, id)
	r.convs.Reset(k)
	r.convs.SetActive(k)
	return nil
}

// OpenDM shows the direct-message thread with a friend, reusing an existing
// thread or creating an empty one.
func (r *Router) OpenDM(friendID string) models.DirectMessageThread {
	r.view = models.ViewDirectMessages
	r.dmFriend = friendID
	return r.convs.OpenThread(friendID)
}

// Show switches to a view without changing any selection.
func (r *Router) Show(view models.View) error {
	switch view {
	case models.ViewDirectMessages, models.ViewServer, models.ViewFriends, models.ViewAddFriend, models.ViewProfile:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	r.view = view
	r.sync()
	return nil
}

// CloseDM leaves the direct-messages view without a thread selected.
func (r *Router) CloseDM() {
	r.dmFriend = ""
	r.sync()
}

func (r *Router) sync() {
	r.convs.SetActive(r.ActiveConversation())
}

func (r *Router) findChannel(serverID, channelID string) (models.Channel, bool) {
	if serverID == "" || channelID == "" {
		return models.Channel{}, false
	}
	for _, ch := range r.dir.Channels(serverID) {
		if ch.ID == channelID {
			return ch, true
		}
	}
	return models.Channel{}, false
}

func firstTextChannel(channels []models.Channel) string {
	for _, ch := range channels {
		if ch.Kind == models.ChannelText {
			return ch.ID
		}
	}
	return ""
}
