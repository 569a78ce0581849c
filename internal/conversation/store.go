// Package conversation keeps the in-memory message lists for server
// channels and direct-message threads, their reactions and typing state.
package conversation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saravenpi/chorus/internal/models"
)

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrEmptyEmoji      = errors.New("emoji is empty")
	ErrMessageNotFound = errors.New("message not found")
)

// Key identifies a conversation: a server text channel or a DM thread.
type Key string

const dmPrefix = "dm:"

func ChannelKey(serverID, channelID string) Key {
	return Key("channel:" + serverID + "/" + channelID)
}

func DMKey(friendID string) Key {
	return Key(dmPrefix + friendID)
}

// FriendID returns the friend id of a DM key.
func (k Key) FriendID() (string, bool) {
	if !strings.HasPrefix(string(k), dmPrefix) {
		return "", false
	}
	return strings.TrimPrefix(string(k), dmPrefix), true
}

type Option func(*Store)

// WithClock overrides the time source used to stamp messages.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides message id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

type Store struct {
	now   func() time.Time
	newID func() string

	channels    map[Key][]models.Message
	threads     map[string]*models.DirectMessageThread
	threadOrder []string
	active      Key

	typing     bool
	peerTyping map[Key]string
}

func New(opts ...Option) *Store {
	s := &Store{
		now:        time.Now,
		newID:      uuid.NewString,
		channels:   make(map[Key][]models.Message),
		threads:    make(map[string]*models.DirectMessageThread),
		peerTyping: make(map[Key]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// messages returns the backing slice of a conversation, creating DM threads lazily.
func (s *Store) messages(k Key) []models.Message {
	if friendID, ok := k.FriendID(); ok {
		return s.ensureThread(friendID).Messages
	}
	return s.channels[k]
}

func (s *Store) commit(k Key, list []models.Message) {
	if friendID, ok := k.FriendID(); ok {
		s.ensureThread(friendID).Messages = list
		return
	}
	s.channels[k] = list
}

func (s *Store) ensureThread(friendID string) *models.DirectMessageThread {
	if t, ok := s.threads[friendID]; ok {
		return t
	}
	t := &models.DirectMessageThread{ID: s.newID(), FriendID: friendID}
	s.threads[friendID] = t
	s.threadOrder = append(s.threadOrder, friendID)
	return t
}

// lookup returns a conversation's backing slice without creating DM threads.
func (s *Store) lookup(k Key) []models.Message {
	if friendID, ok := k.FriendID(); ok {
		if t, ok := s.threads[friendID]; ok {
			return t.Messages
		}
		return nil
	}
	return s.channels[k]
}

// Messages returns a copy of the conversation's messages in order.
func (s *Store) Messages(k Key) []models.Message {
	var src []models.Message
	if friendID, ok := k.FriendID(); ok {
		t, ok := s.threads[friendID]
		if !ok {
			return nil
		}
		src = t.Messages
	} else {
		src = s.channels[k]
	}

	out := make([]models.Message, len(src))
	for i, m := range src {
		out[i] = cloneMessage(m)
	}
	return out
}

// Send appends a message authored by the local user.
func (s *Store) Send(k Key, text string, author models.Participant) (models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return models.Message{}, ErrEmptyMessage
	}

	msg := models.Message{
		ID:        s.newID(),
		Author:    author.Name,
		AuthorID:  author.ID,
		Avatar:    author.Avatar,
		Content:   text,
		Timestamp: s.now(),
	}
	list := s.messages(k)
	s.commit(k, append(list, msg))
	return msg, nil
}

// Deliver appends a message from someone else. A DM thread that is not the
// active conversation gains an unread message.
func (s *Store) Deliver(k Key, msg models.Message) models.Message {
	if msg.ID == "" {
		msg.ID = s.newID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}

	list := s.messages(k)
	s.commit(k, append(list, msg))

	if friendID, ok := k.FriendID(); ok && k != s.active {
		s.threads[friendID].UnreadCount++
	}
	return msg
}

// Seed replaces a conversation's messages without touching unread counters.
func (s *Store) Seed(k Key, msgs []models.Message) {
	list := make([]models.Message, len(msgs))
	for i, m := range msgs {
		list[i] = cloneMessage(m)
	}
	s.commit(k, list)
}

// SeedUnread fills a DM thread with messages the user has not seen yet.
func (s *Store) SeedUnread(friendID string, msgs []models.Message) {
	k := DMKey(friendID)
	s.Seed(k, msgs)
	if k != s.active {
		s.threads[friendID].UnreadCount = len(msgs)
	}
}

// Reset clears a conversation's message list.
func (s *Store) Reset(k Key) {
	s.commit(k, nil)
	delete(s.peerTyping, k)
}

// React toggles userID's reaction with emoji on a message and returns the
// message's reactions after the change.
func (s *Store) React(k Key, messageID, emoji, userID string) ([]models.Reaction, error) {
	if emoji == "" {
		return nil, ErrEmptyEmoji
	}

	list := s.lookup(k)
	idx := -1
	for i := range list {
		if list[i].ID == messageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
	}

	list[idx].Reactions = toggleReaction(list[idx].Reactions, emoji, userID)
	s.commit(k, list)
	return cloneReactions(list[idx].Reactions), nil
}

func toggleReaction(reactions []models.Reaction, emoji, userID string) []models.Reaction {
	for i, r := range reactions {
		if r.Emoji != emoji {
			continue
		}

		if !r.HasUser(userID) {
			reactions[i].Users = append(r.Users, userID)
			reactions[i].Count = len(reactions[i].Users)
			return reactions
		}

		users := make([]string, 0, len(r.Users))
		for _, u := range r.Users {
			if u != userID {
				users = append(users, u)
			}
		}
		if len(users) == 0 {
			reactions = append(reactions[:i], reactions[i+1:]...)
			if len(reactions) == 0 {
				return nil
			}
			return reactions
		}
		reactions[i].Users = users
		reactions[i].Count = len(users)
		return reactions
	}

	return append(reactions, models.Reaction{Emoji: emoji, Count: 1, Users: []string{userID}})
}

// OpenThread makes the friend's DM thread the active conversation, creating
// it when needed.
func (s *Store) OpenThread(friendID string) models.DirectMessageThread {
	s.ensureThread(friendID)
	s.SetActive(DMKey(friendID))
	return s.cloneThread(s.threads[friendID])
}

func (s *Store) Thread(friendID string) (models.DirectMessageThread, bool) {
	t, ok := s.threads[friendID]
	if !ok {
		return models.DirectMessageThread{}, false
	}
	return s.cloneThread(t), true
}

// Threads lists DM threads in creation order.
func (s *Store) Threads() []models.DirectMessageThread {
	out := make([]models.DirectMessageThread, 0, len(s.threadOrder))
	for _, id := range s.threadOrder {
		out = append(out, s.cloneThread(s.threads[id]))
	}
	return out
}

// SetActive records the conversation currently on screen. Activating a DM
// thread marks it read.
func (s *Store) SetActive(k Key) {
	s.active = k
	if friendID, ok := k.FriendID(); ok {
		if t, ok := s.threads[friendID]; ok {
			t.UnreadCount = 0
		}
	}
}

func (s *Store) Active() Key {
	return s.active
}

func (s *Store) SetTyping(typing bool) { s.typing = typing }
func (s *Store) Typing() bool          { return s.typing }

// SetPeerTyping announces name as typing in k. An empty name clears it.
func (s *Store) SetPeerTyping(k Key, name string) {
	if name == "" {
		delete(s.peerTyping, k)
		return
	}
	s.peerTyping[k] = name
}

func (s *Store) PeerTyping(k Key) string {
	return s.peerTyping[k]
}

func (s *Store) cloneThread(t *models.DirectMessageThread) models.DirectMessageThread {
	out := *t
	out.Messages = make([]models.Message, len(t.Messages))
	for i, m := range t.Messages {
		out.Messages[i] = cloneMessage(m)
	}
	return out
}

func cloneMessage(m models.Message) models.Message {
	m.Reactions = cloneReactions(m.Reactions)
	return m
}

func cloneReactions(rs []models.Reaction) []models.Reaction {
	if rs == nil {
		return nil
	}
	out := make([]models.Reaction, len(rs))
	for i, r := range rs {
		r.Users = append([]string(nil), r.Users...)
		out[i] = r
	}
	return out
}
