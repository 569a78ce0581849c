// Package client holds the state container shared by every screen: the
// view router, conversations, presence, friends and the task scheduler.
// All methods run on the Bubble Tea event loop.
package client

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/saravenpi/chorus/internal/conversation"
	"github.com/saravenpi/chorus/internal/friends"
	"github.com/saravenpi/chorus/internal/mock"
	"github.com/saravenpi/chorus/internal/models"
	"github.com/saravenpi/chorus/internal/presence"
	"github.com/saravenpi/chorus/internal/router"
	"github.com/saravenpi/chorus/internal/scheduler"
)

// GuestID identifies the local user before sign-in.
const GuestID = "me"

var ErrNoConversation = errors.New("no conversation on screen")

// Rand picks synthetic replies and authors.
type Rand interface {
	IntN(n int) int
}

// Timings are the delays of the simulated chat activity.
type Timings struct {
	ReplyDelay         time.Duration
	TypingIdle         time.Duration
	PeerTypingDelay    time.Duration
	PeerTypingDuration time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		ReplyDelay:         1500 * time.Millisecond,
		TypingIdle:         time.Second,
		PeerTypingDelay:    500 * time.Millisecond,
		PeerTypingDuration: 2 * time.Second,
	}
}

// Profile is the guest identity shown until sign-in.
type Profile struct {
	Username      string
	Discriminator string
	Avatar        string
	Status        models.Status
}

type Option func(*State)

// WithRand replaces the random source used to pick replies and authors.
func WithRand(r Rand) Option {
	return func(s *State) { s.rng = r }
}

// WithPool replaces the synthetic reply pool.
func WithPool(p mock.Pool) Option {
	return func(s *State) { s.pool = p }
}

func WithTimings(t Timings) Option {
	return func(s *State) { s.timings = t }
}

func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *State) { s.log = l }
}

// WithSeed seeds the default random source so replies repeat across runs.
func WithSeed(seed uint64) Option {
	return func(s *State) { s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// task payloads
type (
	replyTask       struct{}
	typingIdleTask  struct{}
	peerTypingStart struct{}
	peerTypingClear struct{}
)

type State struct {
	Router   *router.Router
	Convs    *conversation.Store
	Presence *presence.Simulator
	Friends  *friends.Directory
	Tasks    *scheduler.Scheduler

	dir     mock.Directory
	rng     Rand
	pool    mock.Pool
	timings Timings
	now     func() time.Time
	log     zerolog.Logger

	guest Profile
	user  *models.User
	token string

	typingIdle scheduler.TaskID
}

func New(profile Profile, opts ...Option) *State {
	s := &State{
		pool:    mock.DefaultPool(),
		timings: DefaultTimings(),
		now:     time.Now,
		log:     zerolog.Nop(),
		guest:   profile,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(uint64(s.now().UnixNano()), 0))
	}

	s.Convs = conversation.New(conversation.WithClock(s.now))
	s.Presence = presence.New(profile.Status, s.now)
	s.Friends = friends.NewDirectory(mock.Friends())
	s.Tasks = scheduler.New()

	now := s.now()
	for _, srv := range s.dir.Servers() {
		for _, ch := range s.dir.Channels(srv.ID) {
			if seed := mock.ChannelSeed(srv.ID, ch.ID, now); seed != nil {
				s.Convs.Seed(conversation.ChannelKey(srv.ID, ch.ID), seed)
			}
		}
	}
	for friendID, msgs := range mock.UnreadSeed(now) {
		s.Convs.SeedUnread(friendID, msgs)
	}

	s.Router = router.New(s.dir, s.Convs)
	return s
}

// Self is the local user as a message author.
func (s *State) Self() models.Participant {
	if s.user != nil {
		return models.Participant{
			ID:     strconv.FormatInt(s.user.ID, 10),
			Name:   s.user.Username,
			Avatar: s.user.Avatar,
		}
	}
	return models.Participant{ID: GuestID, Name: s.guest.Username, Avatar: s.guest.Avatar}
}

// SelfCode is the local user's friend code.
func (s *State) SelfCode() string {
	if s.user != nil {
		return s.user.Username + "#" + s.user.Discriminator
	}
	return s.guest.Username + "#" + s.guest.Discriminator
}

func (s *State) User() (models.User, bool) {
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Now reads the state's clock.
func (s *State) Now() time.Time { return s.now() }

func (s *State) Token() string  { return s.token }
func (s *State) SignedIn() bool { return s.user != nil }

// SignIn replaces the guest identity with the user returned by the gateway.
func (s *State) SignIn(user models.User, token string) {
	s.user = &user
	s.token = token
	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("signed in")
}

func (s *State) SignOut() {
	if s.user != nil {
		s.log.Info().Int64("user_id", s.user.ID).Msg("signed out")
	}
	s.user = nil
	s.token = ""
}

// Active is the conversation on screen, or "" when the view shows none.
func (s *State) Active() conversation.Key {
	return s.Router.ActiveConversation()
}

// Send posts text to the conversation on screen and schedules a synthetic
// reply from a random participant.
func (s *State) Send(text string) (models.Message, tea.Cmd, error) {
	k := s.Active()
	if k == "" {
		return models.Message{}, nil, ErrNoConversation
	}

	msg, err := s.Convs.Send(k, text, s.Self())
	if err != nil {
		return models.Message{}, nil, err
	}
	s.log.Info().Str("conversation", string(k)).Str("message_id", msg.ID).Msg("message sent")

	_, cmd := s.Tasks.Schedule(string(k), s.timings.ReplyDelay, replyTask{})
	return msg, cmd, nil
}

// Keystroke marks the local user as typing. The flag clears after the idle
// delay with no further keystrokes. The first keystroke of a burst also
// makes a random peer start typing shortly after.
func (s *State) Keystroke() tea.Cmd {
	k := s.Active()
	if k == "" {
		return nil
	}

	var cmds []tea.Cmd
	if !s.Convs.Typing() {
		s.Convs.SetTyping(true)
		_, cmd := s.Tasks.Schedule(string(k), s.timings.PeerTypingDelay, peerTypingStart{})
		cmds = append(cmds, cmd)
	}

	s.Tasks.Cancel(s.typingIdle)
	id, cmd := s.Tasks.Schedule(string(k), s.timings.TypingIdle, typingIdleTask{})
	s.typingIdle = id
	cmds = append(cmds, cmd)

	return tea.Batch(cmds...)
}

// React toggles the local user's reaction on a message in the active conversation.
func (s *State) React(messageID, emoji string) ([]models.Reaction, error) {
	k := s.Active()
	if k == "" {
		return nil, ErrNoConversation
	}
	reactions, err := s.Convs.React(k, messageID, emoji, s.Self().ID)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("conversation", string(k)).Str("message_id", messageID).Str("emoji", emoji).Msg("reaction toggled")
	return reactions, nil
}

// HandleFired runs a fired task. It reports false for tasks that were
// cancelled in the meantime. The returned command schedules follow-ups.
func (s *State) HandleFired(msg scheduler.FiredMsg) (tea.Cmd, bool) {
	task, ok := s.Tasks.Fire(msg)
	if !ok {
		return nil, false
	}
	k := conversation.Key(task.Owner)

	switch task.Payload.(type) {
	case replyTask:
		s.deliverReply(k)
	case typingIdleTask:
		s.Convs.SetTyping(false)
		s.typingIdle = 0
	case peerTypingStart:
		peer, ok := s.pickParticipant()
		if !ok {
			return nil, true
		}
		s.Convs.SetPeerTyping(k, peer.Name)
		_, cmd := s.Tasks.Schedule(task.Owner, s.timings.PeerTypingDuration, peerTypingClear{})
		return cmd, true
	case peerTypingClear:
		s.Convs.SetPeerTyping(k, "")
	}
	return nil, true
}

func (s *State) deliverReply(k conversation.Key) {
	replies := s.pool.Replies()
	peer, ok := s.pickParticipant()
	if len(replies) == 0 || !ok {
		return
	}
	msg := s.Convs.Deliver(k, models.Message{
		Author:   peer.Name,
		AuthorID: peer.ID,
		Avatar:   peer.Avatar,
		Content:  replies[s.rng.IntN(len(replies))],
	})
	s.log.Debug().Str("conversation", string(k)).Str("author", peer.Name).Str("message_id", msg.ID).Msg("reply delivered")
}

func (s *State) pickParticipant() (models.Participant, bool) {
	participants := s.pool.Participants()
	if len(participants) == 0 {
		return models.Participant{}, false
	}
	return participants[s.rng.IntN(len(participants))], true
}

// SelectServer opens a server on its selected text channel.
func (s *State) SelectServer(id string) error {
	return s.navigate(func() error { return s.Router.SelectServer(id) })
}

// SelectChannel opens a text channel with an empty message list. Selecting
// a voice channel joins it as a call instead.
func (s *State) SelectChannel(id string) error {
	for _, ch := range s.dir.Channels(s.Router.ServerID()) {
		if ch.ID == id && ch.Kind == models.ChannelVoice {
			return s.StartCall(ch.ID, ch.Name)
		}
	}

	prev := s.Active()
	if err := s.navigate(func() error { return s.Router.SelectChannel(id) }); err != nil {
		return err
	}
	// Reselecting the channel on screen clears it, so its pending tasks go too.
	if prev == s.Active() {
		s.leave(prev)
	}
	return nil
}

// OpenDM shows the direct-message thread with a friend.
func (s *State) OpenDM(friendID string) (models.DirectMessageThread, error) {
	if _, ok := s.Friends.Get(friendID); !ok {
		return models.DirectMessageThread{}, fmt.Errorf("%w: %s", friends.ErrNotFound, friendID)
	}
	var thread models.DirectMessageThread
	err := s.navigate(func() error {
		thread = s.Router.OpenDM(friendID)
		return nil
	})
	return thread, err
}

func (s *State) Show(view models.View) error {
	return s.navigate(func() error { return s.Router.Show(view) })
}

// CloseDM returns to the direct-messages home without a thread.
func (s *State) CloseDM() {
	_ = s.navigate(func() error {
		s.Router.CloseDM()
		return nil
	})
}

// navigate applies a router transition. Leaving a conversation drops its
// pending replies and typing indicators.
func (s *State) navigate(transition func() error) error {
	prev := s.Active()
	prevView := s.Router.View()
	if err := transition(); err != nil {
		return err
	}

	if prev != "" && prev != s.Active() {
		s.leave(prev)
	}
	s.log.Debug().Str("from", string(prevView)).Str("to", string(s.Router.View())).Str("conversation", string(s.Active())).Msg("view changed")
	return nil
}

func (s *State) leave(k conversation.Key) {
	if n := s.Tasks.CancelOwner(string(k)); n > 0 {
		s.log.Debug().Str("conversation", string(k)).Int("tasks", n).Msg("cancelled pending tasks")
	}
	s.Convs.SetPeerTyping(k, "")
	s.Convs.SetTyping(false)
	s.typingIdle = 0
}

// StartCall joins a simulated call. It fails with presence.ErrInCall while
// another call is active.
func (s *State) StartCall(peerID, peerName string) error {
	if err := s.Presence.StartCall(peerID, peerName); err != nil {
		s.log.Warn().Str("peer", peerName).Err(err).Msg("call rejected")
		return err
	}
	s.log.Info().Str("peer", peerName).Msg("call started")
	return nil
}

func (s *State) EndCall() {
	if call, ok := s.Presence.Call(); ok {
		s.log.Info().Str("peer", call.PeerName).Dur("elapsed", s.Presence.Elapsed()).Msg("call ended")
	}
	s.Presence.EndCall()
}

func (s *State) SetStatus(status models.Status) error {
	if err := s.Presence.SetStatus(status); err != nil {
		return err
	}
	s.log.Info().Str("status", string(status)).Msg("status changed")
	return nil
}

// AddFriend adds the user behind a Username#0000 code.
func (s *State) AddFriend(code string) (models.Friend, error) {
	f, err := s.Friends.Add(code, s.SelfCode())
	if err != nil {
		return models.Friend{}, err
	}
	s.log.Info().Str("friend", f.Code()).Msg("friend added")
	return f, nil
}

// RemoveFriend drops a friend. Leaving their open thread returns to the DM home.
func (s *State) RemoveFriend(id string) error {
	if err := s.Friends.Remove(id); err != nil {
		return err
	}
	if s.Router.DMFriendID() == id {
		s.CloseDM()
	}
	s.log.Info().Str("friend_id", id).Msg("friend removed")
	return nil
}

// Shutdown cancels every pending task.
func (s *State) Shutdown() {
	n := s.Tasks.CancelAll()
	s.log.Debug().Int("tasks", n).Msg("state shut down")
}
