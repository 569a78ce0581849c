package models

import "time"

type ChannelKind string

const (
	ChannelText  ChannelKind = "text"
	ChannelVoice ChannelKind = "voice"
)

type Server struct {
	ID   string
	Name string
	Icon string
}

type Channel struct {
	ID     string
	Name   string
	Kind   ChannelKind
	Active bool
}

type Reaction struct {
	Emoji string
	Count int
	Users []string
}

// HasUser reports whether userID is in the reaction's user set.
func (r Reaction) HasUser(userID string) bool {
	for _, u := range r.Users {
		if u == userID {
			return true
		}
	}
	return false
}

type Message struct {
	ID        string
	Author    string
	AuthorID  string
	Avatar    string
	Content   string
	Timestamp time.Time
	Reactions []Reaction
}

type DirectMessageThread struct {
	ID          string
	FriendID    string
	Messages    []Message
	UnreadCount int
}

type Status string

const (
	StatusOnline  Status = "online"
	StatusAway    Status = "away"
	StatusOffline Status = "offline"
)

// Valid reports whether s is one of the three presence states.
func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusAway, StatusOffline:
		return true
	}
	return false
}

type Friend struct {
	ID            string
	Name          string
	Discriminator string
	Avatar        string
	Status        Status
	Activity      string
}

// Code returns the friend code in Username#0000 form.
func (f Friend) Code() string {
	return f.Name + "#" + f.Discriminator
}

// Participant is a mock author of synthetic replies.
type Participant struct {
	ID     string
	Name   string
	Avatar string
}

// User is the account object returned by the auth gateway.
type User struct {
	ID            int64  `json:"id" yaml:"id"`
	Username      string `json:"username" yaml:"username"`
	Discriminator string `json:"discriminator" yaml:"discriminator"`
	Avatar        string `json:"avatar" yaml:"avatar"`
	Email         string `json:"email,omitempty" yaml:"email,omitempty"`
}

type View string

const (
	ViewDirectMessages View = "direct-messages"
	ViewServer         View = "server"
	ViewFriends        View = "friends"
	ViewAddFriend      View = "add-friend"
	ViewProfile        View = "profile"
)
