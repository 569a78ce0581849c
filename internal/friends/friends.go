// Package friends keeps the local friend list. Adding and removing friends
// is simulated: nothing leaves the process.
package friends

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"github.com/saravenpi/chorus/internal/models"
)

var (
	ErrInvalidCode   = errors.New("Неверный формат кода (Username#0000)")
	ErrSelf          = errors.New("Нельзя добавить себя в друзья")
	ErrAlreadyFriend = errors.New("Пользователь уже в друзьях")
	ErrNotFound      = errors.New("Пользователь не найден")
)

var codePattern = regexp.MustCompile(`^([^#\s]{2,32})#(\d{4})$`)

type Filter int

const (
	FilterAll Filter = iota
	FilterOnline
)

type Directory struct {
	friends []models.Friend
}

func NewDirectory(seed []models.Friend) *Directory {
	return &Directory{friends: append([]models.Friend(nil), seed...)}
}

// ParseCode splits a Username#0000 friend code.
func ParseCode(code string) (username, discriminator string, err error) {
	m := codePattern.FindStringSubmatch(strings.TrimSpace(code))
	if m == nil {
		return "", "", ErrInvalidCode
	}
	return m[1], m[2], nil
}

// List returns friends in insertion order. FilterOnline keeps online and away friends.
func (d *Directory) List(filter Filter) []models.Friend {
	out := make([]models.Friend, 0, len(d.friends))
	for _, f := range d.friends {
		if filter == FilterOnline && f.Status == models.StatusOffline {
			continue
		}
		out = append(out, f)
	}
	return out
}

type names []models.Friend

func (n names) String(i int) string { return n[i].Name }
func (n names) Len() int            { return len(n) }

// Search fuzzy-matches query against friend names, best match first. An
// empty query returns the filtered list unchanged.
func (d *Directory) Search(query string, filter Filter) []models.Friend {
	list := d.List(filter)
	query = strings.TrimSpace(query)
	if query == "" {
		return list
	}

	matches := fuzzy.FindFrom(query, names(list))
	out := make([]models.Friend, 0, len(matches))
	for _, m := range matches {
		out = append(out, list[m.Index])
	}
	return out
}

func (d *Directory) Get(id string) (models.Friend, bool) {
	for _, f := range d.friends {
		if f.ID == id {
			return f, true
		}
	}
	return models.Friend{}, false
}

// Add befriends the user behind code. selfCode is the local user's own code.
func (d *Directory) Add(code, selfCode string) (models.Friend, error) {
	username, discriminator, err := ParseCode(code)
	if err != nil {
		return models.Friend{}, err
	}
	if strings.EqualFold(username+"#"+discriminator, strings.TrimSpace(selfCode)) {
		return models.Friend{}, ErrSelf
	}
	for _, f := range d.friends {
		if strings.EqualFold(f.Name, username) && f.Discriminator == discriminator {
			return models.Friend{}, ErrAlreadyFriend
		}
	}

	friend := models.Friend{
		ID:            uuid.NewString(),
		Name:          username,
		Discriminator: discriminator,
		Avatar:        "👤",
		Status:        models.StatusOffline,
	}
	d.friends = append(d.friends, friend)
	return friend, nil
}

func (d *Directory) Remove(id string) error {
	for i, f := range d.friends {
		if f.ID == id {
			d.friends = append(d.friends[:i], d.friends[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Counts returns the number of online (online or away) and total friends.
func (d *Directory) Counts() (online, total int) {
	for _, f := range d.friends {
		if f.Status != models.StatusOffline {
			online++
		}
	}
	return online, len(d.friends)
}
