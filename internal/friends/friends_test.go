package friends

import (
	"testing"

	"github.com/saravenpi/chorus/internal/mock"
	"github.com/saravenpi/chorus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCode(t *testing.T) {
	tests := []struct {
		code    string
		user    string
		disc    string
		wantErr bool
	}{
		{"GamerPro#4521", "GamerPro", "4521", false},
		{"  Юра#1337 ", "Юра", "1337", false},
		{"GamerPro", "", "", true},
		{"GamerPro#45", "", "", true},
		{"Gamer Pro#4521", "", "", true},
		{"#4521", "", "", true},
		{"a#b#1234", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			user, disc, err := ParseCode(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.user, user)
			assert.Equal(t, tt.disc, disc)
		})
	}
}

func TestListFilter(t *testing.T) {
	d := NewDirectory(mock.Friends())

	assert.Len(t, d.List(FilterAll), 4)

	online := d.List(FilterOnline)
	require.Len(t, online, 3)
	for _, f := range online {
		assert.NotEqual(t, models.StatusOffline, f.Status)
	}

	on, total := d.Counts()
	assert.Equal(t, 3, on)
	assert.Equal(t, 4, total)
}

func TestSearch(t *testing.T) {
	d := NewDirectory(mock.Friends())

	got := d.Search("neon", FilterAll)
	require.NotEmpty(t, got)
	assert.Equal(t, "NeonKnight", got[0].Name)

	assert.Empty(t, d.Search("shadow", FilterOnline))
	assert.Len(t, d.Search("", FilterAll), 4)
}

func TestAdd(t *testing.T) {
	d := NewDirectory(mock.Friends())

	_, err := d.Add("bad code", "Юра#1337")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = d.Add("Юра#1337", "Юра#1337")
	assert.ErrorIs(t, err, ErrSelf)

	_, err = d.Add("gamerpro#4521", "Юра#1337")
	assert.ErrorIs(t, err, ErrAlreadyFriend)

	friend, err := d.Add("Newbie#0042", "Юра#1337")
	require.NoError(t, err)
	assert.Equal(t, "Newbie", friend.Name)
	assert.Equal(t, "0042", friend.Discriminator)
	assert.Equal(t, models.StatusOffline, friend.Status)
	assert.NotEmpty(t, friend.ID)

	got, ok := d.Get(friend.ID)
	require.True(t, ok)
	assert.Equal(t, "Newbie#0042", got.Code())
	assert.Len(t, d.List(FilterAll), 5)
}

func TestRemove(t *testing.T) {
	d := NewDirectory(mock.Friends())

	require.NoError(t, d.Remove("4"))
	_, ok := d.Get("4")
	assert.False(t, ok)
	assert.ErrorIs(t, d.Remove("4"), ErrNotFound)
}

func TestDirectoryCopiesSeed(t *testing.T) {
	seed := mock.Friends()
	d := NewDirectory(seed)
	require.NoError(t, d.Remove("1"))
	assert.Equal(t, "1", seed[0].ID)
}
