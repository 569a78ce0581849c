package presence

import (
	"testing"
	"time"

	"github.com/saravenpi/chorus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartCallResetsFlags(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New(models.StatusOnline, func() time.Time { return now })

	require.NoError(t, s.StartCall("2", "GamerPro"))
	assert.True(t, s.ToggleMute())
	assert.True(t, s.ToggleDeafen())

	s.EndCall()
	assert.False(t, s.InCall())

	require.NoError(t, s.StartCall("3", "NeonKnight"))
	call, ok := s.Call()
	require.True(t, ok)
	assert.Equal(t, "3", call.PeerID)
	assert.Equal(t, "NeonKnight", call.PeerName)
	assert.False(t, call.Muted)
	assert.False(t, call.Deafened)
	assert.Equal(t, now, call.StartedAt)
}

func TestStartCallWhileInCall(t *testing.T) {
	s := New(models.StatusOnline, nil)
	require.NoError(t, s.StartCall("1", "Космонавт_228"))
	s.ToggleMute()

	err := s.StartCall("2", "GamerPro")
	assert.ErrorIs(t, err, ErrInCall)

	call, _ := s.Call()
	assert.Equal(t, "1", call.PeerID)
	assert.True(t, call.Muted)
}

func TestEndCallClearsState(t *testing.T) {
	s := New(models.StatusOnline, nil)
	require.NoError(t, s.StartCall("1", "Космонавт_228"))
	s.EndCall()

	_, ok := s.Call()
	assert.False(t, ok)
	assert.Zero(t, s.Elapsed())
	assert.False(t, s.ToggleMute())
	assert.False(t, s.ToggleDeafen())
}

func TestToggleFlipsBack(t *testing.T) {
	s := New(models.StatusOnline, nil)
	require.NoError(t, s.StartCall("1", "Космонавт_228"))

	assert.True(t, s.ToggleMute())
	assert.False(t, s.ToggleMute())
	assert.True(t, s.ToggleDeafen())
	assert.False(t, s.ToggleDeafen())
}

func TestElapsed(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New(models.StatusOnline, func() time.Time { return now })
	require.NoError(t, s.StartCall("1", "Космонавт_228"))

	now = now.Add(90 * time.Second)
	assert.Equal(t, 90*time.Second, s.Elapsed())
}

func TestSetStatus(t *testing.T) {
	s := New("", nil)
	assert.Equal(t, models.StatusOnline, s.Status())

	tests := []struct {
		status  models.Status
		wantErr bool
	}{
		{models.StatusAway, false},
		{models.StatusOffline, false},
		{models.StatusOnline, false},
		{"dnd", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			before := s.Status()
			err := s.SetStatus(tt.status)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStatus)
				assert.Equal(t, before, s.Status())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, s.Status())
		})
	}
}
