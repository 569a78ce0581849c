// Package presence simulates the local user's availability and a single
// voice call. Nothing here touches real audio or the network.
package presence

import (
	"errors"
	"fmt"
	"time"

	"github.com/saravenpi/chorus/internal/models"
)

var (
	ErrInCall        = errors.New("already in a call")
	ErrInvalidStatus = errors.New("invalid status")
)

// Call is the state of the active simulated call.
type Call struct {
	PeerID    string
	PeerName  string
	Muted     bool
	Deafened  bool
	StartedAt time.Time
}

type Simulator struct {
	now    func() time.Time
	status models.Status
	call   *Call
}

func New(status models.Status, now func() time.Time) *Simulator {
	if !status.Valid() {
		status = models.StatusOnline
	}
	if now == nil {
		now = time.Now
	}
	return &Simulator{now: now, status: status}
}

func (s *Simulator) Status() models.Status {
	return s.status
}

func (s *Simulator) SetStatus(status models.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	s.status = status
	return nil
}

func (s *Simulator) InCall() bool {
	return s.call != nil
}

// Call returns a copy of the active call.
func (s *Simulator) Call() (Call, bool) {
	if s.call == nil {
		return Call{}, false
	}
	return *s.call, true
}

// StartCall begins a call with the given peer. Calls do not queue: starting
// one while another is active fails and leaves the active call untouched.
func (s *Simulator) StartCall(peerID, peerName string) error {
	if s.call != nil {
		return ErrInCall
	}
	s.call = &Call{
		PeerID:    peerID,
		PeerName:  peerName,
		StartedAt: s.now(),
	}
	return nil
}

func (s *Simulator) EndCall() {
	s.call = nil
}

// ToggleMute flips the mute flag and returns the new value. Outside a call it is a no-op.
func (s *Simulator) ToggleMute() bool {
	if s.call == nil {
		return false
	}
	s.call.Muted = !s.call.Muted
	return s.call.Muted
}

// ToggleDeafen flips the deafen flag and returns the new value. Outside a call it is a no-op.
func (s *Simulator) ToggleDeafen() bool {
	if s.call == nil {
		return false
	}
	s.call.Deafened = !s.call.Deafened
	return s.call.Deafened
}

// Elapsed reports how long the active call has lasted.
func (s *Simulator) Elapsed() time.Duration {
	if s.call == nil {
		return 0
	}
	return s.now().Sub(s.call.StartedAt)
}
