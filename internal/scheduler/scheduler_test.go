package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleAndFire(t *testing.T) {
	s := New()
	id, cmd := s.Schedule("chat", 10*time.Millisecond, "reply")
	require.NotNil(t, cmd)

	msg := cmd()
	fired, ok := msg.(FiredMsg)
	require.True(t, ok)
	assert.Equal(t, id, fired.ID)

	task, ok := s.Fire(fired)
	require.True(t, ok)
	assert.Equal(t, "reply", task.Payload)
	assert.Equal(t, "chat", task.Owner)

	_, ok = s.Fire(fired)
	assert.False(t, ok, "a task fires at most once")
}

func TestCancel(t *testing.T) {
	s := New()
	id, _ := s.Schedule("chat", time.Second, nil)

	assert.True(t, s.Cancel(id))
	assert.False(t, s.Cancel(id))

	_, ok := s.Fire(FiredMsg{ID: id})
	assert.False(t, ok)
}

func TestCancelOwner(t *testing.T) {
	s := New()
	s.Schedule("a", time.Second, 1)
	s.Schedule("b", time.Second, 2)
	s.Schedule("a", time.Second, 3)

	assert.Equal(t, 2, s.CancelOwner("a"))
	assert.Empty(t, s.Pending("a"))

	rest := s.Pending("")
	require.Len(t, rest, 1)
	assert.Equal(t, 2, rest[0].Payload)

	assert.Equal(t, 1, s.CancelAll())
	assert.Empty(t, s.Pending(""))
}

func TestPendingOrder(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		s.Schedule("x", time.Duration(5-i)*time.Second, i)
	}

	tasks := s.Pending("x")
	require.Len(t, tasks, 5)
	for i, task := range tasks {
		assert.Equal(t, i, task.Payload)
	}
}
