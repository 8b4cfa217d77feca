package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zap.NewNop())
	go hub.Run()
	return hub
}

func TestHub_FanOutToAllSessionsOfAUser(t *testing.T) {
	hub := newTestHub(t)

	a := NewClient(hub, nil, 1, zap.NewNop())
	b := NewClient(hub, nil, 1, zap.NewNop())
	hub.Register(a)
	hub.Register(b)

	require.Eventually(t, func() bool { return hub.SessionCount(1) == 2 }, time.Second, time.Millisecond)

	hub.Send(1, []byte("hello"))

	select {
	case msg := <-a.Send:
		assert.Equal(t, "hello", string(msg))
	case <-time.After(time.Second):
		t.Fatal("session a never received the frame")
	}
	select {
	case msg := <-b.Send:
		assert.Equal(t, "hello", string(msg))
	case <-time.After(time.Second):
		t.Fatal("session b never received the frame")
	}
}

func TestHub_SendIsIsolatedPerUser(t *testing.T) {
	hub := newTestHub(t)

	a := NewClient(hub, nil, 1, zap.NewNop())
	other := NewClient(hub, nil, 2, zap.NewNop())
	hub.Register(a)
	hub.Register(other)
	require.Eventually(t, func() bool { return hub.SessionCount(1) == 1 && hub.SessionCount(2) == 1 }, time.Second, time.Millisecond)

	hub.Send(1, []byte("for-user-1"))

	select {
	case <-a.Send:
	case <-time.After(time.Second):
		t.Fatal("user 1 never received the frame")
	}
	select {
	case msg := <-other.Send:
		t.Fatalf("user 2 unexpectedly received %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_SendExcept_SkipsTheOriginatingSession(t *testing.T) {
	hub := newTestHub(t)

	origin := NewClient(hub, nil, 1, zap.NewNop())
	other := NewClient(hub, nil, 1, zap.NewNop())
	hub.Register(origin)
	hub.Register(other)
	require.Eventually(t, func() bool { return hub.SessionCount(1) == 2 }, time.Second, time.Millisecond)

	hub.SendExcept(1, []byte("echo"), origin)

	select {
	case msg := <-other.Send:
		assert.Equal(t, "echo", string(msg))
	case <-time.After(time.Second):
		t.Fatal("the other session of the same user never received the frame")
	}
	select {
	case msg := <-origin.Send:
		t.Fatalf("the originating session unexpectedly received %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_SendExcept_NilExceptBehavesLikeSend(t *testing.T) {
	hub := newTestHub(t)

	a := NewClient(hub, nil, 1, zap.NewNop())
	hub.Register(a)
	require.Eventually(t, func() bool { return hub.SessionCount(1) == 1 }, time.Second, time.Millisecond)

	hub.SendExcept(1, []byte("hello"), nil)

	select {
	case msg := <-a.Send:
		assert.Equal(t, "hello", string(msg))
	case <-time.After(time.Second):
		t.Fatal("session never received the frame")
	}
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	hub := newTestHub(t)

	a := NewClient(hub, nil, 1, zap.NewNop())
	hub.Register(a)
	require.Eventually(t, func() bool { return hub.SessionCount(1) == 1 }, time.Second, time.Millisecond)

	hub.Unregister(a)
	require.Eventually(t, func() bool { return hub.SessionCount(1) == 0 }, time.Second, time.Millisecond)

	_, ok := <-a.Send
	assert.False(t, ok, "Send channel should be closed after unregister")
}
