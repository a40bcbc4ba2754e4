package server

import (
	"net"
	"testing"
	"time"

	utils "github.com/phuongkuro/Uno-text-based-LAN/internal"
	"github.com/phuongkuro/Uno-text-based-LAN/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeSession registers a session backed by one end of a net.Pipe and
// returns the client end plus a channel of everything the server sends.
func pipeSession(t *testing.T, r *Registry, name string) (net.Conn, chan protocol.Message) {
	t.Helper()

	serverEnd, clientEnd := net.Pipe()
	t.Cleanup(func() {
		serverEnd.Close()
		clientEnd.Close()
	})

	_, err := r.Register(name, serverEnd)
	require.NoError(t, err)

	received := make(chan protocol.Message, 16)
	go func() {
		for {
			msg, err := protocol.Read(clientEnd)
			if err != nil {
				close(received)
				return
			}
			received <- msg
		}
	}()
	return clientEnd, received
}

func expectMessage(t *testing.T, received chan protocol.Message) protocol.Message {
	t.Helper()

	select {
	case msg, ok := <-received:
		if !ok {
			t.Fatal("connection closed before a message arrived")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a message")
	}
	return protocol.Message{}
}

func TestRegistryRegister(t *testing.T) {
	t.Run("rejects blank names", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Register("", nil)
		assert.ErrorIs(t, err, ErrBlankName)
		_, err = r.Register("   ", nil)
		assert.ErrorIs(t, err, ErrBlankName)
	})

	t.Run("rejects duplicate names and keeps the registry unchanged", func(t *testing.T) {
		r := NewRegistry()
		pipeSession(t, r, "Alice")

		_, err := r.Register("Alice", nil)
		assert.ErrorIs(t, err, ErrNameTaken)
		utils.AssertEqual(t, r.Len(), 1)
		utils.AssertDeepEqual(t, r.Names(), []string{"Alice"})
	})

	t.Run("sessions get a connection id", func(t *testing.T) {
		r := NewRegistry()
		serverEnd, _ := net.Pipe()
		defer serverEnd.Close()

		sess, err := r.Register("Alice", serverEnd)
		utils.AssertNoError(t, err)
		utils.AssertNotEmptyString(t, sess.ID)
	})

	t.Run("names are returned in join order", func(t *testing.T) {
		r := NewRegistry()
		pipeSession(t, r, "Carol")
		pipeSession(t, r, "Alice")
		pipeSession(t, r, "Bob")
		utils.AssertDeepEqual(t, r.Names(), []string{"Carol", "Alice", "Bob"})
	})
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	pipeSession(t, r, "Alice")

	r.Unregister("Alice")
	utils.AssertEqual(t, r.Len(), 0)

	// idempotent
	r.Unregister("Alice")
	r.Unregister("nobody")
}

func TestRegistryUnicast(t *testing.T) {
	t.Run("delivers to exactly one session", func(t *testing.T) {
		r := NewRegistry()
		_, aliceMsgs := pipeSession(t, r, "Alice")
		_, bobMsgs := pipeSession(t, r, "Bob")

		utils.AssertNoError(t, r.Unicast("Alice", protocol.NewText("hello")))

		msg := expectMessage(t, aliceMsgs)
		utils.AssertEqual(t, msg.Text, "hello")
		assert.Empty(t, bobMsgs)
	})

	t.Run("unknown names are a no-op", func(t *testing.T) {
		r := NewRegistry()
		utils.AssertNoError(t, r.Unicast("nobody", protocol.NewText("hello")))
	})
}

func TestRegistryBroadcast(t *testing.T) {
	t.Run("delivers to everyone except the excluded", func(t *testing.T) {
		r := NewRegistry()
		_, aliceMsgs := pipeSession(t, r, "Alice")
		_, bobMsgs := pipeSession(t, r, "Bob")
		_, carolMsgs := pipeSession(t, r, "Carol")

		failed := r.Broadcast(protocol.NewText("news"), "Bob")
		assert.Empty(t, failed)

		utils.AssertEqual(t, expectMessage(t, aliceMsgs).Text, "news")
		utils.AssertEqual(t, expectMessage(t, carolMsgs).Text, "news")
		assert.Empty(t, bobMsgs)
	})

	t.Run("prunes sessions whose delivery fails", func(t *testing.T) {
		r := NewRegistry()
		_, aliceMsgs := pipeSession(t, r, "Alice")

		deadServer, deadClient := net.Pipe()
		_, err := r.Register("Bob", deadServer)
		require.NoError(t, err)
		deadClient.Close()

		failed := r.Broadcast(protocol.NewText("news"))
		utils.AssertDeepEqual(t, failed, []string{"Bob"})
		utils.AssertEqual(t, expectMessage(t, aliceMsgs).Text, "news")

		// Bob is gone, the rest still deliver
		utils.AssertDeepEqual(t, r.Names(), []string{"Alice"})
	})
}
