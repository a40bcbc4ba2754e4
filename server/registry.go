package server

import (
	"errors"
	"net"
	"strings"
	"sync"

	"github.com/phuongkuro/Uno-text-based-LAN/protocol"
	uuid "github.com/satori/go.uuid"
)

var (
	ErrNameTaken = errors.New("username has been taken")
	ErrBlankName = errors.New("username cannot be blank")
)

// Session is one connected player: the display name, the connection
// the server writes frames to, and a connection id used in logs.
type Session struct {
	ID   string
	Name string

	conn net.Conn
	mu   sync.Mutex // serializes frame writes
}

func (s *Session) send(msg protocol.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return protocol.Write(s.conn, msg)
}

// Close closes the session's connection
func (s *Session) Close() error {
	return s.conn.Close()
}

// Registry maps player names to live sessions. Names are unique and
// case-sensitive.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string // join order, for deterministic broadcast
}

// NewRegistry constructs an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: map[string]*Session{},
	}
}

// Register adds a session for the named player
func (r *Registry) Register(name string, conn net.Conn) (*Session, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrBlankName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[name]; ok {
		return nil, ErrNameTaken
	}
	sess := &Session{
		ID:   uuid.NewV4().String(),
		Name: name,
		conn: conn,
	}
	r.sessions[name] = sess
	r.order = append(r.order, name)
	return sess, nil
}

// Unregister removes the named session. It is idempotent.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(name)
}

// remove must be called with the lock held
func (r *Registry) remove(name string) {
	if _, ok := r.sessions[name]; !ok {
		return
	}
	delete(r.sessions, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Names returns the registered names in join order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) snapshot(exclude []string) []*Session {
	skip := map[string]bool{}
	for _, name := range exclude {
		skip[name] = true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*Session{}
	for _, name := range r.order {
		if skip[name] {
			continue
		}
		out = append(out, r.sessions[name])
	}
	return out
}

// Broadcast delivers a message to every registered session except the
// excluded names. Sessions whose delivery fails are closed, removed
// and returned so the caller can announce the departure.
func (r *Registry) Broadcast(msg protocol.Message, exclude ...string) []string {
	var failed []string
	for _, sess := range r.snapshot(exclude) {
		if err := sess.send(msg); err != nil {
			failed = append(failed, sess.Name)
		}
	}
	if len(failed) > 0 {
		r.mu.Lock()
		for _, name := range failed {
			if sess, ok := r.sessions[name]; ok {
				sess.Close()
			}
			r.remove(name)
		}
		r.mu.Unlock()
	}
	return failed
}

// Unicast delivers a message to the named session. Unknown names are
// a no-op.
func (r *Registry) Unicast(name string, msg protocol.Message) error {
	r.mu.RLock()
	sess, ok := r.sessions[name]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return sess.send(msg)
}

// CloseAll closes every connection and empties the registry
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sess := range r.sessions {
		sess.Close()
	}
	r.sessions = map[string]*Session{}
	r.order = nil
}
