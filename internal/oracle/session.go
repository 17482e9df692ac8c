package oracle

import (
	"context"
	"io"
	"strings"
	"sync"

	"or-schedule-backend/internal/model"
)

// Session is one chat conversation. Each session owns its own history and is
// created and torn down by the caller; there is no process-wide chat state.
type Session struct {
	provider Provider

	mu      sync.Mutex
	history []Message
}

// NewSession starts a conversation against the given provider.
func NewSession(provider Provider) *Session {
	return &Session{provider: provider}
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.history...)
}

// Send streams the assistant's reply to message, grounded in the current
// schedule. The user turn is recorded immediately; the assistant turn is
// recorded when the returned reader is closed, holding whatever was read by
// then.
func (s *Session) Send(ctx context.Context, message string, cases []model.Case) (io.ReadCloser, error) {
	s.mu.Lock()
	history := append([]Message(nil), s.history...)
	s.mu.Unlock()

	reply, err := s.provider.Chat(ctx, history, message, cases)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.history = append(s.history, Message{Role: "user", Content: message})
	s.mu.Unlock()

	return &recordingReader{inner: reply, session: s}, nil
}

func (s *Session) recordAssistant(content string) {
	s.mu.Lock()
	s.history = append(s.history, Message{Role: "assistant", Content: content})
	s.mu.Unlock()
}

// recordingReader tees the streamed reply into the session history.
type recordingReader struct {
	inner   io.ReadCloser
	session *Session
	buf     strings.Builder
	closed  bool
}

func (r *recordingReader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n > 0 {
		r.buf.Write(p[:n])
	}
	return n, err
}

func (r *recordingReader) Close() error {
	if !r.closed {
		r.closed = true
		r.session.recordAssistant(r.buf.String())
	}
	return r.inner.Close()
}

// SessionRegistry hands out sessions keyed by conversation id so an API
// caller can hold several independent conversations.
type SessionRegistry struct {
	provider Provider

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionRegistry creates an empty registry backed by provider.
func NewSessionRegistry(provider Provider) *SessionRegistry {
	return &SessionRegistry{
		provider: provider,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id, creating it on first use.
func (r *SessionRegistry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		s = NewSession(r.provider)
		r.sessions[id] = s
	}
	return s
}

// Close tears down the session for id.
func (r *SessionRegistry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
