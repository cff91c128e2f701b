// Package session remembers what a user is editing between CLI invocations.
//
// A [Session] records the open document, the store it lives in and the
// stack of component ids drilled into, so that
//
//	hiernet open net
//	hiernet enter stage
//	hiernet node add --label Filter
//
// adds the node inside "stage" of document "net". Sessions expire after a
// period of inactivity ([DefaultTTL]); every successful command touches its
// session.
//
// Sessions are stored as small JSON files by [FileStore]. The CLI uses a
// single well-known session id through [CLIStore].
package session

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/hiernet/pkg/errors"
)

// Session stores editing state.
type Session struct {
	ID        string    `json:"id"`
	Document  string    `json:"document"`
	Backend   string    `json:"backend,omitempty"`
	Context   []string  `json:"context,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch extends the session by ttl from now.
func (s *Session) Touch(ttl time.Duration) {
	now := time.Now()
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(ttl)
}

// Enter pushes a component id onto the context stack.
func (s *Session) Enter(id string) { s.Context = append(s.Context, id) }

// Exit pops the innermost component. It does nothing at root.
func (s *Session) Exit() {
	if len(s.Context) > 0 {
		s.Context = s.Context[:len(s.Context)-1]
	}
}

// SetContext replaces the context stack.
func (s *Session) SetContext(ids []string) { s.Context = slices.Clone(ids) }

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. It returns SESSION_NOT_FOUND when
	// the session does not exist and SESSION_EXPIRED when it timed out.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// DefaultTTL is how long a session survives without use.
const DefaultTTL = 7 * 24 * time.Hour

// New creates a session editing document at root.
func New(document, backend string, ttl time.Duration) (*Session, error) {
	if err := errors.ValidateDocumentName(document); err != nil {
		return nil, err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "generate session id")
	}
	now := time.Now()
	return &Session{
		ID:        id.String(),
		Document:  document,
		Backend:   backend,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
