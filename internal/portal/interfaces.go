package portal

import (
	"context"
	"io"
	"time"
)

// SessionStore keeps sessions addressable by their opaque token.
type SessionStore interface {
	Get(ctx context.Context, token string) (Session, error)
	Set(ctx context.Context, session Session) error
	// Update applies fn to an existing session and stores the result. It
	// returns ErrSessionNotFound when the token is gone and never recreates it.
	Update(ctx context.Context, token string, fn func(*Session)) error
	Clear(ctx context.Context, token string) error
}

// CredentialVerifier checks an employee id/password pair.
type CredentialVerifier interface {
	Verify(ctx context.Context, subjectID, password string) (Identity, error)
}

// Extractor scrapes a URL and extracts structured articles from it.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (*Extraction, error)
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// Publisher pushes crawl events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// HistoryStore persists search history entries.
type HistoryStore interface {
	Record(ctx context.Context, entry SearchHistoryEntry) error
	List(ctx context.Context, subjectID string, limit, offset int) (HistoryPage, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique identifiers.
type IDGenerator interface {
	NewID() (string, error)
}
