package trends

import (
	"context"
	"time"
)

// Session drives one live remote browser.
type Session interface {
	ID() uint64
	Navigate(ctx context.Context, url string) error
	// AwaitElement polls for locator until timeout or ctx ends.
	AwaitElement(ctx context.Context, locator string, timeout time.Duration) (Element, error)
	SendKeys(ctx context.Context, el Element, keys string) error
	// Texts returns the text of every node matching selector inside el.
	Texts(ctx context.Context, el Element, selector string) ([]string, error)
}

// SessionProvider owns the single live Session.
type SessionProvider interface {
	Acquire(ctx context.Context) (Session, error)
	Reset()
}

// Extractor scrapes one FetchOutcome from a borrowed session.
type Extractor interface {
	Run(ctx context.Context, session Session) Outcome
}

// RecordStore persists fetch records.
type RecordStore interface {
	Persist(ctx context.Context, record FetchRecord) error
}

// AddressResolver looks up the caller's public network address.
type AddressResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces record IDs.
type IDGenerator interface {
	NewID() (string, error)
}
