package trends

import "errors"

// Error taxonomy for the fetch pipeline. Components wrap these with context.
var (
	// ErrSessionCreation indicates the remote browser failed to start.
	ErrSessionCreation = errors.New("session creation failed")
	// ErrElementNotFound indicates an expected element did not appear in time.
	ErrElementNotFound = errors.New("element not found")
	// ErrNetworkResolution indicates the public address lookup or a store connection failed.
	ErrNetworkResolution = errors.New("network resolution failed")
	// ErrStore indicates persistence failed.
	ErrStore = errors.New("store write failed")
	// ErrCredentialsMissing indicates scrape credentials are not configured.
	ErrCredentialsMissing = errors.New("scrape credentials not configured")
)
