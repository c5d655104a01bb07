package session

import "errors"

// Common errors returned by session stores
var (
	// ErrNoEntry means nothing is persisted under the requested key.
	ErrNoEntry = errors.New("session: no entry")
	// ErrCorrupted means an entry exists but cannot be decoded. Callers are
	// expected to Clear the store and carry on unauthenticated.
	ErrCorrupted = errors.New("session: corrupted entry")
)

// Store mirrors the authenticated session across restarts. It holds two
// entries: the opaque auth token and the allow-listed user record. The
// in-memory auth state is authoritative; a Store is read once at startup
// and written on login, register, profile update and logout.
type Store interface {
	// Token returns the persisted token, or false if none is stored.
	Token() (string, bool)

	// User decodes the persisted user record into v.
	// Returns ErrNoEntry when absent and ErrCorrupted when undecodable.
	User(v any) error

	// Save persists the token and user record, replacing any previous session.
	Save(token string, user any) error

	// Clear removes both entries. Clearing an empty store is not an error.
	Clear() error
}
