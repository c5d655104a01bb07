package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Ndiapaly/NBM-Shop-Client/internal/api"
	"github.com/Ndiapaly/NBM-Shop-Client/internal/session"
)

// ErrNoSession means an operation needing a token was attempted without one.
// It is reported before any network call is made.
var ErrNoSession = errors.New("no session token")

// User-facing fallback messages, rendered when the server reply carries none.
const (
	msgLoginFailed    = "Erreur lors de la connexion"
	msgRegisterFailed = "Erreur lors de l'inscription"
	msgProfileFailed  = "Mise à jour du profil impossible"
	msgSessionFailed  = "Impossible de récupérer l'utilisateur"
	msgNoToken        = "Aucun token trouvé"
)

// Service owns the session. The persisted store is a mirror read once at
// construction; afterwards the in-memory state is authoritative.
type Service struct {
	mu       sync.RWMutex
	state    State
	api      *api.Client
	sessions session.Store
	notify   func()
}

// New hydrates the initial state from the session store. A corrupted
// persisted user record is purged and treated as absent; hydration never
// fails.
func New(client *api.Client, sessions session.Store, notify func()) *Service {
	s := &Service{
		api:      client,
		sessions: sessions,
		notify:   notify,
	}

	_, hasToken := sessions.Token()
	s.state.IsAuthenticated = hasToken

	var user User
	switch err := sessions.User(&user); {
	case err == nil:
		s.state.User = &user
	case errors.Is(err, session.ErrCorrupted):
		log.Printf("purging corrupted session entry: %v", err)
		if err := sessions.Clear(); err != nil {
			log.Printf("session clear failed: %v", err)
		}
		s.state.IsAuthenticated = false
	}

	return s
}

// Snapshot returns a copy of the auth state.
func (s *Service) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.state
	if s.state.User != nil {
		user := *s.state.User
		state.User = &user
	}
	return state
}

// Login authenticates against the backend. On success the token and the
// allow-listed user record are persisted; on any failure the state is forced
// back to unauthenticated so a failed login can never leave a stale session.
func (s *Service) Login(ctx context.Context, creds Credentials) error {
	s.begin()

	var resp authResponse
	err := s.api.Post(ctx, "/api/auth/login", creds, &resp)
	if err == nil && (resp.Token == "" || resp.User == nil) {
		err = fmt.Errorf("%w: missing token or user", api.ErrMalformedResponse)
	}
	if err != nil {
		s.rejectUnauthenticated(api.Message(err, msgLoginFailed))
		return err
	}

	s.persist(resp.Token, resp.User)
	s.commit(func(st *State) {
		st.Loading = false
		st.User = resp.User
		st.IsAuthenticated = true
		st.Err = ""
	})
	return nil
}

// Register creates an account. Identical contract to Login.
func (s *Service) Register(ctx context.Context, reg Registration) error {
	s.begin()

	var resp authResponse
	err := s.api.Post(ctx, "/api/auth/register", reg, &resp)
	if err == nil && (resp.Token == "" || resp.User == nil) {
		err = fmt.Errorf("%w: missing token or user", api.ErrMalformedResponse)
	}
	if err != nil {
		s.rejectUnauthenticated(api.Message(err, msgRegisterFailed))
		return err
	}

	s.persist(resp.Token, resp.User)
	s.commit(func(st *State) {
		st.Loading = false
		st.User = resp.User
		st.IsAuthenticated = true
		st.Err = ""
	})
	return nil
}

// Logout destroys the session unconditionally. It needs no network round-trip
// and works with the server unreachable.
func (s *Service) Logout() {
	if err := s.sessions.Clear(); err != nil {
		log.Printf("session clear failed: %v", err)
	}
	s.commit(func(st *State) {
		st.User = nil
		st.IsAuthenticated = false
		st.Loading = false
		st.Err = ""
	})
}

// UpdateProfile sends the edited fields and re-persists the returned user.
// Authentication state is untouched either way.
func (s *Service) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	token, ok := s.sessions.Token()
	if !ok {
		s.commit(func(st *State) { st.Err = msgNoToken })
		return ErrNoSession
	}

	s.begin()

	var user User
	if err := s.api.Put(ctx, "/api/auth/profile", update, &user); err != nil {
		s.commit(func(st *State) {
			st.Loading = false
			st.Err = api.Message(err, msgProfileFailed)
		})
		return err
	}

	if err := s.sessions.Save(token, &user); err != nil {
		log.Printf("session save failed: %v", err)
	}
	s.commit(func(st *State) {
		st.Loading = false
		st.User = &user
		st.Err = ""
	})
	return nil
}

// GetCurrentSession validates the persisted token against the backend at
// startup. Without a token it fails fast, no network call. A server-side
// rejection of the token is a hard invalidate: the persisted session is
// cleared exactly as logout would, so a dead token is never presented again.
func (s *Service) GetCurrentSession(ctx context.Context) error {
	if _, ok := s.sessions.Token(); !ok {
		s.rejectUnauthenticated(msgNoToken)
		return ErrNoSession
	}

	s.begin()

	var user User
	if err := s.api.Get(ctx, "/api/auth/me", nil, &user); err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) {
			if clearErr := s.sessions.Clear(); clearErr != nil {
				log.Printf("session clear failed: %v", clearErr)
			}
		}
		s.rejectUnauthenticated(msgSessionFailed)
		return err
	}

	s.commit(func(st *State) {
		st.Loading = false
		st.User = &user
		st.IsAuthenticated = true
	})
	return nil
}

// persist mirrors the session to the store. The in-memory state stays
// authoritative, so a mirror failure is logged and the login proceeds.
func (s *Service) persist(token string, user *User) {
	if err := s.sessions.Save(token, user); err != nil {
		log.Printf("session save failed: %v", err)
	}
}

func (s *Service) begin() {
	s.commit(func(st *State) {
		st.Loading = true
		st.Err = ""
	})
}

func (s *Service) rejectUnauthenticated(msg string) {
	s.commit(func(st *State) {
		st.Loading = false
		st.User = nil
		st.IsAuthenticated = false
		st.Err = msg
	})
}

func (s *Service) commit(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	s.mu.Unlock()
	if s.notify != nil {
		s.notify()
	}
}
