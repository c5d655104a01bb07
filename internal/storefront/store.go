package storefront

import (
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/Ndiapaly/NBM-Shop-Client/internal/api"
	"github.com/Ndiapaly/NBM-Shop-Client/internal/auth"
	"github.com/Ndiapaly/NBM-Shop-Client/internal/cart"
	"github.com/Ndiapaly/NBM-Shop-Client/internal/config"
	"github.com/Ndiapaly/NBM-Shop-Client/internal/orders"
	"github.com/Ndiapaly/NBM-Shop-Client/internal/products"
	"github.com/Ndiapaly/NBM-Shop-Client/internal/session"
	"github.com/Ndiapaly/NBM-Shop-Client/internal/wishlist"
)

// Store composes the five domains, the HTTP client and the persisted
// session store into one explicitly owned state container. It is built at
// startup, injected where needed, and torn down with Close — never a
// process-wide singleton.
type Store struct {
	Auth     *auth.Service
	Cart     *cart.Cart
	Products *products.Service
	Orders   *orders.Service
	Wishlist *wishlist.Service

	api      *api.Client
	sessions session.Store
	redis    *redis.Client

	subs *subscribers
}

// New builds a store from configuration: it selects the session backend,
// wires the HTTP client with the session store as its token source, and
// restores any persisted session into the auth domain.
func New(cfg *config.Config) (*Store, error) {
	s := &Store{subs: newSubscribers()}

	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		s.redis = redis.NewClient(&redis.Options{
			Addr: cfg.Session.RedisAddr,
			DB:   cfg.Session.RedisDB,
		})
		s.sessions = session.NewRedisStore(s.redis)
	case config.SessionBackendFile:
		s.sessions = session.NewFileStore(cfg.Session.File)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	s.api = api.New(cfg.API.BaseURL, cfg.API.Timeout, s.sessions, api.LogHook{}, api.TraceHook{})

	notify := s.subs.notify
	s.Auth = auth.New(s.api, s.sessions, notify)
	s.Cart = cart.New(notify)
	s.Products = products.NewService(s.api, notify)
	s.Orders = orders.NewService(s.api, notify)
	s.Wishlist = wishlist.NewService(s.api, notify)

	return s, nil
}

// State is the combined state tree, one subtree per domain.
type State struct {
	Auth     auth.State
	Cart     cart.State
	Products products.State
	Orders   orders.State
	Wishlist wishlist.State
}

// Snapshot reads every domain's current state. Each subtree is internally
// consistent; the combination is a point-in-time read, not a transaction
// across domains.
func (s *Store) Snapshot() State {
	return State{
		Auth:     s.Auth.Snapshot(),
		Cart:     s.Cart.Snapshot(),
		Products: s.Products.Snapshot(),
		Orders:   s.Orders.Snapshot(),
		Wishlist: s.Wishlist.Snapshot(),
	}
}

// Subscribe returns a channel that receives a signal after state changes,
// and a cancel function. Signals are coalesced: a burst of updates while
// the subscriber is busy collapses into one pending signal, so the reader
// re-snapshots instead of replaying every intermediate state.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	return s.subs.add()
}

// Close tears the store down: subscribers are released, idle connections
// dropped and, when the redis session backend is in use, its client closed.
// The store must not be used after Close.
func (s *Store) Close() error {
	s.subs.close()
	s.api.CloseIdleConnections()
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("storefront: closing redis client: %v", err)
			return err
		}
	}
	return nil
}
