package wishlist

import (
	"context"
	"sync"

	"github.com/Ndiapaly/NBM-Shop-Client/internal/api"
	"github.com/Ndiapaly/NBM-Shop-Client/internal/products"
)

// User-facing fallback messages.
const (
	msgAddFailed    = "Erreur lors de l'ajout à la wishlist"
	msgRemoveFailed = "Erreur lors de la suppression de la wishlist"
	msgFetchFailed  = "Erreur lors de la récupération de la wishlist"
)

// Op identifies one of the three wishlist operations. Each carries its own
// loading flag and error message so a failed removal does not mask an add in
// flight.
type Op int

const (
	OpAdd Op = iota
	OpRemove
	OpFetch
	opCount
)

// State is the wishlist domain's slice of the state tree.
type State struct {
	Items   []products.Product
	Loading [opCount]bool
	Errs    [opCount]string
}

// Service keeps the server-synced favorites list. Neither Add nor Remove is
// optimistic: local items change only after the server acknowledges, so a
// failure leaves Items exactly as they were.
type Service struct {
	mu     sync.RWMutex
	state  State
	api    *api.Client
	notify func()
}

func NewService(client *api.Client, notify func()) *Service {
	return &Service{
		api:    client,
		notify: notify,
	}
}

// Snapshot returns a copy of the wishlist state.
func (s *Service) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.state
	state.Items = make([]products.Product, len(s.state.Items))
	copy(state.Items, s.state.Items)
	return state
}

type addRequest struct {
	ProductID string `json:"productId"`
}

// Add sends the product to the server and, only on acknowledgement, appends
// it locally. A duplicate ID is dropped silently so two racing adds for the
// same product cannot double-insert.
func (s *Service) Add(ctx context.Context, product products.Product) error {
	s.begin(OpAdd)

	if err := s.api.Post(ctx, "/api/wishlist/add", addRequest{ProductID: product.ID}, nil); err != nil {
		s.reject(OpAdd, api.Message(err, msgAddFailed))
		return err
	}

	s.commit(func(st *State) {
		st.Loading[OpAdd] = false
		for _, item := range st.Items {
			if item.ID == product.ID {
				return
			}
		}
		st.Items = append(st.Items, product)
	})
	return nil
}

// Remove asks the server to drop the product and filters it out locally only
// on acknowledgement. Removing an absent ID is a no-op after a successful
// round-trip.
func (s *Service) Remove(ctx context.Context, productID string) error {
	s.begin(OpRemove)

	if err := s.api.Delete(ctx, "/api/wishlist/remove/"+productID, nil); err != nil {
		s.reject(OpRemove, api.Message(err, msgRemoveFailed))
		return err
	}

	s.commit(func(st *State) {
		st.Loading[OpRemove] = false
		kept := st.Items[:0]
		for _, item := range st.Items {
			if item.ID != productID {
				kept = append(kept, item)
			}
		}
		st.Items = kept
	})
	return nil
}

// FetchAll replaces the local list wholesale with the server's.
func (s *Service) FetchAll(ctx context.Context) error {
	s.begin(OpFetch)

	var items []products.Product
	if err := s.api.Get(ctx, "/api/wishlist", nil, &items); err != nil {
		s.reject(OpFetch, api.Message(err, msgFetchFailed))
		return err
	}

	s.commit(func(st *State) {
		st.Loading[OpFetch] = false
		st.Items = items
	})
	return nil
}

// ClearError resets the error message of one operation.
func (s *Service) ClearError(op Op) {
	s.commit(func(st *State) { st.Errs[op] = "" })
}

func (s *Service) begin(op Op) {
	s.commit(func(st *State) {
		st.Loading[op] = true
		st.Errs[op] = ""
	})
}

func (s *Service) reject(op Op, msg string) {
	s.commit(func(st *State) {
		st.Loading[op] = false
		st.Errs[op] = msg
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
