package orders

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/Ndiapaly/NBM-Shop-Client/internal/api"
)

// ErrEmptyOrder means checkout was attempted with no order lines. It is
// reported before any network call.
var ErrEmptyOrder = errors.New("no order lines to submit")

// User-facing fallback messages.
const (
	msgEmptyOrder     = "Aucun article dans la commande"
	msgCreateFailed   = "Erreur lors de la création de la commande"
	msgFetchAllFailed = "Erreur lors de la récupération des commandes"
	msgFetchOneFailed = "Erreur lors de la récupération de la commande"
)

// Service handles checkout and order history. Creating an order does NOT
// clear the cart: the caller observes Success and drives the cart-clear
// itself, keeping the two domains decoupled.
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

// Snapshot returns a copy of the orders state.
func (s *Service) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.state
	state.Orders = make([]Order, len(s.state.Orders))
	copy(state.Orders, s.state.Orders)
	if s.state.CurrentOrder != nil {
		current := *s.state.CurrentOrder
		state.CurrentOrder = &current
	}
	return state
}

// CreateOrder submits the checkout. An empty line list rejects before any
// network call. The idempotency key shields against double submission of
// the same cart on retries.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) error {
	if len(input.OrderItems) == 0 {
		s.commit(func(st *State) {
			st.Loading = false
			st.Err = msgEmptyOrder
			st.Success = false
		})
		return ErrEmptyOrder
	}

	s.commit(func(st *State) {
		st.Loading = true
		st.Err = ""
		st.Success = false
	})

	var created Order
	err := s.api.Post(ctx, "/api/orders", input, &created,
		api.WithHeader("X-Idempotency-Key", uuid.NewString()))
	if err != nil {
		s.commit(func(st *State) {
			st.Loading = false
			st.Err = api.Message(err, msgCreateFailed)
			st.Success = false
		})
		return err
	}

	s.commit(func(st *State) {
		st.Loading = false
		st.Err = ""
		st.CurrentOrder = &created
		st.Success = true
	})
	return nil
}

// FetchUserOrders replaces the order history wholesale.
func (s *Service) FetchUserOrders(ctx context.Context) error {
	s.begin()

	var orders []Order
	if err := s.api.Get(ctx, "/api/orders/me", nil, &orders); err != nil {
		s.reject(api.Message(err, msgFetchAllFailed))
		return err
	}

	s.commit(func(st *State) {
		st.Loading = false
		st.Err = ""
		st.Orders = orders
	})
	return nil
}

// FetchOrderByID replaces the current-order slot.
func (s *Service) FetchOrderByID(ctx context.Context, id string) error {
	s.begin()

	var order Order
	if err := s.api.Get(ctx, "/api/orders/"+id, nil, &order); err != nil {
		s.reject(api.Message(err, msgFetchOneFailed))
		return err
	}

	s.commit(func(st *State) {
		st.Loading = false
		st.Err = ""
		st.CurrentOrder = &order
	})
	return nil
}

// ApplyPaymentConfirmation patches the in-memory current order after a
// successful payment round-trip, without a re-fetch. No-op when no current
// order is loaded.
func (s *Service) ApplyPaymentConfirmation(conf PaymentConfirmation) {
	s.commit(func(st *State) {
		if st.CurrentOrder == nil {
			return
		}
		paidAt := conf.PaidAt
		st.CurrentOrder.IsPaid = true
		st.CurrentOrder.PaidAt = &paidAt
		if conf.Status != "" {
			st.CurrentOrder.Status = conf.Status
		}
	})
}

// ClearError resets the error message between attempts.
func (s *Service) ClearError() {
	s.commit(func(st *State) { st.Err = "" })
}

// ClearSuccess resets the checkout flag between attempts.
func (s *Service) ClearSuccess() {
	s.commit(func(st *State) { st.Success = false })
}

func (s *Service) begin() {
	s.commit(func(st *State) {
		st.Loading = true
		st.Err = ""
	})
}

func (s *Service) reject(msg string) {
	s.commit(func(st *State) {
		st.Loading = false
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
