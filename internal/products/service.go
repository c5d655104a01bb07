package products

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/Ndiapaly/NBM-Shop-Client/internal/api"
)

// User-facing fallback messages.
const (
	msgFetchFailed     = "Erreur lors de la récupération des produits"
	msgFetchOneFailed  = "Erreur lors de la récupération du produit"
	msgAddFailed       = "Erreur lors de l'ajout du produit"
	msgNoResponse      = "Aucune réponse du serveur"
	msgBadFormat       = "Format de réponse incorrect"
	msgInvalidProducts = "Certains produits ont des champs manquants"
)

// Service is the paginated catalog cache plus the single-product view.
// List fetches are stale-while-revalidate: an in-flight fetch only raises
// Loading, the cached page stays visible until the fetch settles.
type Service struct {
	mu    sync.RWMutex
	state State
	api   *api.Client

	// List-replacing fetches carry a sequence number; a settlement older
	// than the last applied one is discarded instead of overwriting a
	// fresher page (no last-settled-wins).
	listSeq     uint64
	listApplied uint64

	// Collapses concurrent fetches of the same product ID.
	sfg singleflight.Group

	notify func()
}

func NewService(client *api.Client, notify func()) *Service {
	return &Service{
		api:    client,
		notify: notify,
	}
}

// Snapshot returns a copy of the products state.
func (s *Service) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.state
	state.Items = make([]Product, len(s.state.Items))
	copy(state.Items, s.state.Items)
	if s.state.CurrentProduct != nil {
		current := *s.state.CurrentProduct
		state.CurrentProduct = &current
	}
	return state
}

// SetSelectedCategory records the active category filter.
func (s *Service) SetSelectedCategory(category string) {
	s.commit(func(st *State) {
		st.SelectedCategory = category
	})
}

// FetchList loads one catalog page. The reply is validated strictly before
// acceptance: a missing products array, or a single record without name,
// price or category, rejects the entire page and leaves Items untouched.
func (s *Service) FetchList(ctx context.Context, q ListQuery) error {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}

	seq := s.beginList()

	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("limit", strconv.Itoa(q.Limit))
	if q.Category != "" {
		query.Set("category", q.Category)
	}
	if q.Nouveaute {
		query.Set("nouveaute", "true")
	}
	if q.Promotion {
		query.Set("promotion", "true")
	}

	var resp listResponse
	err := s.api.Get(ctx, "/api/products", query, &resp)
	if err == nil {
		err = validateBatch(resp.Products)
	}
	if err != nil {
		s.settleList(seq, func(st *State) {
			st.Loading = false
			st.Err = fetchErrMessage(err)
		})
		return err
	}

	s.settleList(seq, func(st *State) {
		st.Loading = false
		st.Err = ""
		st.Items = resp.Products
		st.TotalPages = orDefault(resp.TotalPages, 1)
		st.CurrentPage = orDefault(resp.CurrentPage, q.Page)
	})
	return nil
}

// FetchByCategory replaces Items with the category-scoped result set.
// Pagination state is left alone.
func (s *Service) FetchByCategory(ctx context.Context, category string) error {
	seq := s.beginList()

	query := url.Values{}
	query.Set("category", category)

	var resp listResponse
	err := s.api.Get(ctx, "/api/produits", query, &resp)
	if err == nil {
		err = validateBatch(resp.Products)
	}
	if err != nil {
		s.settleList(seq, func(st *State) {
			st.Loading = false
			st.Err = fetchErrMessage(err)
		})
		return err
	}

	s.settleList(seq, func(st *State) {
		st.Loading = false
		st.Err = ""
		st.Items = resp.Products
	})
	return nil
}

// FetchByID populates the current-product slot, replacing any previous
// occupant. Concurrent fetches for the same ID share one request.
func (s *Service) FetchByID(ctx context.Context, id string) error {
	s.begin()

	v, err, _ := s.sfg.Do(id, func() (any, error) {
		var product Product
		if err := s.api.Get(ctx, "/api/produits/"+id, nil, &product); err != nil {
			return nil, err
		}
		return &product, nil
	})
	if err != nil {
		s.commit(func(st *State) {
			st.Loading = false
			st.Err = api.Message(err, msgFetchOneFailed)
		})
		return err
	}

	s.commit(func(st *State) {
		st.Loading = false
		st.Err = ""
		st.CurrentProduct = v.(*Product)
	})
	return nil
}

// AddProductForm is the multipart add-product submission.
type AddProductForm struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Brand       string
	Category    string
	Sizes       []Size
	Images      []api.File
}

// AddProduct submits a new product and, once the server confirms it,
// appends it to the cached page so it is visible without a re-fetch.
func (s *Service) AddProduct(ctx context.Context, form AddProductForm) error {
	s.begin()

	multipart := &api.MultipartForm{
		Fields: map[string]string{
			"name":        form.Name,
			"description": form.Description,
			"price":       form.Price.String(),
			"brand":       form.Brand,
			"category":    form.Category,
		},
		JSON: map[string]any{
			"sizes": form.Sizes,
		},
		Files: form.Images,
	}

	var created Product
	if err := s.api.PostMultipart(ctx, "/api/produits", multipart, &created); err != nil {
		s.commit(func(st *State) {
			st.Loading = false
			st.Err = api.Message(err, msgAddFailed)
		})
		return err
	}

	s.commit(func(st *State) {
		st.Loading = false
		st.Err = ""
		st.Items = append(st.Items, created)
	})
	return nil
}

// Batch validation errors, both a flavor of malformed response.
var (
	errMissingProducts = fmt.Errorf("%w: missing products array", api.ErrMalformedResponse)
	errInvalidRecord   = fmt.Errorf("%w: product record with missing fields", api.ErrMalformedResponse)
)

func validateBatch(items []Product) error {
	if items == nil {
		return errMissingProducts
	}
	for _, p := range items {
		if !p.valid() {
			return errInvalidRecord
		}
	}
	return nil
}

// fetchErrMessage maps the failure causes to distinct messages: server
// reported an error, request sent but no response, request never sent,
// malformed reply.
func fetchErrMessage(err error) string {
	var statusErr *api.StatusError
	var netErr *api.NetworkError
	var reqErr *api.RequestError
	switch {
	case errors.As(err, &statusErr):
		return api.Message(err, msgFetchFailed)
	case errors.As(err, &netErr):
		return msgNoResponse
	case errors.As(err, &reqErr):
		return reqErr.Error()
	case errors.Is(err, errInvalidRecord):
		return msgInvalidProducts
	case errors.Is(err, api.ErrMalformedResponse):
		return msgBadFormat
	default:
		return msgFetchFailed
	}
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// beginList raises Loading and hands out the next list sequence number.
func (s *Service) beginList() uint64 {
	s.mu.Lock()
	s.listSeq++
	seq := s.listSeq
	s.state.Loading = true
	s.state.Err = ""
	s.mu.Unlock()
	s.changed()
	return seq
}

// settleList applies a list settlement unless a fresher one already landed.
func (s *Service) settleList(seq uint64, mutate func(*State)) {
	s.mu.Lock()
	if seq <= s.listApplied {
		s.mu.Unlock()
		log.Printf("discarding stale catalog fetch (seq %d)", seq)
		return
	}
	s.listApplied = seq
	mutate(&s.state)
	s.mu.Unlock()
	s.changed()
}

func (s *Service) begin() {
	s.commit(func(st *State) {
		st.Loading = true
		st.Err = ""
	})
}

func (s *Service) commit(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	s.mu.Unlock()
	s.changed()
}

func (s *Service) changed() {
	if s.notify != nil {
		s.notify()
	}
}
