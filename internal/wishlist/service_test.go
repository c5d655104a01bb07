package wishlist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ndiapaly/NBM-Shop-Client/internal/api"
	"github.com/Ndiapaly/NBM-Shop-Client/internal/products"
)

type noTokens struct{}

func (noTokens) Token() (string, bool) { return "", false }

func setupService(t *testing.T, handler http.Handler) *Service {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := api.New(server.URL, 5*time.Second, noTokens{})
	t.Cleanup(client.CloseIdleConnections)

	return NewService(client, nil)
}

func product(id, name string) products.Product {
	return products.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.NewFromInt(10000),
		Category: "running",
	}
}

func TestAdd_AppendsOnlyAfterAck(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/wishlist/add", r.URL.Path)

		var req addRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "P1", req.ProductID)

		w.Write([]byte(`{"message":"ok"}`))
	}))

	require.NoError(t, svc.Add(context.Background(), product("P1", "Air Zoom")))

	state := svc.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "Air Zoom", state.Items[0].Name)
	assert.False(t, state.Loading[OpAdd])
}

func TestAdd_DuplicateIDIsDropped(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, svc.Add(context.Background(), product("P1", "Air Zoom")))
	require.NoError(t, svc.Add(context.Background(), product("P1", "Air Zoom")))

	assert.Len(t, svc.Snapshot().Items, 1)
}

func TestAdd_RacingAddsNeverDoubleInsert(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Add(context.Background(), product("P1", "Air Zoom"))
		}()
	}
	wg.Wait()

	assert.Len(t, svc.Snapshot().Items, 1)
}

func TestAdd_NetworkFailureLeavesItemsUnchanged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	client := api.New(server.URL, time.Second, noTokens{})
	svc := NewService(client, nil)

	err := svc.Add(context.Background(), product("P1", "Air Zoom"))
	require.Error(t, err)

	state := svc.Snapshot()
	assert.Empty(t, state.Items, "no optimistic entry may appear then disappear")
	assert.Equal(t, msgAddFailed, state.Errs[OpAdd])
	assert.False(t, state.Loading[OpAdd])
}

func TestAdd_ServerRejectionMessage(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"produit déjà dans la wishlist"}`))
	}))

	require.Error(t, svc.Add(context.Background(), product("P1", "Air Zoom")))

	state := svc.Snapshot()
	assert.Empty(t, state.Items)
	assert.Equal(t, "produit déjà dans la wishlist", state.Errs[OpAdd])
}

func TestRemove_FiltersOnlyAfterAck(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			assert.Equal(t, "/api/wishlist/remove/P1", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, svc.Add(context.Background(), product("P1", "Air Zoom")))
	require.NoError(t, svc.Add(context.Background(), product("P2", "Gel Kayano")))

	require.NoError(t, svc.Remove(context.Background(), "P1"))

	state := svc.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "P2", state.Items[0].ID)
}

func TestRemove_FailureLeavesItemsUnchanged(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"indisponible"}`))
			return
		}
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, svc.Add(context.Background(), product("P1", "Air Zoom")))
	require.Error(t, svc.Remove(context.Background(), "P1"))

	state := svc.Snapshot()
	assert.Len(t, state.Items, 1)
	assert.Equal(t, "indisponible", state.Errs[OpRemove])
}

func TestRemove_AbsentIDIsNoop(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, svc.Remove(context.Background(), "P404"))

	assert.Empty(t, svc.Snapshot().Items)
}

func TestFetchAll_ReplacesWholesale(t *testing.T) {
	calls := 0
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Write([]byte(`{}`))
			return
		}
		calls++
		assert.Equal(t, "/api/wishlist", r.URL.Path)
		w.Write([]byte(`[{"_id":"P8","name":"Pegasus","price":11000,"category":"running"}]`))
	}))

	require.NoError(t, svc.Add(context.Background(), product("P1", "Air Zoom")))
	require.NoError(t, svc.FetchAll(context.Background()))

	state := svc.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "P8", state.Items[0].ID, "local list is replaced, not merged")
	assert.Equal(t, 1, calls)
}

func TestOperations_CarryIndependentErrors(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"échec suppression"}`))
		default:
			w.Write([]byte(`{}`))
		}
	}))

	require.NoError(t, svc.Add(context.Background(), product("P1", "Air Zoom")))
	require.Error(t, svc.Remove(context.Background(), "P1"))

	state := svc.Snapshot()
	assert.Equal(t, "échec suppression", state.Errs[OpRemove])
	assert.Empty(t, state.Errs[OpAdd], "a failed removal must not mask the add slot")

	svc.ClearError(OpRemove)
	assert.Empty(t, svc.Snapshot().Errs[OpRemove])
}

func TestSnapshot_IsACopy(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, svc.Add(context.Background(), product("P1", "Air Zoom")))

	snap := svc.Snapshot()
	snap.Items[0].Name = "mutated"

	assert.Equal(t, "Air Zoom", svc.Snapshot().Items[0].Name)
}
