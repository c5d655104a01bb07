package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ndiapaly/NBM-Shop-Client/internal/api"
	"github.com/Ndiapaly/NBM-Shop-Client/internal/cart"
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

func sampleInput() CreateOrderInput {
	return CreateOrderInput{
		OrderItems: []OrderItem{
			{Product: "P1", Size: "42", Quantity: 2, Price: decimal.NewFromInt(10000)},
		},
		ShippingAddress: ShippingAddress{
			Address: "12 rue des Manguiers", City: "Dakar", Country: "Sénégal",
			PhoneNumber: "+221771234567",
		},
		PaymentMethod: "a la livraison",
		TotalPrice:    decimal.NewFromInt(20000),
	}
}

func TestCreateOrder_EmptyLines_NoNetworkCall(t *testing.T) {
	var called atomic.Bool
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	}))

	err := svc.CreateOrder(context.Background(), CreateOrderInput{})
	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.False(t, called.Load(), "empty order must reject before any network call")

	state := svc.Snapshot()
	assert.Equal(t, msgEmptyOrder, state.Err)
	assert.False(t, state.Success)
}

func TestCreateOrder_Success(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Idempotency-Key"))

		var input CreateOrderInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Len(t, input.OrderItems, 1)

		w.Write([]byte(`{"_id":"O1","orderItems":[{"product":"P1","size":"42","quantity":2,"price":10000}],"totalPrice":20000,"shippingPrice":1000,"status":"En attente"}`))
	}))

	require.NoError(t, svc.CreateOrder(context.Background(), sampleInput()))

	state := svc.Snapshot()
	assert.True(t, state.Success)
	require.NotNil(t, state.CurrentOrder)
	assert.Equal(t, "O1", state.CurrentOrder.ID)
	assert.False(t, state.Loading)
}

func TestCreateOrder_DoesNotTouchTheCart(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_id":"O1","totalPrice":20000}`))
	}))

	c := cart.New(nil)
	c.AddLine(cart.Line{ProductID: "P1", Size: "42", Quantity: 2, Price: decimal.NewFromInt(10000)})

	input := sampleInput()
	input.OrderItems = ItemsFromCart(c.Snapshot().Items)
	require.NoError(t, svc.CreateOrder(context.Background(), input))

	// Fulfillment alone leaves the cart untouched; clearing is the
	// caller's separate, observable step after seeing Success.
	assert.Len(t, c.Snapshot().Items, 1)
	assert.True(t, svc.Snapshot().Success)

	c.Clear()
	assert.Empty(t, c.Snapshot().Items)
}

func TestCreateOrder_Rejected(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"stock insuffisant"}`))
	}))

	err := svc.CreateOrder(context.Background(), sampleInput())
	require.Error(t, err)

	state := svc.Snapshot()
	assert.False(t, state.Success)
	assert.Equal(t, "stock insuffisant", state.Err)
	assert.Nil(t, state.CurrentOrder)
}

func TestFetchUserOrders_ReplacesWholesale(t *testing.T) {
	calls := 0
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/orders/me", r.URL.Path)
		if calls == 1 {
			w.Write([]byte(`[{"_id":"O1","totalPrice":5000},{"_id":"O2","totalPrice":7000}]`))
			return
		}
		w.Write([]byte(`[{"_id":"O3","totalPrice":9000}]`))
	}))

	require.NoError(t, svc.FetchUserOrders(context.Background()))
	assert.Len(t, svc.Snapshot().Orders, 2)

	require.NoError(t, svc.FetchUserOrders(context.Background()))
	state := svc.Snapshot()
	require.Len(t, state.Orders, 1)
	assert.Equal(t, "O3", state.Orders[0].ID)
}

func TestFetchOrderByID_GrandTotal(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders/O1", r.URL.Path)
		w.Write([]byte(`{"_id":"O1","totalPrice":5000,"shippingPrice":1000,"isPaid":false}`))
	}))

	require.NoError(t, svc.FetchOrderByID(context.Background(), "O1"))

	order := svc.Snapshot().CurrentOrder
	require.NotNil(t, order)
	assert.True(t, order.GrandTotal().Equal(decimal.NewFromInt(6000)),
		"grand total was %s", order.GrandTotal())
}

func TestApplyPaymentConfirmation_PatchesInMemory(t *testing.T) {
	var fetches atomic.Int32
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Write([]byte(`{"_id":"O1","totalPrice":5000,"shippingPrice":1000,"isPaid":false,"status":"En attente"}`))
	}))

	require.NoError(t, svc.FetchOrderByID(context.Background(), "O1"))
	paidAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	svc.ApplyPaymentConfirmation(PaymentConfirmation{PaidAt: paidAt, Status: "Payée"})

	order := svc.Snapshot().CurrentOrder
	assert.True(t, order.IsPaid)
	require.NotNil(t, order.PaidAt)
	assert.Equal(t, paidAt, *order.PaidAt)
	assert.Equal(t, "Payée", order.Status)
	assert.Equal(t, int32(1), fetches.Load(), "payment patch must not re-fetch")
}

func TestApplyPaymentConfirmation_NoCurrentOrderIsNoop(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	svc.ApplyPaymentConfirmation(PaymentConfirmation{PaidAt: time.Now()})

	assert.Nil(t, svc.Snapshot().CurrentOrder)
}

func TestClearSuccessAndError(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_id":"O1"}`))
	}))

	require.NoError(t, svc.CreateOrder(context.Background(), sampleInput()))
	require.True(t, svc.Snapshot().Success)

	svc.ClearSuccess()
	assert.False(t, svc.Snapshot().Success)

	require.Error(t, svc.CreateOrder(context.Background(), CreateOrderInput{}))
	svc.ClearError()
	assert.Empty(t, svc.Snapshot().Err)
}

func TestItemsFromCart_Projection(t *testing.T) {
	lines := []cart.Line{
		{ProductID: "P1", Size: "42", Quantity: 3, Price: decimal.NewFromInt(10000), Name: "Air Zoom"},
	}

	items := ItemsFromCart(lines)

	require.Len(t, items, 1)
	assert.Equal(t, OrderItem{
		Product: "P1", Size: "42", Quantity: 3, Price: decimal.NewFromInt(10000),
	}, items[0])
}
