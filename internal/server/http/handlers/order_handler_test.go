package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polkiloo/fueldelivery/internal/domain/model"
)

func createFuelOrder(t *testing.T, env *handlerEnv, h *OrderHandler) int64 {
	t.Helper()
	w := performRequest(t, http.MethodPost, "/orders/fuel", "/orders/fuel", h.CreateFuel, actorOf(env.customer), map[string]any{
		"address":  "12 Harbour Road",
		"fuelType": "diesel",
		"liters":   40,
	})
	body := requireSuccess(t, w, http.StatusCreated)
	order := body["order"].(map[string]any)
	return int64(order["id"].(float64))
}

func orderTarget(id int64, suffix string) string {
	return fmt.Sprintf("/orders/%d%s", id, suffix)
}

func TestOrderHandlerCreateFuel(t *testing.T) {
	env := newHandlerEnv(t)
	h := NewOrderHandler(env.facade)

	w := performRequest(t, http.MethodPost, "/orders/fuel", "/orders/fuel", h.CreateFuel, actorOf(env.customer), map[string]any{
		"address":  "12 Harbour Road",
		"fuelType": "diesel",
		"liters":   40,
		"notes":    "gate code 1234",
	})
	body := requireSuccess(t, w, http.StatusCreated)
	require.Equal(t, "order created", body["message"])

	order := body["order"].(map[string]any)
	require.Equal(t, "fuel", order["kind"])
	require.Equal(t, "pending", order["status"])
	require.EqualValues(t, env.customer.ID, order["customerId"])
	require.NotContains(t, order, "price")
	require.NotContains(t, order, "driverId")
	require.ElementsMatch(t, []any{"priced", "cancelled"}, order["nextStatuses"])

	details := order["details"].(map[string]any)
	require.Equal(t, "diesel", details["fuelType"])
	require.EqualValues(t, 40, details["liters"])
}

func TestOrderHandlerCreateValidation(t *testing.T) {
	env := newHandlerEnv(t)
	h := NewOrderHandler(env.facade)

	w := performRequest(t, http.MethodPost, "/orders/fuel", "/orders/fuel", h.CreateFuel, actorOf(env.customer), map[string]any{
		"address": "12 Harbour Road",
		"liters":  40,
	})
	requireFailure(t, w, http.StatusBadRequest)

	w = performRequest(t, http.MethodPost, "/orders/product", "/orders/product", h.CreateProduct, actorOf(env.customer), map[string]any{
		"address":  "12 Harbour Road",
		"products": []any{},
	})
	requireFailure(t, w, http.StatusBadRequest)

	w = performRequest(t, http.MethodPost, "/orders/product", "/orders/product", h.CreateProduct, actorOf(env.customer), "{broken")
	body := requireFailure(t, w, http.StatusBadRequest)
	require.Equal(t, "invalid request body", body["error"])
}

func TestOrderHandlerCreateProduct(t *testing.T) {
	env := newHandlerEnv(t)
	h := NewOrderHandler(env.facade)

	w := performRequest(t, http.MethodPost, "/orders/product", "/orders/product", h.CreateProduct, actorOf(env.customer), map[string]any{
		"address": "4 Market Street",
		"products": []map[string]any{
			{"name": "gas cylinder", "quantity": 2},
			{"name": "engine oil", "quantity": 1},
		},
	})
	body := requireSuccess(t, w, http.StatusCreated)
	order := body["order"].(map[string]any)
	require.Equal(t, "product", order["kind"])
	details := order["details"].(map[string]any)
	require.Len(t, details["products"], 2)
}

func TestOrderHandlerGet(t *testing.T) {
	env := newHandlerEnv(t)
	h := NewOrderHandler(env.facade)
	id := createFuelOrder(t, env, h)

	w := performRequest(t, http.MethodGet, "/orders/:id", orderTarget(id, ""), h.Get, actorOf(env.customer), nil)
	requireSuccess(t, w, http.StatusOK)

	w = performRequest(t, http.MethodGet, "/orders/fuel/:id", fmt.Sprintf("/orders/fuel/%d", id), h.GetKind(model.OrderKindFuel), actorOf(env.monitor), nil)
	requireSuccess(t, w, http.StatusOK)

	w = performRequest(t, http.MethodGet, "/orders/product/:id", fmt.Sprintf("/orders/product/%d", id), h.GetKind(model.OrderKindProduct), actorOf(env.customer), nil)
	requireFailure(t, w, http.StatusNotFound)

	w = performRequest(t, http.MethodGet, "/orders/:id", orderTarget(id, ""), h.Get, actorOf(env.driver), nil)
	requireFailure(t, w, http.StatusForbidden)

	w = performRequest(t, http.MethodGet, "/orders/:id", orderTarget(999, ""), h.Get, actorOf(env.admin), nil)
	requireFailure(t, w, http.StatusNotFound)

	w = performRequest(t, http.MethodGet, "/orders/:id", "/orders/abc", h.Get, actorOf(env.admin), nil)
	body := requireFailure(t, w, http.StatusBadRequest)
	require.Equal(t, "invalid id", body["error"])
}

func TestOrderHandlerDeliveryFlow(t *testing.T) {
	env := newHandlerEnv(t)
	h := NewOrderHandler(env.facade)
	id := createFuelOrder(t, env, h)

	w := performRequest(t, http.MethodPatch, "/orders/:id/price", orderTarget(id, "/price"), h.SetPrice, actorOf(env.admin), map[string]any{"price": 125.5})
	body := requireSuccess(t, w, http.StatusOK)
	order := body["order"].(map[string]any)
	require.Equal(t, "priced", order["status"])
	require.EqualValues(t, 125.5, order["price"])

	w = performRequest(t, http.MethodPatch, "/orders/:id/assign-driver", orderTarget(id, "/assign-driver"), h.AssignDriver, actorOf(env.supervisor), map[string]any{"driverId": env.driver.ID})
	body = requireSuccess(t, w, http.StatusOK)
	order = body["order"].(map[string]any)
	require.Equal(t, "assigned", order["status"])
	require.EqualValues(t, env.driver.ID, order["driverId"])

	w = performRequest(t, http.MethodPatch, "/orders/:id/start", orderTarget(id, "/start"), h.Start, actorOf(env.driver), nil)
	body = requireSuccess(t, w, http.StatusOK)
	require.Equal(t, "in_progress", body["order"].(map[string]any)["status"])

	w = performRequest(t, http.MethodPatch, "/orders/:id/tracking", orderTarget(id, "/tracking"), h.Track, actorOf(env.driver), map[string]any{"lat": 32.08, "lng": 34.78})
	body = requireSuccess(t, w, http.StatusOK)
	tracking := body["order"].(map[string]any)["tracking"].(map[string]any)
	require.EqualValues(t, 32.08, tracking["lat"])
	require.EqualValues(t, 34.78, tracking["lng"])

	w = performRequest(t, http.MethodPatch, "/orders/:id/complete", orderTarget(id, "/complete"), h.Complete, actorOf(env.driver), nil)
	body = requireSuccess(t, w, http.StatusOK)
	order = body["order"].(map[string]any)
	require.Equal(t, "completed", order["status"])
	require.Empty(t, order["nextStatuses"])

	require.Len(t, env.notifications.For(env.customer.ID), 3)
	require.Len(t, env.notifications.For(env.driver.ID), 1)
}

func TestOrderHandlerTransitionErrors(t *testing.T) {
	env := newHandlerEnv(t)
	h := NewOrderHandler(env.facade)
	id := createFuelOrder(t, env, h)
	unverified := env.seed("0500000009", "New Driver", model.RoleDriver, false)

	w := performRequest(t, http.MethodPatch, "/orders/:id/price", orderTarget(id, "/price"), h.SetPrice, actorOf(env.customer), map[string]any{"price": 10})
	requireFailure(t, w, http.StatusForbidden)

	w = performRequest(t, http.MethodPatch, "/orders/:id/price", orderTarget(id, "/price"), h.SetPrice, actorOf(env.admin), map[string]any{"price": 0})
	body := requireFailure(t, w, http.StatusBadRequest)
	require.Equal(t, "invalid state: validation failed: price must be positive", body["error"])

	w = performRequest(t, http.MethodPatch, "/orders/:id/price", orderTarget(id, "/price"), h.SetPrice, actorOf(env.admin), map[string]any{})
	body = requireFailure(t, w, http.StatusBadRequest)
	require.Equal(t, "invalid request body", body["error"])

	w = performRequest(t, http.MethodPatch, "/orders/:id/assign-driver", orderTarget(id, "/assign-driver"), h.AssignDriver, actorOf(env.admin), map[string]any{"driverId": env.driver.ID})
	requireFailure(t, w, http.StatusBadRequest)

	w = performRequest(t, http.MethodPatch, "/orders/:id/price", orderTarget(id, "/price"), h.SetPrice, actorOf(env.admin), map[string]any{"price": 80})
	requireSuccess(t, w, http.StatusOK)

	w = performRequest(t, http.MethodPatch, "/orders/:id/price", orderTarget(id, "/price"), h.SetPrice, actorOf(env.admin), map[string]any{"price": 90})
	requireFailure(t, w, http.StatusBadRequest)

	w = performRequest(t, http.MethodPatch, "/orders/:id/assign-driver", orderTarget(id, "/assign-driver"), h.AssignDriver, actorOf(env.admin), map[string]any{"driverId": unverified.ID})
	body = requireFailure(t, w, http.StatusBadRequest)
	require.Contains(t, body["error"], "driver unavailable")

	w = performRequest(t, http.MethodPatch, "/orders/:id/start", orderTarget(id, "/start"), h.Start, actorOf(env.driver), nil)
	requireFailure(t, w, http.StatusForbidden)

	w = performRequest(t, http.MethodPatch, "/orders/:id/status", orderTarget(id, "/status"), h.ChangeStatus, actorOf(env.admin), map[string]any{"status": "pending"})
	requireFailure(t, w, http.StatusBadRequest)

	w = performRequest(t, http.MethodPatch, "/orders/:id/status", orderTarget(id, "/status"), h.ChangeStatus, actorOf(env.admin), map[string]any{"status": "lost"})
	requireFailure(t, w, http.StatusBadRequest)
}

func TestOrderHandlerChangeStatus(t *testing.T) {
	env := newHandlerEnv(t)
	h := NewOrderHandler(env.facade)
	id := createFuelOrder(t, env, h)

	w := performRequest(t, http.MethodPatch, "/orders/:id/status", orderTarget(id, "/status"), h.ChangeStatus, actorOf(env.admin), map[string]any{"status": "priced", "price": 60})
	body := requireSuccess(t, w, http.StatusOK)
	require.Equal(t, "order status updated", body["message"])

	w = performRequest(t, http.MethodPatch, "/orders/:id/status", orderTarget(id, "/status"), h.ChangeStatus, actorOf(env.supervisor), map[string]any{"status": "assigned", "driverId": env.driver.ID})
	body = requireSuccess(t, w, http.StatusOK)
	require.Equal(t, "assigned", body["order"].(map[string]any)["status"])

	w = performRequest(t, http.MethodPatch, "/orders/:id/status", orderTarget(id, "/status"), h.ChangeStatus, actorOf(env.supervisor), map[string]any{"status": "cancelled", "reason": "road closed"})
	body = requireSuccess(t, w, http.StatusOK)
	order := body["order"].(map[string]any)
	require.Equal(t, "cancelled", order["status"])
	require.Equal(t, "road closed", order["cancelReason"])
}

func TestOrderHandlerCancel(t *testing.T) {
	env := newHandlerEnv(t)
	h := NewOrderHandler(env.facade)

	id := createFuelOrder(t, env, h)
	w := performRequest(t, http.MethodPatch, "/orders/:id/cancel", orderTarget(id, "/cancel"), h.Cancel, actorOf(env.customer), nil)
	body := requireSuccess(t, w, http.StatusOK)
	require.Equal(t, "cancelled", body["order"].(map[string]any)["status"])

	w = performRequest(t, http.MethodPatch, "/orders/:id/cancel", orderTarget(id, "/cancel"), h.Cancel, actorOf(env.customer), nil)
	requireSuccess(t, w, http.StatusOK)

	id = createFuelOrder(t, env, h)
	w = performRequest(t, http.MethodPatch, "/orders/:id/cancel", orderTarget(id, "/cancel"), h.Cancel, actorOf(env.customer), map[string]any{"reason": "changed my mind"})
	body = requireSuccess(t, w, http.StatusOK)
	require.Equal(t, "changed my mind", body["order"].(map[string]any)["cancelReason"])

	id = createFuelOrder(t, env, h)
	w = performRequest(t, http.MethodPatch, "/orders/:id/cancel", orderTarget(id, "/cancel"), h.Cancel, actorOf(env.customer), "{")
	requireFailure(t, w, http.StatusBadRequest)

	w = performRequest(t, http.MethodPatch, "/orders/:id/cancel", orderTarget(id, "/cancel"), h.Cancel, actorOf(env.driver), nil)
	requireFailure(t, w, http.StatusForbidden)
}

func TestOrderHandlerList(t *testing.T) {
	env := newHandlerEnv(t)
	h := NewOrderHandler(env.facade)
	for i := 0; i < 3; i++ {
		createFuelOrder(t, env, h)
	}
	other := env.seed("0500000010", "Other", model.RoleCustomer, true)
	w := performRequest(t, http.MethodPost, "/orders/fuel", "/orders/fuel", h.CreateFuel, actorOf(other), map[string]any{
		"address": "1 Side Street", "fuelType": "petrol", "liters": 10,
	})
	requireSuccess(t, w, http.StatusCreated)

	w = performRequest(t, http.MethodGet, "/orders", "/orders?limit=2", h.List, actorOf(env.customer), nil)
	body := requireSuccess(t, w, http.StatusOK)
	require.Len(t, body["orders"], 2)
	pagination := body["pagination"].(map[string]any)
	require.EqualValues(t, 3, pagination["total"])
	require.EqualValues(t, 2, pagination["pages"])
	require.EqualValues(t, 2, pagination["limit"])

	w = performRequest(t, http.MethodGet, "/orders", "/orders", h.List, actorOf(env.monitor), nil)
	body = requireSuccess(t, w, http.StatusOK)
	require.Len(t, body["orders"], 4)

	w = performRequest(t, http.MethodGet, "/orders", fmt.Sprintf("/orders?customerId=%d", other.ID), h.List, actorOf(env.admin), nil)
	body = requireSuccess(t, w, http.StatusOK)
	require.Len(t, body["orders"], 1)

	w = performRequest(t, http.MethodGet, "/orders", "/orders", h.List, actorOf(env.driver), nil)
	body = requireSuccess(t, w, http.StatusOK)
	require.Empty(t, body["orders"])

	w = performRequest(t, http.MethodGet, "/orders", "/orders?status=lost", h.List, actorOf(env.admin), nil)
	requireFailure(t, w, http.StatusBadRequest)

	w = performRequest(t, http.MethodGet, "/orders", "/orders?driverId=abc", h.List, actorOf(env.admin), nil)
	requireFailure(t, w, http.StatusBadRequest)
}

func TestOrderHandlerStats(t *testing.T) {
	env := newHandlerEnv(t)
	h := NewOrderHandler(env.facade)
	createFuelOrder(t, env, h)

	w := performRequest(t, http.MethodGet, "/orders/stats", "/orders/stats", h.Stats, actorOf(env.monitor), nil)
	body := requireSuccess(t, w, http.StatusOK)
	require.Contains(t, body, "stats")

	w = performRequest(t, http.MethodGet, "/orders/stats", "/orders/stats", h.Stats, actorOf(env.customer), nil)
	requireFailure(t, w, http.StatusForbidden)
}
