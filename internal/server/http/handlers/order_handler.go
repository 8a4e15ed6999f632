package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/fueldelivery/internal/domain/model"
	"github.com/polkiloo/fueldelivery/internal/server/http/dto"
	"github.com/polkiloo/fueldelivery/internal/usecase"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// CreateFuel handles POST /api/orders/fuel.
func (h *OrderHandler) CreateFuel(c *gin.Context) {
	var req dto.FuelOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.facade.CreateFuelOrder(c.Request.Context(), CurrentActor(c), model.OrderDetails{
		Address:  req.Address,
		Notes:    req.Notes,
		FuelType: req.FuelType,
		Liters:   req.Liters,
	})
	h.reply(c, http.StatusCreated, "order created", order, err)
}

// CreateProduct handles POST /api/orders/product.
func (h *OrderHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.facade.CreateProductOrder(c.Request.Context(), CurrentActor(c), model.OrderDetails{
		Address:  req.Address,
		Notes:    req.Notes,
		Products: req.Products,
	})
	h.reply(c, http.StatusCreated, "order created", order, err)
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	var filter model.OrderFilter
	if s := c.Query("status"); s != "" {
		status := model.OrderStatus(s)
		filter.Status = &status
	}
	if k := c.Query("kind"); k != "" {
		kind := model.OrderKind(k)
		filter.Kind = &kind
	}
	var ok bool
	if filter.CustomerID, ok = queryInt64(c, "customerId"); !ok {
		return
	}
	if filter.DriverID, ok = queryInt64(c, "driverId"); !ok {
		return
	}
	page := queryPage(c)

	orders, total, err := h.facade.Orders(c.Request.Context(), CurrentActor(c), filter, page)
	if err != nil {
		fail(c, err)
		return
	}
	payload := paginated(page, total)
	payload["orders"] = dto.NewOrderResponses(orders)
	respond(c, http.StatusOK, "", payload)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), CurrentActor(c), id)
	h.reply(c, http.StatusOK, "", order, err)
}

// GetKind returns a handler for GET /api/orders/<kind>/:id.
func (h *OrderHandler) GetKind(kind model.OrderKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		order, err := h.facade.OrderOfKind(c.Request.Context(), CurrentActor(c), id, kind)
		h.reply(c, http.StatusOK, "", order, err)
	}
}

// ChangeStatus handles PATCH /api/orders/:id/status.
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.facade.ChangeOrderStatus(c.Request.Context(), CurrentActor(c), id, usecase.StatusChange{
		Status:   model.OrderStatus(req.Status),
		Price:    req.Price,
		DriverID: req.DriverID,
		Reason:   req.Reason,
	})
	h.reply(c, http.StatusOK, "order status updated", order, err)
}

// SetPrice handles PATCH /api/orders/:id/price.
func (h *OrderHandler) SetPrice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.PriceRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.facade.SetOrderPrice(c.Request.Context(), CurrentActor(c), id, *req.Price)
	h.reply(c, http.StatusOK, "order priced", order, err)
}

// AssignDriver handles PATCH /api/orders/:id/assign-driver.
func (h *OrderHandler) AssignDriver(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignDriverRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.facade.AssignDriver(c.Request.Context(), CurrentActor(c), id, *req.DriverID)
	h.reply(c, http.StatusOK, "driver assigned", order, err)
}

// Track handles PATCH /api/orders/:id/tracking.
func (h *OrderHandler) Track(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.TrackingRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.facade.TrackOrder(c.Request.Context(), CurrentActor(c), id, *req.Lat, *req.Lng)
	h.reply(c, http.StatusOK, "tracking updated", order, err)
}

// Start handles PATCH /api/orders/:id/start.
func (h *OrderHandler) Start(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.StartOrder(c.Request.Context(), CurrentActor(c), id)
	h.reply(c, http.StatusOK, "delivery started", order, err)
}

// Complete handles PATCH /api/orders/:id/complete.
func (h *OrderHandler) Complete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.CompleteOrder(c.Request.Context(), CurrentActor(c), id)
	h.reply(c, http.StatusOK, "delivery completed", order, err)
}

// Cancel handles PATCH /api/orders/:id/cancel. The body is optional.
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body")
		return
	}
	order, err := h.facade.CancelOrder(c.Request.Context(), CurrentActor(c), id, req.Reason)
	h.reply(c, http.StatusOK, "order cancelled", order, err)
}

// Stats handles GET /api/orders/stats.
func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.facade.OrderStats(c.Request.Context(), CurrentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"stats": stats})
}

func (h *OrderHandler) reply(c *gin.Context, status int, message string, order *model.Order, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, status, message, gin.H{"order": dto.NewOrderResponse(*order)})
}
