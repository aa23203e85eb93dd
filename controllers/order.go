package controllers

import (
	"net/http"
	"shop-api/models"
	"shop-api/response"
	"shop-api/services"

	"github.com/shopspring/decimal"
)

// OrderController handles order-related requests
type OrderController struct {
	Orders *services.OrderService
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// orderItemRequest mirrors the line the mobile client sends. Name, price and
// image are accepted for compatibility; the catalog values are used instead.
type orderItemRequest struct {
	Product  string           `json:"product" validate:"required"`
	Quantity int              `json:"quantity"`
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	Image    *models.Image    `json:"image"`
}

// createOrderRequest carries the checkout. Client subtotal and total are
// ignored and recomputed.
type createOrderRequest struct {
	OrderItems      []orderItemRequest     `json:"orderItems" validate:"dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ShippingCost    *decimal.Decimal       `json:"shippingCost"`
	Tax             *decimal.Decimal       `json:"tax"`
	Subtotal        *decimal.Decimal       `json:"subtotal"`
	Total           *decimal.Decimal       `json:"total"`
}

func (req createOrderRequest) input() (services.CreateOrderInput, error) {
	in := services.CreateOrderInput{
		Items:           make([]services.OrderItemInput, 0, len(req.OrderItems)),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ShippingCost:    decimal.Zero,
		Tax:             decimal.Zero,
	}
	if req.ShippingCost != nil {
		in.ShippingCost = *req.ShippingCost
	}
	if req.Tax != nil {
		in.Tax = *req.Tax
	}
	for _, item := range req.OrderItems {
		id, err := services.ParseID(item.Product, "Product")
		if err != nil {
			return in, err
		}
		in.Items = append(in.Items, services.OrderItemInput{ProductID: id, Quantity: item.Quantity})
	}
	return in, nil
}

type orderStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"trackingNumber" validate:"max=100"`
}

// CreateOrder places an order for the caller
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req createOrderRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.Error(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		response.Error(w, r, err)
		return
	}

	order, err := oc.Orders.Create(r.Context(), id, in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, response.Fields{"order": order})
}

// GetOrders lists the caller's orders, or every order for admins
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	orders, err := oc.Orders.List(r.Context(), id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"count": len(orders), "orders": orders})
}

// GetOrderByID returns one order visible to the caller
func (oc *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	orderID, err := pathID(r, "id", "Order")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	order, err := oc.Orders.Get(r.Context(), orderID, id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"order": order})
}

// CancelOrder cancels an undelivered order owned by the caller (or any order for admins)
func (oc *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	orderID, err := pathID(r, "id", "Order")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	order, err := oc.Orders.Cancel(r.Context(), orderID, id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"order": order})
}

// UpdateOrderStatus moves an order to a new status (Admin only)
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id", "Order")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req orderStatusRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.Error(w, r, err)
		return
	}
	order, err := oc.Orders.UpdateStatus(r.Context(), orderID, models.OrderStatus(req.Status), req.TrackingNumber)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"order": order})
}

// UpdateOrderPaymentStatus marks an order paid (Admin only). The payment
// result body is optional.
func (oc *OrderController) UpdateOrderPaymentStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id", "Order")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var result *models.PaymentResult
	if err := decodeJSON(r, &result, true); err != nil {
		response.Error(w, r, err)
		return
	}
	order, err := oc.Orders.UpdatePayment(r.Context(), orderID, result)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"order": order})
}
