package services

import (
	"context"
	"errors"
	"shop-api/logger"
	"shop-api/metrics"
	"shop-api/models"
	"shop-api/store"
	"shop-api/utils"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrderService places orders and drives their lifecycle.
type OrderService struct {
	orders   store.OrderStore
	products store.ProductStore
	users    store.UserStore
	mailer   utils.Mailer
	strict   bool
	now      func() time.Time
}

// OrderOptions tunes the order lifecycle.
type OrderOptions struct {
	// StrictTransitions rejects admin status changes outside the adjacency list.
	StrictTransitions bool
}

// NewOrderService creates an OrderService. mailer may be nil.
func NewOrderService(orders store.OrderStore, products store.ProductStore, users store.UserStore, mailer utils.Mailer, opts OrderOptions) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		users:    users,
		mailer:   mailer,
		strict:   opts.StrictTransitions,
		now:      utcNow,
	}
}

// OrderItemInput is one requested line at checkout.
type OrderItemInput struct {
	ProductID primitive.ObjectID
	Quantity  int
}

// CreateOrderInput is the checkout request. Item prices come from the catalog;
// shipping and tax are taken as given.
type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
	ShippingCost    decimal.Decimal
	Tax             decimal.Decimal
}

// Create validates the checkout, snapshots the items from the catalog and
// persists the order in Processing.
func (s *OrderService) Create(ctx context.Context, caller Identity, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, Validation("No order items")
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return nil, Validation("Order item quantity must be at least 1")
		}
	}
	if field := in.ShippingAddress.MissingField(); field != "" {
		return nil, Validation("Shipping address %s is required", field)
	}
	paymentMethod := strings.TrimSpace(in.PaymentMethod)
	if paymentMethod == "" {
		return nil, Validation("Payment method is required")
	}
	if in.ShippingCost.IsNegative() {
		return nil, Validation("Shipping cost cannot be negative")
	}
	if in.Tax.IsNegative() {
		return nil, Validation("Tax cannot be negative")
	}

	items, subtotal, err := s.snapshotItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	shipping := in.ShippingCost.Round(2)
	tax := in.Tax.Round(2)
	total := subtotal.Add(shipping).Add(tax).Round(2)

	now := s.now()
	order := &models.Order{
		UserID:          caller.UserID,
		OrderItems:      items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   paymentMethod,
		Subtotal:        subtotal.InexactFloat64(),
		ShippingCost:    shipping.InexactFloat64(),
		Tax:             tax.InexactFloat64(),
		Total:           total.InexactFloat64(),
		Status:          models.StatusProcessing,
		TrackingNumber:  models.DefaultTrackingNumber,
	}
	payment := "cod"
	if paymentMethod != models.CashOnDelivery {
		payment = "paid"
		order.IsPaid = true
		order.PaidAt = &now
		order.PaymentResult = &models.PaymentResult{
			ID:           uuid.NewString(),
			Status:       models.PaymentCompleted,
			UpdateTime:   now,
			EmailAddress: caller.Email,
		}
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, Internal(err)
	}
	metrics.OrdersCreated.WithLabelValues(payment).Inc()

	log := logger.FromContext(ctx).With(zap.String("order_id", order.ID.Hex()))
	if err := s.users.AppendOrder(ctx, caller.UserID, order.ID); err != nil {
		log.Error("failed to append order to user history", zap.Error(err))
	}
	if s.mailer != nil && caller.Email != "" {
		if err := s.mailer.Send(ctx, utils.OrderConfirmation(caller.Name, caller.Email, order)); err != nil {
			log.Warn("failed to send order confirmation", zap.Error(err))
		}
	}
	log.Info("order created", zap.Float64("total", order.Total), zap.String("payment", payment))

	order.Owner = &models.OrderOwner{ID: caller.UserID, Name: caller.Name, Email: caller.Email}
	return order, nil
}

// snapshotItems copies name, price and image of each product and sums the subtotal.
func (s *OrderService) snapshotItems(ctx context.Context, lines []OrderItemInput) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]primitive.ObjectID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, Internal(err)
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, decimal.Zero, NotFound("Product %s not found", line.ProductID.Hex())
		}
		price := decimal.NewFromFloat(p.Price)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  line.Quantity,
			Price:     p.Price,
			Image:     p.Image,
		})
	}
	return items, subtotal.Round(2), nil
}

// List returns every order for admins and only the caller's own otherwise.
func (s *OrderService) List(ctx context.Context, caller Identity) ([]models.Order, error) {
	filter := store.OrderFilter{}
	if !caller.IsAdmin() {
		filter.UserID = &caller.UserID
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, Internal(err)
	}
	if err := s.resolveOwners(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Get returns one order visible to the caller.
func (s *OrderService) Get(ctx context.Context, id primitive.ObjectID, caller Identity) (*models.Order, error) {
	order, err := s.findVisible(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	return s.withOwner(ctx, order)
}

func (s *OrderService) findVisible(ctx context.Context, id primitive.ObjectID, caller Identity) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Order")
	}
	if !caller.IsAdmin() && !order.BelongsTo(caller.UserID) {
		return nil, Forbidden("Not authorized to access this order")
	}
	return order, nil
}

// Cancel moves an undelivered order to Cancelled. Cancelling twice is not an error.
func (s *OrderService) Cancel(ctx context.Context, id primitive.ObjectID, caller Identity) (*models.Order, error) {
	order, err := s.findVisible(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if order.IsDelivered {
		return nil, InvalidTransition("Cannot cancel a delivered order")
	}
	updated, err := s.orders.ChangeStatus(ctx, id, models.StatusChange{
		Status:             models.StatusCancelled,
		RequireUndelivered: true,
	})
	if errors.Is(err, store.ErrConflict) {
		return nil, InvalidTransition("Cannot cancel a delivered order")
	}
	if err != nil {
		return nil, storeError(err, "Order")
	}
	metrics.OrderStatusChanges.WithLabelValues(string(models.StatusCancelled)).Inc()
	return s.withOwner(ctx, updated)
}

// UpdateStatus sets the order status, optionally with a tracking number.
// Delivered also stamps isDelivered and deliveredAt. A delivered order is never
// cancelled; in strict mode every change must follow the adjacency list.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, trackingNumber string) (*models.Order, error) {
	if !status.IsValid() {
		return nil, Validation("Invalid status. Must be one of: Processing, Shipped, Delivered, Cancelled")
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Order")
	}

	change := models.StatusChange{Status: status, TrackingNumber: strings.TrimSpace(trackingNumber)}
	switch {
	case status == models.StatusCancelled:
		if order.IsDelivered {
			return nil, InvalidTransition("Cannot cancel a delivered order")
		}
		change.RequireUndelivered = true
	case status == models.StatusDelivered && !order.IsDelivered:
		deliveredAt := s.now()
		change.DeliveredAt = &deliveredAt
	}
	if s.strict {
		if !order.Status.CanTransitionTo(status) {
			return nil, InvalidTransition("Cannot change order status from %s to %s", order.Status, status)
		}
		change.From = []models.OrderStatus{order.Status}
	}

	updated, err := s.orders.ChangeStatus(ctx, id, change)
	if errors.Is(err, store.ErrConflict) {
		return nil, InvalidTransition("Order changed concurrently, cannot set status to %s", status)
	}
	if err != nil {
		return nil, storeError(err, "Order")
	}
	if order.Status != status {
		metrics.OrderStatusChanges.WithLabelValues(string(status)).Inc()
		logger.FromContext(ctx).Info("order status changed",
			zap.String("order_id", id.Hex()),
			zap.String("from", string(order.Status)),
			zap.String("to", string(status)),
		)
	}
	return s.withOwner(ctx, updated)
}

// UpdatePayment marks the order paid, storing result or a synthesized one.
func (s *OrderService) UpdatePayment(ctx context.Context, id primitive.ObjectID, result *models.PaymentResult) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Order")
	}
	now := s.now()

	var stored models.PaymentResult
	if result != nil {
		stored = *result
	}
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Status == "" {
		stored.Status = models.PaymentCompleted
	}
	if stored.UpdateTime.IsZero() {
		stored.UpdateTime = now
	}
	if stored.EmailAddress == "" {
		if owner, err := s.users.FindByID(ctx, order.UserID); err == nil {
			stored.EmailAddress = owner.Email
		}
	}

	updated, err := s.orders.MarkPaid(ctx, id, now, stored)
	if err != nil {
		return nil, storeError(err, "Order")
	}
	return s.withOwner(ctx, updated)
}

func (s *OrderService) withOwner(ctx context.Context, order *models.Order) (*models.Order, error) {
	orders := []models.Order{*order}
	if err := s.resolveOwners(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// resolveOwners fills Order.Owner with one batched user lookup.
func (s *OrderService) resolveOwners(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.UserID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return Internal(err)
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range orders {
		if u, ok := byID[orders[i].UserID]; ok {
			orders[i].Owner = &models.OrderOwner{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}
	return nil
}
