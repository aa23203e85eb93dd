// Package memstore keeps every collection in process memory. It backs the
// test suites and the "memory" store driver used for local development.
package memstore

import (
	"bytes"
	"shop-api/models"
	"shop-api/store"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// New returns a fresh set of empty in-memory stores.
func New() store.Stores {
	return store.Stores{
		Users:      NewUserStore(),
		Categories: NewCategoryStore(),
		Products:   NewProductStore(),
		Carts:      NewCartStore(),
		Orders:     NewOrderStore(),
	}
}

func now() time.Time {
	return time.Now().UTC()
}

// newer orders documents by creation time, falling back to the id so documents
// created within the same instant keep insertion order.
func newer(aTime time.Time, aID primitive.ObjectID, bTime time.Time, bID primitive.ObjectID) bool {
	if !aTime.Equal(bTime) {
		return aTime.After(bTime)
	}
	return bytes.Compare(aID[:], bID[:]) > 0
}

func sortNewestFirst[T any](items []T, key func(T) (time.Time, primitive.ObjectID)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		return newer(ti, idi, tj, idj)
	})
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]struct{} {
	set := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Orders = append([]primitive.ObjectID{}, u.Orders...)
	return &c
}

func cloneCart(c *models.Cart) *models.Cart {
	out := *c
	out.Items = make([]models.CartItem, len(c.Items))
	for i, item := range c.Items {
		item.Product = nil
		out.Items[i] = item
	}
	return &out
}

func cloneOrder(o *models.Order) *models.Order {
	out := *o
	out.Owner = nil
	out.OrderItems = append([]models.OrderItem{}, o.OrderItems...)
	out.PaidAt = cloneTime(o.PaidAt)
	out.DeliveredAt = cloneTime(o.DeliveredAt)
	if o.PaymentResult != nil {
		pr := *o.PaymentResult
		out.PaymentResult = &pr
	}
	return &out
}
