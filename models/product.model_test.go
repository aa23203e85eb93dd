package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProduct_BeforeSave(t *testing.T) {
	valid := Product{Name: "Watch", Price: 120, Image: Image{PublicID: "img/1", URL: "https://cdn.example.com/1.jpg"}}
	assert.NoError(t, valid.BeforeSave())

	noURL := valid
	noURL.Image.URL = ""
	assert.ErrorIs(t, noURL.BeforeSave(), ErrIncompleteImage)

	noID := valid
	noID.Image.PublicID = ""
	assert.ErrorIs(t, noID.BeforeSave(), ErrIncompleteImage)

	negative := valid
	negative.Price = -1
	assert.ErrorIs(t, negative.BeforeSave(), ErrNegativePrice)
}

func TestCart_Lookups(t *testing.T) {
	productA := primitive.NewObjectID()
	productB := primitive.NewObjectID()
	cart := &Cart{Items: []CartItem{
		{ID: primitive.NewObjectID(), ProductID: productA, Quantity: 2},
		{ID: primitive.NewObjectID(), ProductID: productB, Quantity: 3},
	}}

	assert.Equal(t, 5, cart.TotalQuantity())
	assert.Same(t, &cart.Items[1], cart.ItemForProduct(productB))
	assert.Same(t, &cart.Items[0], cart.Item(cart.Items[0].ID))
	assert.Nil(t, cart.Item(primitive.NewObjectID()))
	assert.Nil(t, cart.ItemForProduct(primitive.NewObjectID()))
}

func TestUser_PublicDropsPassword(t *testing.T) {
	u := User{Name: "Ada", Password: "$2a$10$hash"}
	pub := u.Public()
	assert.Empty(t, pub.Password)
	assert.NotNil(t, pub.Orders)
	assert.Equal(t, "$2a$10$hash", u.Password)
}
