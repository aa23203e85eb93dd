package controllers

import (
	"net/http"
	"shop-api/response"
	"shop-api/services"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartController handles cart-related requests
type CartController struct {
	Cart *services.CartService
}

// NewCartController creates a new CartController
func NewCartController(cart *services.CartService) *CartController {
	return &CartController{Cart: cart}
}

type addToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity"`
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the caller's cart, creating it on first read
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	cart, err := cc.Cart.Get(r.Context(), id.UserID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"cart": cart})
}

// AddToCart adds a product to the user's cart. Quantity defaults to 1.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req addToCartRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.Error(w, r, err)
		return
	}
	productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
	if err != nil {
		response.Error(w, r, services.NotFound("Product not found"))
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := cc.Cart.AddItem(r.Context(), id.UserID, productID, quantity)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"cart": cart})
}

// UpdateCartItem sets the quantity of one line
func (cc *CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	itemID, err := pathID(r, "itemId", "Item")
	if err != nil {
		response.Error(w, r, services.NotFound("Item not found in cart"))
		return
	}
	var req cartQuantityRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.Error(w, r, err)
		return
	}

	cart, err := cc.Cart.UpdateItemQuantity(r.Context(), id.UserID, itemID, req.Quantity)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"cart": cart})
}

// RemoveFromCart removes one line from the cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	itemID, err := pathID(r, "itemId", "Item")
	if err != nil {
		response.Error(w, r, services.NotFound("Item not found in cart"))
		return
	}

	cart, err := cc.Cart.RemoveItem(r.Context(), id.UserID, itemID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"cart": cart})
}

// ClearCart empties the cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	cart, err := cc.Cart.Clear(r.Context(), id.UserID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"cart": cart})
}
