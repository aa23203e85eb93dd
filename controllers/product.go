package controllers

import (
	"net/http"
	"shop-api/models"
	"shop-api/response"
	"shop-api/services"
	"shop-api/store"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductController handles product-related requests
type ProductController struct {
	Catalog *services.CatalogService
}

// NewProductController creates a new ProductController
func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{Catalog: catalog}
}

// productRequest is shared by create and update; absent fields stay nil.
type productRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Category    *string          `json:"category"`
	Image       *models.Image    `json:"image"`
}

func (req productRequest) input() (services.ProductInput, error) {
	in := services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	}
	if req.Price != nil {
		price := req.Price.Round(2).InexactFloat64()
		in.Price = &price
	}
	if req.Category != nil {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(*req.Category))
		if err != nil {
			return in, services.Validation("Invalid category")
		}
		in.CategoryID = &id
	}
	return in, nil
}

// GetProducts retrieves all products, optionally narrowed by ?category= and ?search=
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	var filter store.ProductFilter
	query := r.URL.Query()
	if raw := query.Get("category"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			response.Error(w, r, services.Validation("Invalid category"))
			return
		}
		filter.CategoryID = &id
	}
	filter.Search = strings.TrimSpace(query.Get("search"))

	products, err := pc.Catalog.ListProducts(r.Context(), filter)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"count": len(products), "products": products})
}

// GetProductByID retrieves a single product
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Product")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	product, err := pc.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"product": product})
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.Error(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		response.Error(w, r, err)
		return
	}
	product, err := pc.Catalog.CreateProduct(r.Context(), in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, response.Fields{"product": product})
}

// UpdateProduct updates an existing product (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Product")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.Error(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		response.Error(w, r, err)
		return
	}
	product, err := pc.Catalog.UpdateProduct(r.Context(), id, in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"product": product})
}

// DeleteProduct deletes a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Product")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if err := pc.Catalog.DeleteProduct(r.Context(), id); err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, "Product deleted")
}
