package controllers

import (
	"net/http"
	"shop-api/response"
	"shop-api/services"
)

// CategoryController handles category reads and admin management.
type CategoryController struct {
	Catalog *services.CatalogService
}

// NewCategoryController creates a new CategoryController
func NewCategoryController(catalog *services.CatalogService) *CategoryController {
	return &CategoryController{Catalog: catalog}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GetCategories lists every category
func (cc *CategoryController) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := cc.Catalog.ListCategories(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"count": len(categories), "categories": categories})
}

// GetCategoryByID returns a single category
func (cc *CategoryController) GetCategoryByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Category")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	category, err := cc.Catalog.GetCategory(r.Context(), id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"category": category})
}

// CreateCategory adds a category (Admin only)
func (cc *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.Error(w, r, err)
		return
	}
	category, err := cc.Catalog.CreateCategory(r.Context(), services.CategoryInput(req))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, response.Fields{"category": category})
}

// UpdateCategory renames or re-describes a category (Admin only)
func (cc *CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Category")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.Error(w, r, err)
		return
	}
	category, err := cc.Catalog.UpdateCategory(r.Context(), id, services.CategoryInput(req))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"category": category})
}

// DeleteCategory removes an unused category (Admin only)
func (cc *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Category")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if err := cc.Catalog.DeleteCategory(r.Context(), id); err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, "Category deleted")
}
