package controllers

import (
	"net/http"
	"shop-api/response"
	"shop-api/services"
)

// AdminUserController handles user administration (Admin only).
type AdminUserController struct {
	Users *services.UserService
}

// NewAdminUserController creates a new AdminUserController
func NewAdminUserController(users *services.UserService) *AdminUserController {
	return &AdminUserController{Users: users}
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// GetUsers lists every account
func (ac *AdminUserController) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := ac.Users.List(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"count": len(users), "users": users})
}

// GetUserByID returns one account
func (ac *AdminUserController) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "User")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	user, err := ac.Users.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"user": user})
}

// DeleteUser removes an account other than the caller's
func (ac *AdminUserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	admin, err := caller(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	id, err := pathID(r, "id", "User")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if err := ac.Users.Delete(r.Context(), admin, id); err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, "User deleted")
}

// UpdateUserRole grants or revokes the admin role
func (ac *AdminUserController) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	admin, err := caller(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	id, err := pathID(r, "id", "User")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req roleRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.Error(w, r, err)
		return
	}
	user, err := ac.Users.UpdateRole(r.Context(), admin, id, req.Role)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"user": user})
}
