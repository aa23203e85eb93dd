package controllers

import (
	"net/http"
	"shop-api/models"
	"shop-api/response"
	"shop-api/services"
)

// UserController handles signup, login and the caller's own profile.
type UserController struct {
	Auth *services.AuthService
}

// NewUserController creates a new UserController
func NewUserController(auth *services.AuthService) *UserController {
	return &UserController{Auth: auth}
}

type signupRequest struct {
	Name     string       `json:"name" validate:"required,max=100"`
	Email    string       `json:"email" validate:"required,email"`
	Password string       `json:"password" validate:"required,min=6"`
	Address  string       `json:"address" validate:"max=500"`
	Image    models.Image `json:"image"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Name    string        `json:"name" validate:"max=100"`
	Email   string        `json:"email" validate:"omitempty,email"`
	Address string        `json:"address" validate:"max=500"`
	Image   *models.Image `json:"image"`
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.Error(w, r, err)
		return
	}

	session, err := uc.Auth.Signup(r.Context(), services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		Image:    req.Image,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, response.Fields{"token": session.Token, "user": session.User})
}

// Login handles user login and returns a session token
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.Error(w, r, err)
		return
	}

	session, err := uc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"token": session.Token, "user": session.User})
}

// GetProfile returns the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	user, err := uc.Auth.GetProfile(r.Context(), id.UserID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"user": user})
}

// UpdateProfile changes the caller's name, email, address or image
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req updateProfileRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.Error(w, r, err)
		return
	}

	user, err := uc.Auth.UpdateProfile(r.Context(), id.UserID, models.ProfileUpdate{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		Image:   req.Image,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, response.Fields{"user": user})
}
