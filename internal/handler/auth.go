package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/prestasys/loan-origination/internal/auth"
	"github.com/prestasys/loan-origination/internal/domain"
	"github.com/prestasys/loan-origination/pkg/response"
)

type AuthHandler struct {
	service   *auth.Service
	validator *validator.Validate
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		service:   authService,
		validator: validator.New(),
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid request", err)
		return
	}

	state, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, state)
}

// ChangePassword handles POST /auth/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	// A session can only change its own password.
	req.Username = auth.UsernameFromContext(r.Context())

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid request", err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), &req); err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, map[string]string{"status": "password updated"})
}

// ListUsers handles GET /users
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, users)
}

// CreateUser handles POST /users
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid request", err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, user)
}

// UpdateUser handles PUT /users/{userId}
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		response.BadRequest(w, "Invalid user ID", err)
		return
	}

	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid request", err)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), userID, &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, user)
}

// DeleteUser handles DELETE /users/{userId}
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		response.BadRequest(w, "Invalid user ID", err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, map[string]string{"status": "deleted"})
}
