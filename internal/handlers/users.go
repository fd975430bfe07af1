package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pepsifleet/fleet-maintenance/internal/auth"
	"github.com/pepsifleet/fleet-maintenance/internal/db"
	"github.com/pepsifleet/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler handles user administration.
type UserHandler struct {
	authService *auth.Service
	users       db.UserCollection
}

// NewUserHandler creates a new user administration handler.
func NewUserHandler(authService *auth.Service, users db.UserCollection) *UserHandler {
	return &UserHandler{authService: authService, users: users}
}

// List returns users, optionally filtered by role (?rol=mecanico).
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if rol := r.URL.Query().Get("rol"); rol != "" {
		filter["rol"] = rol
	}

	users, err := h.users.FindUsers(r.Context(), filter)
	if err != nil {
		respondInternal(w, "usuarios", err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// Create registers a user on behalf of an administrator.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "usuarios", "JSON inválido")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "usuarios", "faltan campos requeridos: username, email, password")
		return
	}
	if !models.IsValidRole(req.Role) {
		respondError(w, http.StatusBadRequest, "usuarios", "rol inválido")
		return
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, "usuarios", err.Error())
		return
	}

	if _, err := h.users.FindUserByUsername(r.Context(), req.Username); err == nil {
		respondError(w, http.StatusConflict, "usuarios", "el nombre de usuario ya existe")
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		respondInternal(w, "usuarios", err)
		return
	}

	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		Nombre:       req.Nombre,
		Apellido:     req.Apellido,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := h.users.InsertUser(r.Context(), user); err != nil {
		respondInternal(w, "usuarios", err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// Update modifies a user's profile fields or role.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string      `json:"email"`
		Nombre   string      `json:"nombre"`
		Apellido string      `json:"apellido"`
		Role     models.Role `json:"rol"`
		IsActive *bool       `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "usuarios", "JSON inválido")
		return
	}

	id := chi.URLParam(r, "id")
	user, err := h.users.FindUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "usuarios", "usuario no encontrado")
			return
		}
		respondInternal(w, "usuarios", err)
		return
	}

	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Nombre != "" {
		user.Nombre = req.Nombre
	}
	if req.Apellido != "" {
		user.Apellido = req.Apellido
	}
	if req.Role != "" {
		if !models.IsValidRole(req.Role) {
			respondError(w, http.StatusBadRequest, "usuarios", "rol inválido")
			return
		}
		user.Role = req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.users.UpdateUser(r.Context(), id, *user); err != nil {
		respondInternal(w, "usuarios", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Delete removes a user.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "usuarios", "usuario no encontrado")
			return
		}
		respondInternal(w, "usuarios", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "usuario eliminado"})
}
