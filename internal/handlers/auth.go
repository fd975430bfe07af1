package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pepsifleet/fleet-maintenance/internal/auth"
	"github.com/pepsifleet/fleet-maintenance/internal/db"
	"github.com/pepsifleet/fleet-maintenance/internal/middleware"
	"github.com/pepsifleet/fleet-maintenance/internal/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
	}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "auth", "no se pudo leer el cuerpo de la solicitud")
		return
	}

	var loginReq models.LoginRequest
	if err := json.Unmarshal(body, &loginReq); err != nil {
		respondError(w, http.StatusBadRequest, "auth", "JSON inválido")
		return
	}

	if loginReq.Username == "" || loginReq.Password == "" {
		respondError(w, http.StatusBadRequest, "auth", "faltan campos requeridos: username, password")
		return
	}

	user, err := h.userCollection.FindUserByUsername(r.Context(), loginReq.Username)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "auth", "credenciales inválidas")
		return
	}

	if !user.IsActive {
		respondError(w, http.StatusUnauthorized, "auth", "la cuenta está desactivada")
		return
	}

	if !h.authService.CheckPassword(loginReq.Password, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "auth", "credenciales inválidas")
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		respondInternal(w, "auth", err)
		return
	}

	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		respondInternal(w, "auth", err)
		return
	}

	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID.Hex()); err != nil {
		log.WithError(err).Warn("Failed to update last login")
	}

	respondJSON(w, http.StatusOK, models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         *user,
	})
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "auth", "no se pudo leer el cuerpo de la solicitud")
		return
	}

	var registerReq models.RegisterRequest
	if err := json.Unmarshal(body, &registerReq); err != nil {
		respondError(w, http.StatusBadRequest, "auth", "JSON inválido")
		return
	}

	if err := h.authService.ValidateUsername(registerReq.Username); err != nil {
		respondError(w, http.StatusBadRequest, "auth", err.Error())
		return
	}

	if err := h.authService.ValidateEmail(registerReq.Email); err != nil {
		respondError(w, http.StatusBadRequest, "auth", err.Error())
		return
	}

	if err := h.authService.ValidatePassword(registerReq.Password); err != nil {
		respondError(w, http.StatusBadRequest, "auth", err.Error())
		return
	}

	if !models.IsValidRole(registerReq.Role) {
		respondError(w, http.StatusBadRequest, "auth", "rol inválido")
		return
	}

	if _, err := h.userCollection.FindUserByUsername(r.Context(), registerReq.Username); err == nil {
		respondError(w, http.StatusConflict, "auth", "el nombre de usuario ya existe")
		return
	}

	if _, err := h.userCollection.FindUserByEmail(r.Context(), registerReq.Email); err == nil {
		respondError(w, http.StatusConflict, "auth", "el email ya existe")
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		respondInternal(w, "auth", err)
		return
	}

	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     registerReq.Username,
		Email:        registerReq.Email,
		PasswordHash: passwordHash,
		Role:         registerReq.Role,
		Nombre:       registerReq.Nombre,
		Apellido:     registerReq.Apellido,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := h.userCollection.InsertUser(r.Context(), user); err != nil {
		respondInternal(w, "auth", err)
		return
	}

	token, err := h.authService.GenerateToken(&user)
	if err != nil {
		respondInternal(w, "auth", err)
		return
	}

	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		respondInternal(w, "auth", err)
		return
	}

	respondJSON(w, http.StatusCreated, models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         user,
	})
}

// GetProfile returns the current user's profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "auth", "contexto de usuario no encontrado")
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, "auth", "usuario no encontrado")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// ChangePassword changes the current user's password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "auth", "contexto de usuario no encontrado")
		return
	}

	var passwordReq struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&passwordReq); err != nil {
		respondError(w, http.StatusBadRequest, "auth", "JSON inválido")
		return
	}

	if passwordReq.CurrentPassword == "" || passwordReq.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "auth", "faltan campos requeridos: current_password, new_password")
		return
	}

	if err := h.authService.ValidatePassword(passwordReq.NewPassword); err != nil {
		respondError(w, http.StatusBadRequest, "auth", err.Error())
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, "auth", "usuario no encontrado")
		return
	}

	if !h.authService.CheckPassword(passwordReq.CurrentPassword, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "auth", "la contraseña actual es incorrecta")
		return
	}

	newPasswordHash, err := h.authService.HashPassword(passwordReq.NewPassword)
	if err != nil {
		respondInternal(w, "auth", err)
		return
	}

	user.PasswordHash = newPasswordHash
	if err := h.userCollection.UpdateUser(r.Context(), claims.UserID, *user); err != nil {
		respondInternal(w, "auth", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "contraseña actualizada"})
}
