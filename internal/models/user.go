package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleAdmin        Role = "admin"
	RolePlanificador Role = "planificador"
	RoleSupervisor   Role = "supervisor"
	RoleMecanico     Role = "mecanico"
	RoleChofer       Role = "chofer"
	RoleGuardia      Role = "guardia"
)

// User represents a user in the system
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"rol" json:"rol"`
	Nombre       string             `bson:"nombre" json:"nombre"`
	Apellido     string             `bson:"apellido" json:"apellido"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// NombreCompleto returns the user's display name as shown on work orders.
func (u *User) NombreCompleto() string {
	if u.Apellido == "" {
		return u.Nombre
	}
	return u.Nombre + " " + u.Apellido
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Role     Role   `json:"rol"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Nombre   string `json:"nombre"`
	Role     Role   `json:"rol"`
	Exp      int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RolePlanificador, RoleSupervisor, RoleMecanico, RoleChofer, RoleGuardia:
		return true
	default:
		return false
	}
}
