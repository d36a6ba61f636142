package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles recognised by the RBAC guard.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleStaff    UserRole = "STAFF"
	RoleLecturer UserRole = "LECTURER"
)

// JWTClaims represents the access token payload issued by the identity service.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
