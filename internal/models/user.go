package models

import (
	"strconv"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// Account roles
const (
	RoleStudent = "student"
	RoleClub    = "club"
	RoleAdmin   = "admin"
)

// User is a student, club or admin account stored in PostgreSQL
type User struct {
	gorm.Model  `json:"-"`
	Name        string  `json:"name"`
	Email       string  `json:"email" gorm:"uniqueIndex"`
	Password    string  `json:"-"` // bcrypt hash
	Role        string  `json:"role" gorm:"size:16;default:student"`
	University  string  `json:"university" gorm:"index"`
	FirebaseUID *string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
}

// PublicID is the identifier recorded in ad likes and interests
func (u *User) PublicID() string {
	return strconv.FormatUint(uint64(u.ID), 10)
}

// SignupRequest defines the request body for local account registration
type SignupRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=50"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Role       string `json:"role" validate:"omitempty,oneof=student club"`
	University string `json:"university" validate:"required"`
}

// SigninRequest defines the request body for email/password sign in
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest defines the request body for exchanging a Firebase ID token
type FirebaseLoginRequest struct {
	IDToken    string `json:"idToken" validate:"required"`
	University string `json:"university"`
}

// UpdateProfileRequest defines the request body for updating the caller's profile
type UpdateProfileRequest struct {
	Name       string `json:"name" validate:"omitempty,min=2,max=50"`
	University string `json:"university"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID     uint   `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	University string `json:"university"`
	jwt.RegisteredClaims
}
