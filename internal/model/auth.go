package model

import "github.com/golang-jwt/jwt/v5"

// OwnerClaims are JWT claims identifying a survey author
type OwnerClaims struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	jwt.RegisteredClaims
}

// User identifies whoever is acting on a request
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GuestName is recorded for anonymous respondents
const GuestName = "Guest"

// LoginRequest is the request body for owner login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}
