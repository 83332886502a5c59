package model

import (
	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	ID       int
	Name     string
	Login    string
	Password string
	Balance  float64
}

type UserClaims struct {
	jwt.RegisteredClaims
}

// AuthData groups everything a fresh login/registration hands back.
type AuthData struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
}
