package models

import "github.com/golang-jwt/jwt/v5"

// Actor identifies who is performing an operation. The API layer builds it
// from validated bearer tokens; the services trust it as given.
type Actor struct {
	ID      string
	Name    string
	IsAdmin bool
}

// AuthClaims represents the JWT payload accepted from the identity provider.
type AuthClaims struct {
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Actor converts validated claims into the identity the services consume.
func (c *AuthClaims) Actor() Actor {
	return Actor{ID: c.Subject, Name: c.Name, IsAdmin: c.Admin}
}
