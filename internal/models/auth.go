package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the bearer token payload issued by the identity provider.
// Subject carries the employee id; EmployeeID is accepted as an alias.
type JWTClaims struct {
	EmployeeID string   `json:"employee_id,omitempty"`
	Name       string   `json:"name"`
	Role       UserRole `json:"role"`
	jwt.RegisteredClaims
}

// ActorID returns the employee id the token speaks for.
func (c *JWTClaims) ActorID() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.EmployeeID
}
