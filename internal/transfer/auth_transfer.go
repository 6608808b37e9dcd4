package transfer

import "github.com/golang-jwt/jwt/v5"

// CustomClaims carries the project identity through session cookies and
// through the OAuth state parameter.
type CustomClaims struct {
	ProjectID string `json:"project_id"`
	Provider  string `json:"provider,omitempty"`
	jwt.RegisteredClaims
}
