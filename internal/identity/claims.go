package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type idTokenClaims struct {
	Subject string
	CPF     string
}

// parseIDTokenClaims reads claims without verifying the signature. The token
// was just returned by the provider over TLS and is handed to the caller as-is.
func parseIDTokenClaims(idToken string) (idTokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return idTokenClaims{}, fmt.Errorf("decode id token: %w", err)
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return idTokenClaims{}, fmt.Errorf("read id token subject: %w", err)
	}
	cpf, _ := claims[cpfAttribute].(string)

	return idTokenClaims{Subject: subject, CPF: cpf}, nil
}
