package signin

import (
	"context"
	"errors"

	"cpf-signin/internal/identity"
)

var ErrValidation = errors.New("cpf is required")

type AuthRequest struct {
	CPF string `json:"cpf"`
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

type CustomerChecker interface {
	Exists(ctx context.Context, cpf string) error
}

type IdentityProvisioner interface {
	Ensure(ctx context.Context, cpf string) (identity.ProvisionOutcome, error)
}

type CredentialExchanger interface {
	Exchange(ctx context.Context, cpf string) (identity.Tokens, error)
}
