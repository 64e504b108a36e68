package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"cpf-signin/internal/observability"
)

var ErrAuthExchange = errors.New("credential exchange failed")

type Tokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	// Subject is the provider's user id taken from the ID token.
	Subject string
}

type Exchanger struct {
	api          CognitoAPI
	clientID     string
	clientSecret string
	password     string
	logger       *observability.Logger
}

// NewExchanger builds an exchanger for an app client. clientSecret may be
// empty for public clients.
func NewExchanger(api CognitoAPI, clientID, clientSecret, password string) *Exchanger {
	return &Exchanger{api: api, clientID: clientID, clientSecret: clientSecret, password: password}
}

// WithLogger reports ID tokens whose claims cannot be read.
func (e *Exchanger) WithLogger(logger *observability.Logger) *Exchanger {
	e.logger = logger
	return e
}

// Exchange runs USER_PASSWORD_AUTH for cpf with the shared password.
func (e *Exchanger) Exchange(ctx context.Context, cpf string) (Tokens, error) {
	params := map[string]string{
		"USERNAME": cpf,
		"PASSWORD": e.password,
	}
	if e.clientSecret != "" {
		params["SECRET_HASH"] = SecretHash(cpf, e.clientID, e.clientSecret)
	}

	out, err := e.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		ClientId:       aws.String(e.clientID),
		AuthParameters: params,
	})
	if err != nil {
		return Tokens{}, fmt.Errorf("%w: %w", ErrAuthExchange, err)
	}
	if out.ChallengeName != "" {
		return Tokens{}, fmt.Errorf("%w: unexpected challenge %s", ErrAuthExchange, out.ChallengeName)
	}

	result := out.AuthenticationResult
	if result == nil {
		return Tokens{}, fmt.Errorf("%w: missing authentication result", ErrAuthExchange)
	}

	tokens := Tokens{
		AccessToken:  aws.ToString(result.AccessToken),
		IDToken:      aws.ToString(result.IdToken),
		RefreshToken: aws.ToString(result.RefreshToken),
	}
	if tokens.AccessToken == "" || tokens.IDToken == "" || tokens.RefreshToken == "" {
		return Tokens{}, fmt.Errorf("%w: incomplete token set", ErrAuthExchange)
	}

	// Tokens are opaque to the caller; unreadable claims only cost the subject.
	claims, err := parseIDTokenClaims(tokens.IDToken)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("id_token_claims_unreadable", map[string]any{
				"error": err.Error(),
				"cpf":   observability.MaskCPF(cpf),
			})
		}
		return tokens, nil
	}
	if claims.CPF != "" && claims.CPF != cpf {
		return Tokens{}, fmt.Errorf("%w: id token issued for a different cpf", ErrAuthExchange)
	}
	tokens.Subject = claims.Subject

	return tokens, nil
}

// SecretHash computes the SECRET_HASH auth parameter required by app clients
// that have a client secret.
func SecretHash(username, clientID, clientSecret string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	_, _ = mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
