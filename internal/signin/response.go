package signin

import (
	"encoding/json"
	"errors"
	"net/http"

	"cpf-signin/internal/customer"
	"cpf-signin/internal/identity"
)

const (
	messageCPFRequired      = "CPF is required"
	messageCustomerNotFound = "Customer not found"
	messageInternalError    = "Internal server error"
	messageTooManyRequests  = "Too many sign-in attempts"

	contentTypeJSON = "application/json"
	contentTypeText = "text/plain; charset=utf-8"
)

// Response is the transport-neutral result of a sign-in.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

func Success(tokens identity.Tokens) Response {
	payload, err := json.Marshal(AuthResponse{
		AccessToken:  tokens.AccessToken,
		IDToken:      tokens.IDToken,
		RefreshToken: tokens.RefreshToken,
	})
	if err != nil {
		return textResponse(http.StatusInternalServerError, messageInternalError)
	}

	return Response{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": contentTypeJSON},
		Body:       string(payload),
	}
}

// Failure never includes err's text in the body.
func Failure(err error) Response {
	switch {
	case errors.Is(err, ErrValidation):
		return textResponse(http.StatusBadRequest, messageCPFRequired)
	case errors.Is(err, customer.ErrCustomerNotFound):
		return textResponse(http.StatusUnauthorized, messageCustomerNotFound)
	default:
		return textResponse(http.StatusInternalServerError, messageInternalError)
	}
}

func textResponse(status int, message string) Response {
	return Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": contentTypeText},
		Body:       message,
	}
}

// outcome is the metrics label for a failure.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrValidation):
		return "invalid_request"
	case errors.Is(err, customer.ErrCustomerNotFound):
		return "customer_not_found"
	case errors.Is(err, identity.ErrProvisioning):
		return "provisioning_error"
	case errors.Is(err, identity.ErrAuthExchange):
		return "exchange_error"
	default:
		return "internal_error"
	}
}
