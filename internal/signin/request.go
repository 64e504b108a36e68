package signin

import (
	"encoding/json"
	"fmt"
	"strings"
)

const maxJSONBodyBytes = 1 << 20

// ParseRequest decodes the inbound body and trims the CPF. Every failure is
// ErrValidation.
func ParseRequest(body []byte) (AuthRequest, error) {
	if len(body) == 0 {
		return AuthRequest{}, fmt.Errorf("%w: empty body", ErrValidation)
	}
	if len(body) > maxJSONBodyBytes {
		return AuthRequest{}, fmt.Errorf("%w: body too large", ErrValidation)
	}

	var req AuthRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return AuthRequest{}, fmt.Errorf("%w: invalid json body: %w", ErrValidation, err)
	}

	req.CPF = strings.TrimSpace(req.CPF)
	if req.CPF == "" {
		return AuthRequest{}, fmt.Errorf("%w: empty cpf", ErrValidation)
	}
	if req.CPF == "." || req.CPF == ".." {
		return AuthRequest{}, fmt.Errorf("%w: cpf is a path segment", ErrValidation)
	}

	return req, nil
}
