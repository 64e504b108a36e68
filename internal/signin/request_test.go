package signin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantCPF string
		wantErr bool
	}{
		{name: "valid", body: `{"cpf":"12345678900"}`, wantCPF: "12345678900"},
		{name: "trims whitespace", body: `{"cpf":"  12345678900 "}`, wantCPF: "12345678900"},
		{name: "field name is case-insensitive", body: `{"Cpf":"12345678900"}`, wantCPF: "12345678900"},
		{name: "extra fields ignored", body: `{"cpf":"1","channel":"app"}`, wantCPF: "1"},
		{name: "empty body", body: ``, wantErr: true},
		{name: "malformed json", body: `{"cpf":`, wantErr: true},
		{name: "missing cpf", body: `{}`, wantErr: true},
		{name: "blank cpf", body: `{"cpf":"   "}`, wantErr: true},
		{name: "null body", body: `null`, wantErr: true},
		{name: "wrong type", body: `{"cpf":123}`, wantErr: true},
		{name: "dot segment", body: `{"cpf":"."}`, wantErr: true},
		{name: "double dot segment", body: `{"cpf":" .. "}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tt.body))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCPF, req.CPF)
		})
	}
}

func TestParseRequest_TooLarge(t *testing.T) {
	body := `{"cpf":"1","pad":"` + strings.Repeat("x", maxJSONBodyBytes) + `"}`

	_, err := ParseRequest([]byte(body))

	require.ErrorIs(t, err, ErrValidation)
}
