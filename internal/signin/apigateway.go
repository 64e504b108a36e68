package signin

import (
	"context"
	"encoding/base64"

	"github.com/aws/aws-lambda-go/events"

	"cpf-signin/internal/observability"
)

// HandleAPIGateway is the Lambda entry point for API Gateway proxy events.
// It never returns an error; every failure is a status code.
func (h *Handler) HandleAPIGateway(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.RequestContext.RequestID != "" {
		ctx = observability.WithRequestID(ctx, req.RequestContext.RequestID)
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			decoded = nil
		}
		body = decoded
	}

	resp := h.Handle(ctx, body)
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}, nil
}
