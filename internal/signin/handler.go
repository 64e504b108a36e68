package signin

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"

	"cpf-signin/internal/customer"
	"cpf-signin/internal/identity"
	"cpf-signin/internal/observability"
)

// Handler runs one sign-in: validate, check the customer directory, provision
// the identity, exchange credentials, respond. The first failing stage ends
// the request.
type Handler struct {
	customers   CustomerChecker
	provisioner IdentityProvisioner
	exchanger   CredentialExchanger
	logger      *observability.Logger
	metrics     *observability.Metrics
}

// NewHandler panics on a nil collaborator. metrics may be nil.
func NewHandler(
	customers CustomerChecker,
	provisioner IdentityProvisioner,
	exchanger CredentialExchanger,
	logger *observability.Logger,
	metrics *observability.Metrics,
) *Handler {
	if customers == nil || provisioner == nil || exchanger == nil || logger == nil {
		panic("signin: nil dependency")
	}

	return &Handler{
		customers:   customers,
		provisioner: provisioner,
		exchanger:   exchanger,
		logger:      logger,
		metrics:     metrics,
	}
}

func (h *Handler) Handle(ctx context.Context, body []byte) (resp Response) {
	start := time.Now()
	var err error

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
			sentry.WithScope(func(scope *sentry.Scope) {
				scope.SetExtra("stack", string(debug.Stack()))
				observability.CaptureError(ctx, err, map[string]string{"stage": "signin"})
			})
			h.logger.Error("signin_panic", map[string]any{
				"panic":      rec,
				"request_id": observability.RequestIDFromContext(ctx),
			})
			resp = Failure(err)
		}
		h.metrics.ObserveSignIn(outcome(err), time.Since(start))
	}()

	var tokens identity.Tokens
	tokens, err = h.signIn(ctx, body)
	if err != nil {
		h.logFailure(ctx, err)
		return Failure(err)
	}

	return Success(tokens)
}

func (h *Handler) signIn(ctx context.Context, body []byte) (identity.Tokens, error) {
	req, err := ParseRequest(body)
	if err != nil {
		return identity.Tokens{}, err
	}
	fields := map[string]any{
		"cpf":        observability.MaskCPF(req.CPF),
		"request_id": observability.RequestIDFromContext(ctx),
	}

	if err := h.customers.Exists(ctx, req.CPF); err != nil {
		return identity.Tokens{}, err
	}

	provisioned, err := h.provisioner.Ensure(ctx, req.CPF)
	if err != nil {
		return identity.Tokens{}, err
	}
	h.metrics.ObserveProvision(string(provisioned))
	fields["provision"] = string(provisioned)

	tokens, err := h.exchanger.Exchange(ctx, req.CPF)
	if err != nil {
		return identity.Tokens{}, err
	}
	fields["sub"] = tokens.Subject

	h.logger.Info("signin_succeeded", fields)
	return tokens, nil
}

func (h *Handler) logFailure(ctx context.Context, err error) {
	fields := map[string]any{
		"error":      err.Error(),
		"outcome":    outcome(err),
		"request_id": observability.RequestIDFromContext(ctx),
	}

	switch {
	case errors.Is(err, ErrValidation):
		h.logger.Info("signin_rejected", fields)
	case errors.Is(err, customer.ErrCustomerNotFound):
		fields["backend_unavailable"] = errors.Is(err, customer.ErrBackendUnavailable)
		h.logger.Warn("signin_customer_not_found", fields)
	default:
		if code := identity.ErrorCode(err); code != "" {
			fields["error_code"] = code
		}
		h.logger.Error("signin_failed", fields)
		observability.CaptureError(ctx, err, map[string]string{"outcome": outcome(err)})
	}
}
