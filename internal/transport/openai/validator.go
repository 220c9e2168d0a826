// Package openai validates the configured provider credential against
// an OpenAI-compatible generative-AI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tokenmeter/internal/domain"
)

// Validator checks a provider API key with one remote call.
type Validator struct {
	client   *openai.Client
	provider string
	logger   *zap.Logger
}

// Config holds the provider settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Provider string
	Logger   *zap.Logger
}

// NewValidator creates a credential validator for an OpenAI-compatible API.
func NewValidator(cfg *Config) *Validator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Validator{
		client:   openai.NewClientWithConfig(clientCfg),
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Validate makes one authenticated call (ListModels, a free endpoint)
// and classifies the outcome: nil on success, domain.ErrInvalidCredential
// when the key is rejected, domain.ErrProviderUnreachable on transport
// failure, and a plain wrapped error otherwise.
func (v *Validator) Validate(ctx context.Context) error {
	if _, err := v.client.ListModels(ctx); err != nil {
		return classifyAPIError(err)
	}

	v.logger.Info("Provider credential validated", zap.String("provider", v.provider))
	return nil
}

// HealthCheck verifies API availability. Same call as Validate, but
// failures are not classified: health reporting only needs pass/fail.
func (v *Validator) HealthCheck(ctx context.Context) error {
	if _, err := v.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// classifyAPIError maps a go-openai error onto the credential error
// taxonomy. 401/403 mean the key itself was rejected; any other API
// status means we reached the provider but something else is wrong;
// everything else is a connectivity failure.
func classifyAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if isAuthStatus(apiErr.HTTPStatusCode) {
			return fmt.Errorf("provider rejected key (status %d): %w",
				apiErr.HTTPStatusCode, domain.ErrInvalidCredential)
		}
		return fmt.Errorf("provider error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, domain.ErrProviderUnreachable)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if isAuthStatus(reqErr.HTTPStatusCode) {
			return fmt.Errorf("provider rejected key (status %d): %w",
				reqErr.HTTPStatusCode, domain.ErrInvalidCredential)
		}
		return fmt.Errorf("provider error %d: %w",
			reqErr.HTTPStatusCode, domain.ErrProviderUnreachable)
	}

	return fmt.Errorf("credential check failed: %v: %w", err, domain.ErrProviderUnreachable)
}

func isAuthStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
