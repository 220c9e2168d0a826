package domain

import "errors"

var (
	// ErrInvalidCredential signals a provider API key rejected by the remote service.
	ErrInvalidCredential = errors.New("invalid provider credential")
	// ErrProviderUnreachable signals a connectivity failure talking to the provider.
	ErrProviderUnreachable = errors.New("provider unreachable")
	// ErrModelNotFound signals that no usage has been recorded for a model.
	ErrModelNotFound = errors.New("model not found")
)
