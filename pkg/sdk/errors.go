package tokenmeter

import "github.com/kailas-cloud/tokenmeter/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidCredential   = domain.ErrInvalidCredential
	ErrProviderUnreachable = domain.ErrProviderUnreachable
	ErrModelNotFound       = domain.ErrModelNotFound
)
