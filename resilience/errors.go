package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrBulkheadFull is returned when no slot became available within the
	// configured wait budget.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")
)
