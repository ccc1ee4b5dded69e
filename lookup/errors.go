package lookup

import "errors"

// Sentinel errors for the lookup runtime and registry.
var (
	// ErrClosed indicates a resolution was attempted on a closed lookup.
	ErrClosed = errors.New("lookup: lookup is closed")

	// ErrTypeRequired indicates a registry operation with an empty
	// discriminator string.
	ErrTypeRequired = errors.New("lookup: lookup type is required")

	// ErrBuilderRequired indicates Register was called with a nil builder.
	ErrBuilderRequired = errors.New("lookup: builder is required")
)
