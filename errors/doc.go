/*
Package errors provides semantic error types for the entityfeed library.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound        = errors.New("entity not found")
	    ErrAlreadyExists   = errors.New("entity already exists")
	    ErrInvalidInput    = errors.New("invalid input")
	    ErrConditionFailed = errors.New("condition check failed")
	    ErrNoIndexMap      = errors.New("no index map found for type")
	    ErrFetchFailed     = errors.New("page fetch failed")
	    ErrWriteFailed     = errors.New("bulk write failed")
	)

Usage:

	// Check error type
	store, err := entityfeed.GetDataStore[User](mts, "users")
	if err != nil {
	    if errors.IsNotFound(err) {
	        // No store registered under that name
	        return nil, fmt.Errorf("users store is not configured")
	    }
	    return nil, err
	}

	// Create typed errors
	err := errors.NewNotFoundError("User", "123")
	err := errors.NewValidationError("email", "invalid format")
	err := errors.NewConditionFailedError("update", "version mismatch")

Feed traversals wrap page fetch failures in FetchError and bulk upserts
wrap write failures in ChunkError, so the failing page or chunk can be
recovered with errors.As:

	var ce *errors.ChunkError
	if stderrors.As(err, &ce) {
	    log.Printf("chunk %d starting at item %d failed", ce.Chunk, ce.Offset)
	}

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors