package services

// Error taxonomy shared by all services; handlers map these to HTTP statuses
// in one place.

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// UpstreamError marks a retryable provider failure (video metadata, file proxy).
type UpstreamError struct{ Message string }

func (e *UpstreamError) Error() string { return e.Message }

// DataError marks a non-retryable problem with stored content data, e.g. a
// malformed source URL. The content stays visible but cannot be opened.
type DataError struct{ Message string }

func (e *DataError) Error() string { return e.Message }
