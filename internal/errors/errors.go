package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a marksite error code.
type ErrorCode string

const (
	ErrNotFound           ErrorCode = "NOT_FOUND"            // 404
	ErrFetchFailed        ErrorCode = "FETCH_FAILED"         // 502
	ErrInvalidFrontMatter ErrorCode = "INVALID_FRONT_MATTER" // 422
	ErrPreloadFailed      ErrorCode = "PRELOAD_FAILED"       // 500
	ErrInternal           ErrorCode = "INTERNAL"             // 500
)

// SiteError represents a structured error with code, status, and details.
type SiteError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// Cause is the wrapped underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *SiteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *SiteError) Unwrap() error {
	return e.Cause
}

// NewNotFound creates a 404 error for an unknown page, document, or article.
func NewNotFound(identifier string) *SiteError {
	return &SiteError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("page not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFetchFailed creates a 502 error for an upstream fetch failure.
// The URL and the underlying cause are recorded; fetches are never retried.
func NewFetchFailed(url string, cause error) *SiteError {
	msg := fmt.Sprintf("fetch failed: %s", url)
	if cause != nil {
		msg = fmt.Sprintf("fetch failed: %s: %v", url, cause)
	}
	return &SiteError{
		Code:    ErrFetchFailed,
		Status:  502,
		Message: msg,
		Details: map[string]any{"url": url},
		Cause:   cause,
	}
}

// NewFetchStatus creates a 502 error for a non-success upstream HTTP status.
func NewFetchStatus(url string, status int) *SiteError {
	return &SiteError{
		Code:    ErrFetchFailed,
		Status:  502,
		Message: fmt.Sprintf("fetch failed: %s: upstream status %d", url, status),
		Details: map[string]any{"url": url, "upstream_status": status},
	}
}

// NewInvalidFrontMatter creates a 422 error for blog source missing required
// metadata keys.
func NewInvalidFrontMatter(slug string, missing []string) *SiteError {
	return &SiteError{
		Code:    ErrInvalidFrontMatter,
		Status:  422,
		Message: fmt.Sprintf("article %q missing front matter keys: %s", slug, strings.Join(missing, ", ")),
		Details: map[string]any{"slug": slug, "missing_keys": missing},
	}
}

// NewInvalidDate creates a 422 error for an unparseable front matter date.
func NewInvalidDate(slug, value string, cause error) *SiteError {
	return &SiteError{
		Code:    ErrInvalidFrontMatter,
		Status:  422,
		Message: fmt.Sprintf("article %q has invalid date %q (want YYYY/MM/DD)", slug, value),
		Details: map[string]any{"slug": slug, "date": value},
		Cause:   cause,
	}
}

// NewPreloadFailed creates a 500 error for a startup preload failure.
// Preload is fail-fast: the service must not start with a partial index.
func NewPreloadFailed(slug string, cause error) *SiteError {
	return &SiteError{
		Code:    ErrPreloadFailed,
		Status:  500,
		Message: fmt.Sprintf("preload failed for article %q: %v", slug, cause),
		Details: map[string]any{"slug": slug},
		Cause:   cause,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SiteError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SiteError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Cause:   err,
	}
}

// Is checks if an error is a SiteError with the given code, unwrapping as
// needed so wrapped causes still match.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		if sErr, ok := err.(*SiteError); ok && sErr.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
