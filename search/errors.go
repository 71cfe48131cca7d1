package search

import (
	"errors"
	"fmt"
)

var (
	ErrDomainNotAllowed = errors.New("domain not allowed")
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrRedirectLoop     = errors.New("redirect loop")
	ErrPrivateAddress   = errors.New("destination resolves to a private address")
)

// InputError is the only error kind surfaced to callers. It aborts the whole request.
type InputError struct {
	Field   string
	Message string
}

func NewInputError(field, message string) *InputError {
	return &InputError{Field: field, Message: message}
}

func (e *InputError) Error() string {
	return e.Message
}

// BackendError reports a failed search provider call for one domain.
type BackendError struct {
	Domain     string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend search on %s: status %d", e.Domain, e.StatusCode)
	}
	return fmt.Sprintf("backend search on %s: %v", e.Domain, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

type FetchErrorKind string

const (
	FetchNetwork       FetchErrorKind = "network"
	FetchTimeout       FetchErrorKind = "timeout"
	FetchStatus        FetchErrorKind = "status"
	FetchSSRF          FetchErrorKind = "ssrf"
	FetchRedirectLimit FetchErrorKind = "redirect_limit"
	FetchContentType   FetchErrorKind = "content_type"
)

// FetchError reports why a page could not be retrieved.
type FetchError struct {
	Kind FetchErrorKind
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a failed extraction step. It never aborts enrichment.
type ExtractionError struct {
	Step string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Step, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

const genericErrorMessage = "search failed due to an internal error"

// Sanitize returns the message that may be shown to a caller for err.
func Sanitize(err error) string {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return inputErr.Message
	}
	return genericErrorMessage
}
