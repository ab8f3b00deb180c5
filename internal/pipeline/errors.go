package pipeline

import (
	"errors"
	"net/http"

	"github.com/arai-works/contextd/internal/extract"
	"github.com/arai-works/contextd/internal/notion"
)

// ErrorKind is the stable failure classification exposed to callers.
type ErrorKind string

const (
	KindInvalidInput        ErrorKind = "invalid_input"
	KindNotFound            ErrorKind = "not_found"
	KindUnauthorized        ErrorKind = "unauthorized"
	KindRateLimited         ErrorKind = "rate_limited"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindUnparsableResponse  ErrorKind = "unparsable_response"
	KindMissingCredential   ErrorKind = "missing_credential"
	KindStorageFailure      ErrorKind = "storage_failure"
)

// Error wraps an underlying failure with its classification and a message
// suitable for API responses.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to its stable HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Classify maps errors from the resolver, the Notion client, and the
// extractor onto the pipeline taxonomy. Classification of Notion failures
// goes by the API's own error code, not by HTTP status alone.
func Classify(err error) *Error {
	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}

	if errors.Is(err, notion.ErrInvalidURL) {
		return &Error{Kind: KindInvalidInput, Message: "not a valid Notion URL", Err: err}
	}

	var apiErr *notion.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case notion.CodeObjectNotFound:
			return &Error{
				Kind:    KindNotFound,
				Message: "Page not found. Check the URL or the page's access permissions.",
				Err:     err,
			}
		case notion.CodeUnauthorized:
			return &Error{
				Kind:    KindUnauthorized,
				Message: "Notion API authentication failed. Check the API key.",
				Err:     err,
			}
		case notion.CodeRateLimited:
			return &Error{
				Kind:    KindRateLimited,
				Message: "Request limit exceeded. Try again later.",
				Err:     err,
			}
		default:
			return &Error{Kind: KindUpstreamUnavailable, Message: apiErr.Message, Err: err}
		}
	}

	if errors.Is(err, extract.ErrMissingCredential) {
		return &Error{Kind: KindMissingCredential, Message: "generation API key is not configured", Err: err}
	}
	if errors.Is(err, extract.ErrUnparsable) {
		return &Error{Kind: KindUnparsableResponse, Message: "could not extract valid metadata from the generation response", Err: err}
	}
	var upErr *extract.UpstreamError
	if errors.As(err, &upErr) {
		return &Error{Kind: KindUpstreamUnavailable, Message: upErr.Error(), Err: err}
	}

	return &Error{Kind: KindUpstreamUnavailable, Message: err.Error(), Err: err}
}
