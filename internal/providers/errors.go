package providers

import (
	"errors"
	"fmt"
)

type rateLimitError struct {
	body string
}

func (e *rateLimitError) Error() string {
	if e.body == "" {
		return "rate limited"
	}
	return "rate limited: " + e.body
}

type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

type serverError struct {
	statusCode int
	body       string
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.statusCode, e.body)
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}

// IsRateLimited checks if an error came from a 429 response.
func IsRateLimited(err error) bool {
	var re *rateLimitError
	return errors.As(err, &re)
}

// classify maps a non-200 status to a typed error.
func classify(status int, body []byte) error {
	switch {
	case status == 429:
		return &rateLimitError{body: string(body)}
	case status == 401 || status == 403:
		return &authError{message: string(body)}
	case status >= 500:
		return &serverError{statusCode: status, body: string(body)}
	default:
		return fmt.Errorf("API error (status %d): %s", status, string(body))
	}
}
