// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FailureReason classifies why a query exhausted every strategy.
type FailureReason string

const (
	// ReasonNoResult means no provider returned anything usable.
	ReasonNoResult FailureReason = "no_result"
	// ReasonOutOfBounds means providers answered, but every candidate fell
	// outside Jamaica.
	ReasonOutOfBounds FailureReason = "out_of_bounds"
	// ReasonAmbiguousInput means the query was empty or unusable after
	// normalization.
	ReasonAmbiguousInput FailureReason = "ambiguous_input"
)

// ResolutionError reports an unresolvable query together with the reason.
type ResolutionError struct {
	Reason FailureReason
	Query  string
	Err    error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("resolving %q: %s", e.Query, e.Reason)
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the failure reason from an error chain.
func ReasonOf(err error) (FailureReason, bool) {
	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return resErr.Reason, true
	}

	return "", false
}

// ProviderError represents errors talking to the geocoding providers.
type ProviderError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies provider errors.
type ErrorType int

const (
	// ErrorTypeUnknown is an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit means the provider throttled us.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded means the daily quota ran out or access was denied.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout is a connection or deadline timeout.
	ErrorTypeTimeout
	// ErrorTypeInvalidRequest means the provider rejected the request itself.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError is a transport level failure.
	ErrorTypeNetworkError
)

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks whether the error is a rate limit.
func IsRateLimitError(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Type == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError checks whether the error is a quota problem.
func IsQuotaExceededError(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Type == ErrorTypeQuotaExceeded
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "quota exceeded")
}

// IsTimeoutError checks whether the error is a timeout.
func IsTimeoutError(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Type == ErrorTypeTimeout
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// ClassifyHTTPError maps an HTTP status code to a provider error.
func ClassifyHTTPError(statusCode int, _ string) *ProviderError {
	switch statusCode {
	case http.StatusTooManyRequests: // 429
		return &ProviderError{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
		}
	case http.StatusForbidden: // 403
		return &ProviderError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "quota exceeded or access denied",
		}
	case http.StatusBadRequest: // 400
		return &ProviderError{
			Type:    ErrorTypeInvalidRequest,
			Message: "invalid request",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &ProviderError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("service unavailable (status %d)", statusCode),
		}
	default:
		return &ProviderError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}

// ClassifyAPIStatus maps a non-OK Google Maps response status to a provider
// error. OK and ZERO_RESULTS never reach here.
func ClassifyAPIStatus(status string) *ProviderError {
	switch status {
	case "OVER_QUERY_LIMIT":
		return &ProviderError{
			Type:    ErrorTypeRateLimit,
			Message: "provider status OVER_QUERY_LIMIT",
		}
	case "OVER_DAILY_LIMIT", "REQUEST_DENIED":
		return &ProviderError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "provider status " + status,
		}
	case "INVALID_REQUEST":
		return &ProviderError{
			Type:    ErrorTypeInvalidRequest,
			Message: "provider status INVALID_REQUEST",
		}
	default:
		return &ProviderError{
			Type:    ErrorTypeUnknown,
			Message: "provider status " + status,
		}
	}
}
