// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.
package client

import (
	"errors"
	"net/http"
)

// Kind classifies an API failure.
type Kind int

const (
	// KindOther covers transport failures and every non-auth HTTP error.
	KindOther Kind = iota
	// KindUnauthorized means the backend rejected or missed the credential.
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "other"
	}
}

// GenericMessage is used when the backend did not supply a detail string.
const GenericMessage = "API error"

// Error is the single error type returned for failed API calls. Message is
// the backend's detail text, shown to the operator unchanged. Status is 0 when
// no response was received.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// kindFor maps a status code to a Kind. The backend answers both a missing
// and an invalid bearer with 401.
func kindFor(status int) Kind {
	if status == http.StatusUnauthorized {
		return KindUnauthorized
	}
	return KindOther
}

// newStatusError builds an Error from a non-2xx reply and its decoded body.
func newStatusError(status int, body any) *Error {
	msg := GenericMessage
	if m, ok := body.(map[string]any); ok {
		if d, ok := m["detail"].(string); ok && d != "" {
			msg = d
		}
	}
	return &Error{Kind: kindFor(status), Status: status, Message: msg}
}

// IsAuthFailure reports whether err is an API error caused by a rejected or
// missing credential.
func IsAuthFailure(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindUnauthorized
}
