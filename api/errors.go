package api

import (
	"errors"
	"fmt"
)

// ErrCredentialRejected marks a provider or metadata-service response that
// rejected the stored credentials. Single-account refreshes surface it to the
// caller so an account-status flow can react; the multi-account background
// refresh swallows it per account.
var ErrCredentialRejected = errors.New("credentials rejected")

// ErrUnknownAccount is returned when a request names an account that has no
// configured provider client.
var ErrUnknownAccount = errors.New("unknown account")

// Error is an application-level structured error returned by the metadata
// service, distinct from transport failures.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("metadata service: %s (%s)", e.Message, e.Code)
}
