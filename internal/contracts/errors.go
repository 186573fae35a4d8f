package contracts

import "errors"

// The public endpoints must keep these apart: "link expired", "already
// signed" and "not found" render differently in the client UI.
var (
	ErrNotFound = errors.New("contract not found")
	// ErrForbidden is reserved for surfaces that admit a resource exists but
	// deny access. The owner API scopes queries by owner and answers
	// ErrNotFound instead, so foreign contracts are indistinguishable from
	// absent ones.
	ErrForbidden          = errors.New("forbidden")
	ErrExpired            = errors.New("contract expired")
	ErrRevoked            = errors.New("contract revoked")
	ErrAlreadySigned      = errors.New("already signed")
	ErrClientNotYetSigned = errors.New("client has not signed yet")
	ErrNotDraft           = errors.New("contract is no longer a draft")
	ErrNotCompleted       = errors.New("contract is not completed")
	ErrValidation         = errors.New("validation failed")
	ErrRenderFailed       = errors.New("document render failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
