// Package services implements the business logic of the bot: the session
// manager and the command dispatcher. This file centralizes the error
// taxonomy so that every external failure source has exactly one variant,
// each carrying the underlying collaborator's error.
//
// "Record not found" is deliberately NOT part of this taxonomy: it is a
// normal control-flow outcome inside the dispatcher (it drives the
// not-subscribed branches) and is represented by repo.ErrNotFound.
package services

import "fmt"

// AuthError reports a rejected credential login against the homeserver.
type AuthError struct {
	Err error
}

// Error implements the error interface.
func (e *AuthError) Error() string { return fmt.Sprintf("auth: %v", e.Err) }

// Unwrap returns the underlying transport error.
func (e *AuthError) Unwrap() error { return e.Err }

// StoreError reports a persistence I/O failure. A missing record is not a
// StoreError.
type StoreError struct {
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string { return fmt.Sprintf("store: %v", e.Err) }

// Unwrap returns the underlying database error.
func (e *StoreError) Unwrap() error { return e.Err }

// RemoteAPIError reports a pool API network, HTTP, or decode failure.
type RemoteAPIError struct {
	Err error
}

// Error implements the error interface.
func (e *RemoteAPIError) Error() string { return fmt.Sprintf("pool api: %v", e.Err) }

// Unwrap returns the underlying client error.
func (e *RemoteAPIError) Unwrap() error { return e.Err }

// TransportError reports a Matrix protocol failure (send, resume, sync).
type TransportError struct {
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string { return fmt.Sprintf("matrix: %v", e.Err) }

// Unwrap returns the underlying protocol error.
func (e *TransportError) Unwrap() error { return e.Err }
