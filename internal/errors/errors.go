// Package errors defines the failure taxonomy of the enhancer.
// Sentinels allow errors.Is checks; typed errors carry the details
// that end up in log entries and user alerts.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New is the standard library errors.New, re-exported for convenience.
var New = errors.New

var (
	// ErrInitialization means the page lacks what a run needs (project id, base URL).
	ErrInitialization = errors.New("initialization failed")

	// ErrDiscoveryExhausted means no list items rendered within the attempt budget.
	ErrDiscoveryExhausted = errors.New("discovery exhausted")

	// ErrTransport means the API answered with a non-success status or was unreachable.
	ErrTransport = errors.New("transport error")

	// ErrDecode means the API response could not be decoded into records.
	ErrDecode = errors.New("decode error")

	// ErrAuth means a write was attempted without the anti-forgery token.
	ErrAuth = errors.New("missing credentials")

	// ErrMatchMiss means a fetched record had no rendered list item.
	ErrMatchMiss = errors.New("no matching list item")

	// ErrInjectionTargetMissing means a list item had no region to inject into.
	ErrInjectionTargetMissing = errors.New("injection target missing")

	// ErrClipboardDenied means the system clipboard rejected a write.
	ErrClipboardDenied = errors.New("clipboard denied")

	// ErrNotBound means an action was triggered on an element that was not bound at setup.
	ErrNotBound = errors.New("trigger not bound")
)

// InitializationError lists what the page context was missing.
type InitializationError struct {
	Missing []string
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization failed: missing %s", strings.Join(e.Missing, ", "))
}

// Is implements errors.Is support
func (e *InitializationError) Is(target error) bool {
	return target == ErrInitialization
}

// DiscoveryExhaustedError reports how many attempts were spent.
type DiscoveryExhaustedError struct {
	Attempts int
}

func (e *DiscoveryExhaustedError) Error() string {
	return fmt.Sprintf("no list items rendered after %d attempts", e.Attempts)
}

// Is implements errors.Is support
func (e *DiscoveryExhaustedError) Is(target error) bool {
	return target == ErrDiscoveryExhausted
}

// TransportError represents a failed HTTP exchange with the host API.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: API returned status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s: request failed: %v", e.Method, e.URL, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// DecodeError wraps a response body that did not match the record schema.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

// Unwrap implements errors.Unwrap
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// AuthError names the operation that needed a credential.
type AuthError struct {
	Operation string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s requires an anti-forgery token", e.Operation)
}

// Is implements errors.Is support
func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}

// MatchMissError names the record that could not be located in the page.
type MatchMissError struct {
	IID int64
	ID  int64
}

func (e *MatchMissError) Error() string {
	return fmt.Sprintf("no list item for merge request !%d (id %d)", e.IID, e.ID)
}

// Is implements errors.Is support
func (e *MatchMissError) Is(target error) bool {
	return target == ErrMatchMiss
}

// ClipboardError wraps the clipboard failure.
type ClipboardError struct {
	Err error
}

func (e *ClipboardError) Error() string {
	return fmt.Sprintf("failed to write clipboard: %v", e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ClipboardError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ClipboardError) Is(target error) bool {
	return target == ErrClipboardDenied
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsDecode reports whether err is a DecodeError.
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}
