package app

import (
	"errors"
	"fmt"
)

var (
	errUserNotFound = errors.New("user not found")
	// ErrMalformedBody means a 200 response lacked the expected top-level key.
	ErrMalformedBody = errors.New("response body missing expected structure")
	// ErrAmbiguousPerspective means the identity matched neither or both sides.
	ErrAmbiguousPerspective = errors.New("identity does not match exactly one side")
	ErrInvalidSelection     = errors.New("invalid selection")
)

// ResolutionError is an archive discovery failure for one identity.
type ResolutionError struct {
	Identity string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve archives for %s: %v", e.Identity, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// FetchError is a failed fetch of one archive locator.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type httpError struct {
	Status int
	Body   string
}

func (e httpError) Error() string { return fmt.Sprintf("http %d: %s", e.Status, e.Body) }
