// SPDX-License-Identifier: MIT

package remote

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrTransport    = errors.New("store: transport failure")
	ErrRejected     = errors.New("store: request rejected")
	ErrUnauthorized = errors.New("store: unauthorized")
	ErrBadResponse  = errors.New("store: invalid response format or malformed data")
)

// Error tags reported by the store in 409 responses.
const (
	TagSharedLinkAlreadyExists = "shared_link_already_exists"
	TagPath                    = "path"
)

// Error wraps a sentinel with request context.
type Error struct {
	Sentinel  error
	Operation string
	Status    int
	Tag       string // error[".tag"] of a 409 body
	Summary   string // error_summary of a 409 body
	Err       error  // lower-level cause, e.g. a net.Error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("store: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Summary != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Summary)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Sentinel
}

// HasTag reports whether err is a store rejection with the given tag.
func HasTag(err error, tag string) bool {
	var e *Error
	return errors.As(err, &e) && e.Tag == tag
}

// IsNotFound reports whether err says the path does not exist (yet).
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && strings.HasPrefix(e.Summary, "path/not_found")
}

// IsPermanent reports whether retrying err cannot succeed: malformed
// requests and authentication or authorization failures.
func IsPermanent(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}
