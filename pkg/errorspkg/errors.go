// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// ErrInternal indicates internal server error.
//
// It hides storage details from API clients.
var ErrInternal = errors.New("internal")
