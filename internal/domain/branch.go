// Package domain provides definitions of all entities.
package domain

import "errors"

// ErrBranchNotFound indicates that the branch is not found.
var ErrBranchNotFound = errors.New("branch not found")

// Branch is the organizational unit that owns accounts.
type Branch struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}
