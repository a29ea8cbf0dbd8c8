package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrNoActor occurs when a mutation request carries no identifiable
	// acting principal.
	ErrNoActor = errors.New("no acting principal")
)
