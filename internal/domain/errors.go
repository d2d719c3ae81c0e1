package domain

import "errors"

// ErrRejected matches every error a mutation returns when it declines to change state.
var ErrRejected = errors.New("mutation rejected")

var (
	ErrInvalidValue    = rejection("invalid value")
	ErrIndexOutOfRange = rejection("index out of range")
	ErrNotFound        = rejection("not found")
	ErrAlreadyExists   = rejection("already exists")
	ErrLimitReached    = rejection("limit reached")
	ErrBlankName       = rejection("blank name")
)

type rejectionError struct {
	msg string
}

func rejection(msg string) error { return &rejectionError{msg: msg} }

func (e *rejectionError) Error() string { return e.msg }

func (e *rejectionError) Is(target error) bool { return target == ErrRejected }

// IsRejected reports whether err is a validation rejection rather than a failure.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}
