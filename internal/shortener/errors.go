package shortener

import (
	"errors"
	"fmt"
)

// Kind classifies a storage failure. Every error crossing the Repository
// boundary carries exactly one Kind.
type Kind uint8

const (
	// KindUndefined covers read-time transport failures and undecodable records.
	KindUndefined Kind = iota
	// KindNotFound means the lookup succeeded but nothing unexpired matched.
	KindNotFound
	// KindErrorOnSave means the backend write failed.
	KindErrorOnSave
	// KindTemporarilyUnavailable means exclusive access to the backend could not be acquired.
	KindTemporarilyUnavailable
)

var (
	// ErrNotFound is returned by Service.Resolve when no unexpired record matches.
	ErrNotFound = errors.New("not found")
	// ErrBusy is the cause of every KindTemporarilyUnavailable error.
	ErrBusy = errors.New("storage is busy")
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "Undefined error"
	case KindNotFound:
		return "Not found"
	case KindErrorOnSave:
		return "Error on save"
	case KindTemporarilyUnavailable:
		return "Temporarily Unavailable"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Error is a storage failure tagged with its Kind and the operation that failed.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// E builds an *Error. It returns nil when err is nil.
func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}

	return &Error{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}

	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind carried by err. Errors without a Kind are undefined.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUndefined
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}
