package pargrid

import (
	"errors"
	"fmt"
)

// ErrorKind classifies errors returned by pargrid operations.
type ErrorKind int

const (
	// KindInvalidParameter reports an argument outside its valid range:
	// non-positive sigma or grain, zero-size buffer, threshold outside 0–255.
	KindInvalidParameter ErrorKind = iota + 1

	// KindIOFailure reports a load or save failure in the image codec layer.
	KindIOFailure

	// KindDimensionMismatch reports two buffers of differing width/height
	// passed to a dual-input operation.
	KindDimensionMismatch
)

// Sentinel errors, one per kind. Every *Error matches the sentinel of its
// kind under errors.Is.
var (
	// ErrInvalidParameter is matched by all KindInvalidParameter errors.
	ErrInvalidParameter = errors.New("pargrid: invalid parameter")

	// ErrIOFailure is matched by all KindIOFailure errors.
	ErrIOFailure = errors.New("pargrid: I/O failure")

	// ErrDimensionMismatch is matched by all KindDimensionMismatch errors.
	ErrDimensionMismatch = errors.New("pargrid: dimension mismatch")
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidParameter:
		return "InvalidParameter"
	case KindIOFailure:
		return "IOFailure"
	case KindDimensionMismatch:
		return "DimensionMismatch"
	default:
		return "Unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidParameter:
		return ErrInvalidParameter
	case KindIOFailure:
		return ErrIOFailure
	case KindDimensionMismatch:
		return ErrDimensionMismatch
	default:
		return nil
	}
}

// Error is the error type returned by pargrid operations.
type Error struct {
	Kind ErrorKind
	Op   string // operation that failed, e.g. "GenerateKernel"
	Msg  string
	Err  error // underlying cause, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pargrid: %s: %s: %s: %v", e.Op, e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("pargrid: %s: %s: %s", e.Op, e.Kind, e.Msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the kind of the first *Error in err's chain,
// or 0 if there is none.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

func invalidParam(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidParameter, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func dimensionMismatch(op string, aw, ah, bw, bh int) error {
	return &Error{
		Kind: KindDimensionMismatch,
		Op:   op,
		Msg:  fmt.Sprintf("%dx%d vs %dx%d", aw, ah, bw, bh),
	}
}

// IOError wraps a codec or filesystem failure as a KindIOFailure error.
// It returns nil if err is nil.
func IOError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindIOFailure, Op: op, Msg: path, Err: err}
}
