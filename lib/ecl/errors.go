package ecl

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this package and the packages built on
// it wraps exactly one of these, so callers can test for them with errors.Is.
var (
	ErrNotFound = errors.New("not found")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrCorruptFormat = errors.New("corrupt format")
	ErrTruncatedFile = errors.New("truncated file")
	ErrType = errors.New("type error")
	ErrValue = errors.New("value error")
	ErrInconsistentArchive = errors.New("inconsistent archive")
	ErrNotActive = errors.New("cell not active")
	ErrExists = errors.New("already exists")
)

// NoStep and NoIndex mark the Step and Index fields of an Error which don't
// apply.
const (
	NoStep = -1
	NoIndex = -1
)

// Error describes a failure in reading, writing or querying a result file. It
// names the file and, where relevant, the array name or key, the report step
// and the index involved.
type Error struct {
	Kind error
	Path string
	Key string
	Step int
	Index int
	Msg string
	// Err is the system error behind the failure, if there is one.
	Err error
}

// Errorf creates an Error of the given kind for the file at path. Key, step
// and index can be attached with the With* methods.
func Errorf(kind error, path, format string, a ...interface{}) *Error {
	return &Error{
		Kind: kind, Path: path, Step: NoStep, Index: NoIndex,
		Msg: fmt.Sprintf(format, a...),
	}
}

// WithKey sets the array name or summary key of the error.
func (e *Error) WithKey(key string) *Error { e.Key = key; return e }

// WithStep sets the report step of the error.
func (e *Error) WithStep(step int) *Error { e.Step = step; return e }

// WithIndex sets the array or cell index of the error.
func (e *Error) WithIndex(i int) *Error { e.Index = i; return e }

func (e *Error) Error() string {
	ctx := []string{ }
	if e.Path != "" { ctx = append(ctx, fmt.Sprintf("file %s", e.Path)) }
	if e.Key != "" { ctx = append(ctx, fmt.Sprintf("key '%s'", e.Key)) }
	if e.Step != NoStep { ctx = append(ctx, fmt.Sprintf("step %d", e.Step)) }
	if e.Index != NoIndex { ctx = append(ctx, fmt.Sprintf("index %d", e.Index)) }

	if len(ctx) == 0 { return fmt.Sprintf("%s: %s", e.Kind, e.Msg) }
	return fmt.Sprintf("%s (%s): %s", e.Kind, strings.Join(ctx, ", "), e.Msg)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil { return []error{ e.Kind } }
	return []error{ e.Kind, e.Err }
}

// WithPath attaches a file path to err if it does not already name one.
// Errors which don't come from this package, such as I/O failures, are
// wrapped as ErrValue and still match their original error with errors.Is.
func WithPath(err error, path string) error {
	if err == nil { return nil }
	var e *Error
	if errors.As(err, &e) {
		if e.Path == "" { e.Path = path }
		return err
	}
	out := Errorf(ErrValue, path, "The file cannot be read or written. " +
		"The system error is: \"%s\"", err.Error())
	out.Err = err
	return out
}
