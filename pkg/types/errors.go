package types

import (
	"errors"
	"fmt"
)

const resourceNotFoundPrefix = "resource not found: "

type ErrResourceNotFound struct {
	Category Category
	Name     string
}

func (e *ErrResourceNotFound) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("%s%s", resourceNotFoundPrefix, e.Name)
	}
	return fmt.Sprintf("%s%s/%s", resourceNotFoundPrefix, e.Category, e.Name)
}

type ErrUnsupported struct {
	Op   string
	Path string
}

func (e *ErrUnsupported) Error() string {
	return fmt.Sprintf("operation %s not supported on %s", e.Op, e.Path)
}

type ErrReadOnly struct {
	Op   string
	Path string
}

func (e *ErrReadOnly) Error() string {
	return fmt.Sprintf("read-only filesystem: %s %s", e.Op, e.Path)
}

type ErrAccessDenied struct {
	Path string
	Mode uint32
}

func (e *ErrAccessDenied) Error() string {
	return fmt.Sprintf("access mode %#o not permitted on %s", e.Mode, e.Path)
}

type ErrNotSymlink struct {
	Path string
}

func (e *ErrNotSymlink) Error() string {
	return fmt.Sprintf("not a symbolic link: %s", e.Path)
}

// ErrInvariantViolation marks a programming error such as releasing a file
// handle twice. It fails the call but never the process.
var ErrInvariantViolation = errors.New("internal invariant violation")

func IsNotFound(err error) bool {
	var e *ErrResourceNotFound
	return errors.As(err, &e)
}

func IsUnsupported(err error) bool {
	var e *ErrUnsupported
	return errors.As(err, &e)
}

func IsReadOnly(err error) bool {
	var e *ErrReadOnly
	return errors.As(err, &e)
}

func IsAccessDenied(err error) bool {
	var e *ErrAccessDenied
	return errors.As(err, &e)
}

func IsNotSymlink(err error) bool {
	var e *ErrNotSymlink
	return errors.As(err, &e)
}

// IsExpected reports whether err is routine control flow that should be
// translated without logging anomalies.
func IsExpected(err error) bool {
	return IsNotFound(err) || IsUnsupported(err)
}
