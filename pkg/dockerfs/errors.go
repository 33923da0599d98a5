package dockerfs

import (
	"errors"
	"syscall"

	"github.com/beam-cloud/dockerfs/pkg/types"
	"github.com/rs/zerolog/log"
)

// Errno maps a dispatcher error to the code reported to the kernel. Engine
// failures and broken invariants both surface as EIO.
func Errno(err error) syscall.Errno {
	var errno syscall.Errno

	switch {
	case err == nil:
		return 0
	case types.IsNotFound(err), types.IsUnsupported(err):
		return syscall.ENOENT
	case types.IsReadOnly(err):
		return syscall.EROFS
	case types.IsAccessDenied(err):
		return syscall.EACCES
	case types.IsNotSymlink(err):
		return syscall.EINVAL
	case errors.As(err, &errno):
		return errno
	}
	return syscall.EIO
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case types.IsExpected(err):
		return "not_found"
	case types.IsReadOnly(err):
		return "read_only"
	case types.IsAccessDenied(err):
		return "access_denied"
	case types.IsNotSymlink(err):
		return "invalid"
	case errors.Is(err, types.ErrInvariantViolation):
		return "invariant"
	}
	return "error"
}

func logError(op, path string, err error) {
	switch {
	case types.IsExpected(err):
		log.Debug().Str("op", op).Str("path", path).Err(err).Msg("no such entry")
	case types.IsReadOnly(err), types.IsAccessDenied(err), types.IsNotSymlink(err):
		log.Warn().Str("op", op).Str("path", path).Err(err).Msg("operation rejected")
	default:
		log.Error().Stack().Str("op", op).Str("path", path).Err(err).Msg("operation failed")
	}
}
