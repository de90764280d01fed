package download

import (
	"context"
	"errors"
)

// InvalidArgumentsMessage is the result message when required arguments are missing
const InvalidArgumentsMessage = "Invalid arguments."

// ErrInvalidArguments reports a missing or malformed url / saveto argument
var ErrInvalidArguments = errors.New("invalid arguments")

// ConnectError covers DNS, TLS and connection failures as well as non-2xx responses.
type ConnectError struct {
	URL string
	Err error
}

func (e *ConnectError) Error() string { return e.Err.Error() }
func (e *ConnectError) Unwrap() error { return e.Err }

// TransferError is a failure while streaming the body. Written bytes stay on disk.
type TransferError struct {
	Path    string
	Written int64
	Err     error
}

func (e *TransferError) Error() string { return e.Err.Error() }
func (e *TransferError) Unwrap() error { return e.Err }

// FilesystemError is a failure to resolve, create or inspect a local path.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string { return e.Err.Error() }
func (e *FilesystemError) Unwrap() error { return e.Err }

// Category names the failure kind of err for reporting
func Category(err error) string {
	var (
		connErr *ConnectError
		xferErr *TransferError
		fsErr   *FilesystemError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidArguments):
		return "arguments"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &connErr):
		return "connect"
	case errors.As(err, &xferErr):
		return "transfer"
	case errors.As(err, &fsErr):
		return "filesystem"
	default:
		return "unknown"
	}
}
