package quantum

import (
	"errors"
	"fmt"
)

// Error taxonomy for the transcoding engine. Callers match with
// errors.Is; the engine wraps these with context at each call site.
var (
	// ErrInvalidArgument marks a malformed configuration. Always fatal
	// to the current operation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBufferUnderrun marks a read past the declared buffer bounds.
	ErrBufferUnderrun = errors.New("buffer underrun")

	// ErrBufferOverflow marks a write past the declared buffer bounds.
	ErrBufferOverflow = errors.New("buffer overflow")

	// ErrTruncatedRow marks a row for which the stream produced fewer
	// bytes than the layout predicted. A warning by default; fatal in
	// strict mode.
	ErrTruncatedRow = errors.New("truncated row")

	// ErrCanceled is returned when a progress callback requests a stop.
	// It distinguishes "stopped early" from "failed".
	ErrCanceled = errors.New("operation canceled")
)

func invalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
