// Package ierrors defines the injesh error taxonomy. Every failure the core
// reports to the orchestrator carries a Kind so that callers can distinguish
// a bad argument from a bad remote response from a kernel syscall failure
// without parsing message text.
package ierrors

import (
	"fmt"

	"github.com/go-errors/errors"
	"golang.org/x/xerrors"
)

// Kind is one of the abstract error kinds from the error-handling design.
type Kind int

const (
	KindUnknown Kind = iota

	// lifecycle
	KindNotInitialized
	KindAlreadyInitialized

	// environment
	KindUnsupportedArchitecture
	KindHomeNotFound

	// engine adapter
	KindContainerNotFound
	KindContainerProcessNotFound
	KindGraphDriverNotOverlay2
	KindInvalidPid
	KindInvalidResponse
	KindAPIResponseError
	KindAPIServerError

	// catalog
	KindImageSyntaxError
	KindImageNotFound
	KindImageMetaNotFound

	// overlay composer
	KindMountFailed
	KindUnmountFailed
	KindOverlayfsDirInvalid
	KindInvalidPath
	KindCopyFailed

	// namespace joiner
	KindForkFailed
	KindWaitpidFailed
	KindNsOpenFailed
	KindSetnsFailed
	KindChrootFailed
	KindExecFailed

	// session store
	KindAlreadyExists
	KindNoSessions
	KindReadDirError
	KindUnexpectedShell

	// orchestrator / CLI surface
	KindUnsupportedRootFS
	KindNotImplemented
)

func (k Kind) String() string {
	switch k {
	case KindNotInitialized:
		return "NotInitialized"
	case KindAlreadyInitialized:
		return "AlreadyInitialized"
	case KindUnsupportedArchitecture:
		return "UnsupportedArchitecture"
	case KindHomeNotFound:
		return "HomeNotFound"
	case KindContainerNotFound:
		return "ContainerNotFound"
	case KindContainerProcessNotFound:
		return "ContainerProcessNotFound"
	case KindGraphDriverNotOverlay2:
		return "GraphDriverNotOverlay2"
	case KindInvalidPid:
		return "InvalidPid"
	case KindInvalidResponse:
		return "InvalidResponse"
	case KindAPIResponseError:
		return "ApiResponseError"
	case KindAPIServerError:
		return "ApiServerError"
	case KindImageSyntaxError:
		return "ImageSyntaxError"
	case KindImageNotFound:
		return "ImageNotFound"
	case KindImageMetaNotFound:
		return "ImageMetaNotFound"
	case KindMountFailed:
		return "MountFailed"
	case KindUnmountFailed:
		return "UnmountFailed"
	case KindOverlayfsDirInvalid:
		return "OverlayfsDirInvalid"
	case KindInvalidPath:
		return "InvalidPath"
	case KindCopyFailed:
		return "CopyFailed"
	case KindForkFailed:
		return "ForkFailed"
	case KindWaitpidFailed:
		return "WaitpidFailed"
	case KindNsOpenFailed:
		return "NsOpenFailed"
	case KindSetnsFailed:
		return "SetnsFailed"
	case KindChrootFailed:
		return "ChrootFailed"
	case KindExecFailed:
		return "ExecFailed"
	case KindAlreadyExists:
		return "AlreadyExists"
	case KindNoSessions:
		return "NoSessions"
	case KindReadDirError:
		return "ReadDirError"
	case KindUnexpectedShell:
		return "UnexpectedShell"
	case KindUnsupportedRootFS:
		return "UnsupportedRootFS"
	case KindNotImplemented:
		return "NotImplemented"
	default:
		return "Unknown"
	}
}

// Fault is the concrete error type returned by every injesh component.
// It carries a Kind so calling code can branch on failure category, a
// human message, and an optional wrapped cause (an errno, an HTTP body,
// a lower-level error).
//
// Adapted from lazydocker's ComplexError, which pairs a code with a
// message and an xerrors.Frame for stack-trace formatting.
type Fault struct {
	Kind    Kind
	Message string
	Cause   error
	frame   xerrors.Frame
}

func New(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message, frame: xerrors.Caller(1)}
}

func Wrap(kind Kind, cause error, message string) *Fault {
	return &Fault{Kind: kind, Message: message, Cause: cause, frame: xerrors.Caller(1)}
}

func (f *Fault) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error { return f.Cause }

func (f *Fault) FormatError(p xerrors.Printer) error {
	p.Printf("%s: %s", f.Kind, f.Message)
	f.frame.Format(p)
	return f.Cause
}

func (f *Fault) Format(s fmt.State, c rune) {
	xerrors.FormatError(f, s, c)
}

// Is reports whether err is a *Fault of the given kind.
func Is(err error, kind Kind) bool {
	var f *Fault
	if xerrors.As(err, &f) {
		return f.Kind == kind
	}
	return false
}

// WrapStack wraps err for the sake of showing a stack trace at the
// orchestrator boundary. Mirrors lazydocker's commands.WrapError, which
// notes that go-errors does not return nil for a nil input on its own.
func WrapStack(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, 1)
}
