// error.go defines the error taxonomy reported to the client via NotifyError.

package types

import "fmt"

// Error is the class of a fatal pipeline failure reported to the client.
// Resource exhaustion is deliberately absent: running out of free surfaces
// is backpressure, not an error.
type Error int

const (
	ErrorNone                  = Error(0x0)
	ErrorIllegalState          = Error(0x1)
	ErrorInvalidArgument       = Error(0x2)
	ErrorUnreadableInput       = Error(0x3)
	ErrorPlatformFailure       = Error(0x4)
	ErrorInsufficientResources = Error(0x5)
)

func (e Error) String() string {
	switch e {
	case ErrorNone:
		return "none"
	case ErrorIllegalState:
		return "illegal state"
	case ErrorInvalidArgument:
		return "invalid argument"
	case ErrorUnreadableInput:
		return "unreadable input"
	case ErrorPlatformFailure:
		return "platform failure"
	case ErrorInsufficientResources:
		return "insufficient resources"
	default:
		return "Error(" + fmt.Sprintf("%d", int(e)) + ")"
	}
}

func (e Error) Error() string {
	return e.String()
}
