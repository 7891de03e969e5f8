package device

import "fmt"

// ErrAgain is the transient "device busy / try again" class of failure.
// It is the only error class the retry helper will retry.
type ErrAgain struct {
	Err error
}

func (e ErrAgain) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("device busy: %v", e.Err)
	}
	return "device busy"
}

func (e ErrAgain) Unwrap() error {
	return e.Err
}

// ErrInterrupted is returned by Dequeue when Interrupt was called.
type ErrInterrupted struct{}

func (e ErrInterrupted) Error() string {
	return "dequeue was interrupted"
}

// ErrClosed is returned by any call made after Close.
type ErrClosed struct{}

func (e ErrClosed) Error() string {
	return "the device is closed"
}
