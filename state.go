// state.go defines the controller state machine states.

package hwdecpipe

import "fmt"

// State of the pipeline controller. Mutated only on the decode worker.
//
//	Uninitialized → Initialized → Decoding ⇄ Idle → AwaitingPictureBuffers → Decoding
//
// Error and Destroying are reachable from any state. Idle is the
// synchronization point: the controller enters it whenever an internal event
// (surface-set change, flush, reset) is pending and leaves it only after all
// in-flight device work has drained and the pending events ran.
type State int

const (
	StateUninitialized = State(0x0)
	StateInitialized   = State(0x1)
	StateDecoding      = State(0x2)
	StateIdle          = State(0x3)

	// StateAwaitingPictureBuffers: the output buffer set was torn down and
	// the controller waits for the client to call AssignPictureBuffers.
	StateAwaitingPictureBuffers = State(0x4)

	StateError      = State(0x5)
	StateDestroying = State(0x6)
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateDecoding:
		return "decoding"
	case StateIdle:
		return "idle"
	case StateAwaitingPictureBuffers:
		return "awaiting-picture-buffers"
	case StateError:
		return "error"
	case StateDestroying:
		return "destroying"
	default:
		return "State(" + fmt.Sprintf("%d", int(s)) + ")"
	}
}
