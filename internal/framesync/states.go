package framesync

// State is the synchronizer's position in the session lifecycle.
type State int

const (
	// Idle is the pre-join state: constructed, no group yet.
	Idle State = iota
	// Joining waits for the group to stabilize during startup.
	Joining
	// Ready means the group is established and no frame is pending.
	Ready
	// FrameBarrier means the collective barrier is issued and this
	// process is waiting for all participants.
	FrameBarrier
	// Advancing means the barrier is satisfied and the local frame's
	// render work may proceed.
	Advancing
	// Closed is terminal: session torn down or collective failure.
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Joining:
		return "joining"
	case Ready:
		return "ready"
	case FrameBarrier:
		return "frame_barrier"
	case Advancing:
		return "advancing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
