// Package statem implements the two-level handshake driver: an outer
// message-flow state machine that alternates an endpoint between
// reading and writing phases, and inner read/write sub-machines that
// thread message acquisition, processing, and transmission through
// resumable micro-states. The package never parses wire bytes, never
// computes keys, and never manages record-layer buffers itself — it
// only sequences calls into the Transport and hook bundles supplied by
// its caller.
package statem

import "fmt"

// Role identifies which side of the handshake a Session is driving.
type Role uint8

const (
	RoleClient Role = iota
	RoleServer
)

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	default:
		return "unknown"
	}
}

// FlowState is the driver's coarse phase (data model §3).
type FlowState int32

const (
	FlowUninited FlowState = iota
	FlowRenegotiate
	FlowReading
	FlowWriting
	FlowFinished
	FlowError
)

func (f FlowState) String() string {
	switch f {
	case FlowUninited:
		return "UNINITED"
	case FlowRenegotiate:
		return "RENEGOTIATE"
	case FlowReading:
		return "READING"
	case FlowWriting:
		return "WRITING"
	case FlowFinished:
		return "FINISHED"
	case FlowError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ReadSubState is the read sub-machine's micro-state (§4.2).
type ReadSubState int32

const (
	ReadStateHeader ReadSubState = iota
	ReadStateBody
	ReadStatePostProcess
)

func (r ReadSubState) String() string {
	switch r {
	case ReadStateHeader:
		return "HEADER"
	case ReadStateBody:
		return "BODY"
	case ReadStatePostProcess:
		return "POST_PROCESS"
	default:
		return "UNKNOWN"
	}
}

// WriteSubState is the write sub-machine's micro-state (§4.3).
type WriteSubState int32

const (
	WriteStateTransition WriteSubState = iota
	WriteStatePreWork
	WriteStateSend
	WriteStatePostWork
)

func (w WriteSubState) String() string {
	switch w {
	case WriteStateTransition:
		return "TRANSITION"
	case WriteStatePreWork:
		return "PRE_WORK"
	case WriteStateSend:
		return "SEND"
	case WriteStatePostWork:
		return "POST_WORK"
	default:
		return "UNKNOWN"
	}
}

// WorkState is returned by the resumable pre_work/post_work/
// post_process_message hooks (§6). Any value outside this set is a
// protocol violation (INTERNAL_ERROR).
type WorkState int32

const (
	WorkMoreA WorkState = iota
	WorkMoreB
	WorkMoreC
	WorkFinishedContinue
	WorkFinishedStop
)

func (w WorkState) String() string {
	switch w {
	case WorkMoreA:
		return "WORK_MORE_A"
	case WorkMoreB:
		return "WORK_MORE_B"
	case WorkMoreC:
		return "WORK_MORE_C"
	case WorkFinishedContinue:
		return "WORK_FINISHED_CONTINUE"
	case WorkFinishedStop:
		return "WORK_FINISHED_STOP"
	default:
		return "UNKNOWN"
	}
}

// isSuspend reports whether a hook asked to suspend (resume at the
// same micro-state on the next call).
func (w WorkState) isSuspend() bool {
	return w == WorkMoreA || w == WorkMoreB || w == WorkMoreC
}

// ProcessResult is returned by the read path's process_message hook.
type ProcessResult int32

const (
	ProcessError ProcessResult = iota
	ProcessContinueReading
	ProcessContinueProcessing
	ProcessFinishedReading
)

func (p ProcessResult) String() string {
	switch p {
	case ProcessError:
		return "ERROR"
	case ProcessContinueReading:
		return "CONTINUE_READING"
	case ProcessContinueProcessing:
		return "CONTINUE_PROCESSING"
	case ProcessFinishedReading:
		return "FINISHED_READING"
	default:
		return "UNKNOWN"
	}
}

// WriteTransition is returned by the write path's transition hook.
type WriteTransition int32

const (
	WriteTransitionError WriteTransition = iota
	WriteTransitionContinue
	WriteTransitionFinished
)

// subStateReturn is the internal return contract shared by both
// sub-machines (§4, enum SUB_STATE_RETURN in the original source).
// The read sub-machine only ever produces subStateError,
// subStateSuspend, or subStatePhaseBoundary; subStateHandshakeDone is
// reachable only from the write sub-machine's pre_work/post_work STOP
// path (§4.3), since reading alone never concludes a handshake.
type subStateReturn int32

const (
	subStateError subStateReturn = iota
	// subStateSuspend means a collaborator soft-failed (would block);
	// the outer driver returns WouldBlock with state preserved.
	subStateSuspend
	// subStatePhaseBoundary means the active sub-machine reached the
	// end of its current phase; the outer driver switches to the
	// other sub-machine (§4.1 step 9).
	subStatePhaseBoundary
	// subStateHandshakeDone means the write sub-machine has nothing
	// left to prepare or send and the handshake itself is complete.
	subStateHandshakeDone
)

// MessageType identifies an inbound handshake message as reported by
// the transport's ReadMessageHeader hook. The value space belongs to
// the collaborator (spec §6); the driver only threads it through to
// Hooks.Read.Transition.
type MessageType int32

// HandState is the current handshake protocol position. Three values
// are reserved by this package (HandBefore, HandClientHelloWrite,
// HandOK) because the application-data gate (§4.4) and the
// initialization branch (§4.1 step 8) must recognize them regardless
// of which collaborator hook set is installed. Every other value is
// defined by the collaborator package, starting at
// HandStateReservedMax, per the "full enumeration owned by
// collaborators" invariant in §3.
type HandState int32

const (
	// HandBefore is the state before any message has been
	// exchanged. The driver itself sets this on a fresh (non-
	// renegotiated) handshake.
	HandBefore HandState = iota
	// HandClientHelloWrite is the state in which a client is about
	// to (or has just) written its ClientHello-equivalent. Named in
	// the application-data gate.
	HandClientHelloWrite
	// HandOK is the terminal state: the handshake is complete.
	HandOK
	// HandStateReservedMax is the first value collaborator packages
	// may use for their own intermediate hand states.
	HandStateReservedMax
)

func (h HandState) String() string {
	switch h {
	case HandBefore:
		return "BEFORE"
	case HandClientHelloWrite:
		return "CW_CLIENT_HELLO"
	case HandOK:
		return "OK"
	default:
		return fmt.Sprintf("HAND(%d)", int32(h))
	}
}

// Result is the outcome of a call to Drive (§6).
type Result int32

const (
	// Success mirrors the C convention's "1": the handshake
	// completed and flow_state is back to UNINITED.
	Success Result = iota
	// WouldBlock mirrors "<=0" caused by a collaborator soft-fail:
	// state is preserved and the caller should retry.
	WouldBlock
	// Fatal mirrors "<=0" caused by a protocol violation, a policy
	// refusal, or an internal inconsistency: flow_state is latched
	// to ERROR and the session must be discarded.
	Fatal
)

func (r Result) String() string {
	switch r {
	case Success:
		return "SUCCESS"
	case WouldBlock:
		return "WOULD_BLOCK"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}
