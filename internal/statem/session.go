package statem

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// TransportKind distinguishes the underlying framing the driver must
// account for when deciding whether to arm retransmission timers, push
// a write-buffering layer, and validate the configured protocol
// version (§4.1 step 8).
type TransportKind uint8

const (
	TransportStream TransportKind = iota
	TransportDatagram
	TransportDatagramSCTP
)

// Session carries all state threaded across calls to Drive (§3). A
// Session is owned exclusively by the goroutine currently inside
// Drive; there is no internal locking (§5).
type Session struct {
	id string

	flowState FlowState
	handState HandState

	readState         ReadSubState
	readStateWork     WorkState
	readStateFirstInit bool

	writeState     WriteSubState
	writeStateWork WorkState

	useTimer bool
	role     Role
	roleSet  bool

	// inHandshakeDepth is a re-entrancy counter; Drive increments it
	// on entry and decrements on every exit path (§9 design note).
	inHandshakeDepth int32

	transport TransportKind

	// changeCipherSpec mirrors s3->change_cipher_spec in the
	// original: an observation flag reset at the start of every
	// handshake, fresh or renegotiated.
	changeCipherSpec bool

	// sessionHit and certRequested are cleared on a fresh client
	// handshake (§4.1 step 8) and are otherwise opaque to the
	// driver; collaborators set and read them through the
	// accessors below.
	sessionHit    bool
	certRequested bool

	// secureRenegotiation records whether the peer signaled support
	// for secure renegotiation, as observed by a collaborator hook
	// during a prior handshake. legacyRenegotiationAllowed is local
	// policy permitting renegotiation without that signal.
	secureRenegotiation        bool
	legacyRenegotiationAllowed bool

	// heartbeatPending/heartbeatSeq model the optional heartbeat
	// extension cancelled at the top of every Drive call (§4.1
	// step 7).
	heartbeatPending bool
	heartbeatSeq     uint64

	// initBuf is allocated by the initialization branch when the
	// session has none yet, sized for the maximum plaintext record
	// length (§4.1 step 8). It then stays on the session; the driver
	// does not release it on any exit path.
	initBuf []byte

	// clientRandom is zeroed on every fresh client handshake (§4.1
	// step 8). The driver never reads it; a collaborator's
	// ConstructMessage hook populates it when building ClientHello.
	clientRandom [32]byte

	// pendingCCS is set by a WriteHooks.Transition implementation
	// immediately before returning WriteTransitionContinue, to mark
	// that the message about to be sent is the change-cipher-spec
	// signal. The write sub-machine's SEND state consults this
	// instead of comparing hand_state directly, since hand_state's
	// non-reserved values are opaque to the driver (§4.3 SEND).
	pendingCCS bool

	// infoCallback overrides the caller-supplied default InfoCallback
	// for this session only, mirroring SSL-level vs SSL_CTX-level
	// callback configuration. Nil means "use the default".
	infoCallback InfoCallback

	// err is the per-session error register, cleared at the start
	// of every Drive call (§4.1 step 3) and set on any fatal path.
	err error
}

// NewSession creates a Session in the UNINITED flow state, not yet
// latched to either role.
func NewSession() *Session {
	return &Session{
		id:        uuid.NewString(),
		flowState: FlowUninited,
		handState: HandBefore,
	}
}

// ID returns the session's stable identity, used for log correlation.
func (s *Session) ID() string { return s.id }

// FlowState returns the driver's current coarse phase.
func (s *Session) FlowState() FlowState { return s.flowState }

// HandState returns the current handshake protocol position.
func (s *Session) HandState() HandState { return s.handState }

// SetHandState advances the handshake state. Per invariant 4 (§3) this
// must only be called from within a transition hook.
func (s *Session) SetHandState(h HandState) { s.handState = h }

// Role returns the latched role, valid once the session has been
// initialized at least once.
func (s *Session) Role() Role { return s.role }

// SetTransport configures the framing kind used for this session. It
// must be called before the first Drive call.
func (s *Session) SetTransport(k TransportKind) { s.transport = k }

// Transport returns the configured framing kind.
func (s *Session) Transport() TransportKind { return s.transport }

// UseTimer reports whether datagram retransmission timers are armed
// around sends for this session.
func (s *Session) UseTimer() bool { return s.useTimer }

// SessionHit reports whether this handshake resumed a prior session.
// Collaborators set this from ClientHello/ServerHello processing.
func (s *Session) SessionHit() bool       { return s.sessionHit }
func (s *Session) SetSessionHit(v bool)   { s.sessionHit = v }
func (s *Session) CertRequested() bool    { return s.certRequested }
func (s *Session) SetCertRequested(v bool) { s.certRequested = v }

// SecureRenegotiation reports whether the peer has signaled support
// for secure renegotiation in a prior handshake on this connection.
func (s *Session) SecureRenegotiation() bool     { return s.secureRenegotiation }
func (s *Session) SetSecureRenegotiation(v bool) { s.secureRenegotiation = v }

// SetLegacyRenegotiationAllowed configures whether a server may
// renegotiate with a peer that never signaled secure renegotiation
// (§4.1 step 8's "legacy-permissive option").
func (s *Session) SetLegacyRenegotiationAllowed(v bool) { s.legacyRenegotiationAllowed = v }

// ChangeCipherSpecObserved reports the CCS observation flag.
func (s *Session) ChangeCipherSpecObserved() bool     { return s.changeCipherSpec }
func (s *Session) SetChangeCipherSpecObserved(v bool) { s.changeCipherSpec = v }

// SetPendingChangeCipherSpec marks the message about to be sent as the
// change-cipher-spec signal. See the pendingCCS field comment.
func (s *Session) SetPendingChangeCipherSpec(v bool) { s.pendingCCS = v }

// SetInfoCallback overrides the default InfoCallback for this session.
func (s *Session) SetInfoCallback(cb InfoCallback) { s.infoCallback = cb }

// InHandshakeDepth returns the current re-entrancy counter, observed
// by callers that wish to refuse reentrant operations on the session
// (§9 design note).
func (s *Session) InHandshakeDepth() int32 { return atomic.LoadInt32(&s.inHandshakeDepth) }

// Err returns the per-session error register, populated on any fatal
// exit and cleared at the start of every Drive call.
func (s *Session) Err() error { return s.err }

// ClientAppDataAllowed implements §4.4: the record layer may permit
// early/post-handshake application data writes without consulting the
// full driver whenever hand_state is BEFORE, OK, or CW_CLIENT_HELLO.
func (s *Session) ClientAppDataAllowed() bool {
	switch s.handState {
	case HandBefore, HandOK, HandClientHelloWrite:
		return true
	default:
		return false
	}
}

// ClearState resets flow_state to UNINITED (§6 clear_state). A session
// latched to ERROR stays there.
func (s *Session) ClearState() {
	if s.flowState == FlowError {
		return
	}
	s.flowState = FlowUninited
}

// MarkRenegotiate sets flow_state to RENEGOTIATE ahead of the next
// Drive call (§6 mark_renegotiate). A session latched to ERROR stays
// there.
func (s *Session) MarkRenegotiate() {
	if s.flowState == FlowError {
		return
	}
	s.flowState = FlowRenegotiate
}

// MarkError latches flow_state to ERROR. This is permanent for the
// life of the session (§6 mark_error, invariant 1).
func (s *Session) MarkError() { s.flowState = FlowError }

// clearTransient performs the "one-time reset" of §4.1 step 6: a full
// clear of transient session state. Drive calls this only from the
// initialization branch, i.e. when flow_state is UNINITED or
// RENEGOTIATE — never on a resumption of a suspended READING/WRITING
// phase, whatever the hand state, which leaves state untouched.
func (s *Session) clearTransient() {
	s.readState = ReadStateHeader
	s.readStateWork = WorkMoreA
	s.readStateFirstInit = false
	s.writeState = WriteStateTransition
	s.writeStateWork = WorkMoreA
	s.changeCipherSpec = false
	s.err = nil
}
