package statem

// ReadHooks bundles the role-dispatched collaborator hooks consulted
// by the read sub-machine (§4.2). Expressing the hook surface as a
// record of function values, rather than branching on role at every
// call site, lets the sub-machine resolve its hook bundle exactly once
// per entry (§9 design note).
type ReadHooks struct {
	// Transition validates mt against the current hand state and
	// advances it. Invoked exactly once per message, right after its
	// header arrives (invariant 4); a read phase that consumes several
	// messages invokes it once for each.
	Transition func(s *Session, mt MessageType) bool
	// ProcessMessage parses and acts on the message body of length
	// n, as delivered by Transport.ReadMessageBody (stream) or as
	// declared by Transport.ReadMessageHeader (datagram).
	ProcessMessage func(s *Session, n uint64) (ProcessResult, error)
	// PostProcessMessage performs optional deferred work that may
	// itself suspend, resuming at the WorkState it last returned.
	PostProcessMessage func(s *Session, work WorkState) (WorkState, error)
	// MaxMessageSize returns the role/state-dependent upper bound on
	// an incoming message's declared size.
	MaxMessageSize func(s *Session) uint64
}

// WriteHooks bundles the role-dispatched collaborator hooks consulted
// by the write sub-machine (§4.3).
type WriteHooks struct {
	// Transition decides the next outgoing message's hand state.
	Transition func(s *Session) (WriteTransition, error)
	// PreWork prepares the later sending of a message; may suspend.
	PreWork func(s *Session, work WorkState) (WorkState, error)
	// ConstructMessage serializes the pending message into the
	// output buffer. Called exactly once, immediately after PreWork
	// returns WorkFinishedContinue, before any other hook runs
	// (§5 ordering guarantee).
	ConstructMessage func(s *Session) error
	// PostWork finalizes a message after it has been sent; may
	// suspend.
	PostWork func(s *Session, work WorkState) (WorkState, error)
}

// RoleHooks is the complete hook bundle for one role.
type RoleHooks struct {
	Read  ReadHooks
	Write WriteHooks
}

// DispatchTable resolves a RoleHooks bundle for each of the two roles
// (§2 "Role/mode dispatch table"). Constructed once per endpoint and
// reused across every Session that endpoint drives.
type DispatchTable struct {
	Client RoleHooks
	Server RoleHooks
}

// For returns the hook bundle for the given role.
func (t DispatchTable) For(r Role) RoleHooks {
	if r == RoleServer {
		return t.Server
	}
	return t.Client
}

// Transport is the record-layer / transport collaborator (§1 "out of
// scope", §6). It is not role-dispatched: client and server sessions
// use the same Transport implementation, one instance per connection,
// supplied to Drive rather than held by the Driver.
type Transport interface {
	// IsDatagram reports whether this transport requires explicit
	// retransmission timers (DTLS/SCTP-style) as opposed to a
	// reliable byte stream (TLS-style).
	IsDatagram() bool
	// IsSCTP reports whether the datagram transport is SCTP. The
	// driver does not consult it: initialization pushes no
	// write-buffering layer for any transport.
	IsSCTP() bool

	// ValidateVersion checks the configured protocol version against
	// the transport family and the configured security policy for
	// the given role. A non-nil error aborts initialization with a
	// PolicyError.
	ValidateVersion(role Role) error

	// InitBuffers (re)initializes the record-layer's own internal
	// buffers for a fresh or renegotiated handshake.
	InitBuffers(s *Session) error

	// MaxPlaintextLen returns the size to allocate for the message
	// buffer when none is yet present.
	MaxPlaintextLen() int

	// ReadMessageHeader reads the next message header, reporting the
	// message's declared body size so the driver can enforce
	// max_message_size before any body bytes are read. ok=false with
	// a nil error means suspend (more I/O needed); a non-nil error
	// is a transport-level hard failure.
	ReadMessageHeader(s *Session) (mt MessageType, size uint64, ok bool, err error)
	// ReadMessageBody reads the remainder of the message (stream
	// transport only; for datagram transports the body already
	// arrived with the header and this is not called).
	ReadMessageBody(s *Session) (n uint64, ok bool, err error)

	// WriteRecord sends the message constructed by
	// WriteHooks.ConstructMessage. ccs is true when the pending
	// hand state is the change-cipher-spec signal, in which case
	// the dedicated CCS write path is used instead of the standard
	// handshake record write path (§4.3 SEND).
	WriteRecord(s *Session, ccs bool) (ok bool, err error)

	// SendAlert emits a protocol alert to the peer.
	SendAlert(s *Session, level AlertLevel, desc AlertDescription) error

	// TimerStart and TimerStop arm and disarm the datagram
	// retransmission timer (§6).
	TimerStart(s *Session)
	TimerStop(s *Session)
}

// CallbackEvent names an info-callback notification (§6).
type CallbackEvent int32

const (
	EventHandshakeStart CallbackEvent = iota
	EventAcceptLoop
	EventConnectLoop
	EventAcceptExit
	EventConnectExit
)

// InfoCallback receives handshake lifecycle notifications in the
// exact order the driver emits them (§6).
type InfoCallback func(s *Session, event CallbackEvent, value int)

// StatsSink receives the four initialization-time counters (§6). All
// methods are called at most once per Drive call, from the
// initialization branch only.
type StatsSink interface {
	SessAccept()
	SessAcceptRenegotiate()
	SessConnect()
	SessConnectRenegotiate()
}

// noopStats discards all counters; used when a caller supplies no
// StatsSink.
type noopStats struct{}

func (noopStats) SessAccept()             {}
func (noopStats) SessAcceptRenegotiate()  {}
func (noopStats) SessConnect()            {}
func (noopStats) SessConnectRenegotiate() {}
