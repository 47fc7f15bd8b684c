package statem

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	herrors "github.com/alxayo/go-handshake/internal/errors"
	"github.com/alxayo/go-handshake/internal/logger"
)

// Driver bundles the collaborators shared across every connection an
// endpoint drives: the role-dispatched hook tables, the statistics
// sink, and a default info-callback. One Driver is constructed per
// listening/dialing endpoint and reused across every Session it
// drives, mirroring an SSL_CTX in the original source. The transport
// (record layer) is supplied per call to Drive instead, since it is
// intrinsically per-connection, like a BIO attached to a single SSL.
type Driver struct {
	Hooks DispatchTable
	Stats StatsSink

	// InfoCallback is the default notification sink, overridable per
	// Session via Session.SetInfoCallback.
	InfoCallback InfoCallback

	Log *slog.Logger
}

// NewDriver constructs a Driver, filling in a no-op StatsSink and the
// package default logger when not supplied.
func NewDriver(hooks DispatchTable) *Driver {
	return &Driver{
		Hooks: hooks,
		Stats: noopStats{},
		Log:   logger.Logger(),
	}
}

func (d *Driver) callback(s *Session, event CallbackEvent, value int) {
	cb := s.infoCallback
	if cb == nil {
		cb = d.InfoCallback
	}
	if cb != nil {
		cb(s, event, value)
	}
}

func (d *Driver) stats() StatsSink {
	if d.Stats == nil {
		return noopStats{}
	}
	return d.Stats
}

// Drive advances sess through as much of the handshake as the current
// I/O conditions permit, for the given role and transport (§4.1). It
// returns Success once flow_state returns to UNINITED having passed
// through FINISHED, WouldBlock when a collaborator asked to suspend,
// and Fatal when a protocol violation, policy refusal, or internal
// inconsistency latched flow_state to ERROR.
//
// transport must be the same record-layer collaborator for every call
// against a given sess; Drive does not cache it on the session because
// Session is transport-agnostic serialized state (§3), not a
// connection handle.
//
// Drive is not safe for concurrent use on the same Session (§5); the
// caller must serialize calls, typically by never calling it again
// from a second goroutine until the first call returns.
func (d *Driver) Drive(sess *Session, role Role, transport Transport) (Result, error) {
	log := logger.WithSession(d.Log, sess.id, role.String())

	// Re-entrancy bookkeeping (§9 design note): Drive increments on
	// every entry and decrements on every exit path below.
	incDepth(sess)
	defer decDepth(sess)

	if sess.flowState == FlowError {
		return Fatal, herrors.NewInternalError("drive", fmt.Errorf("session %s already latched to ERROR", sess.id))
	}

	// §4.1 step 2: stir wall-clock time into the diagnostic entropy
	// pool. No security claim; see entropy.go.
	stirEntropy(time.Now())

	// §4.1 step 3: clear the per-session error register.
	sess.err = nil

	// §4.1 step 7: cancel any pending heartbeat, disarming its timer.
	if sess.heartbeatPending {
		sess.heartbeatPending = false
		sess.heartbeatSeq++
		transport.TimerStop(sess)
	}

	if sess.flowState == FlowUninited || sess.flowState == FlowRenegotiate {
		if result, err := d.initialize(sess, role, transport, log); err != nil {
			sess.err = err
			sess.MarkError()
			return d.exit(sess, log, result)
		}
	}

	for {
		switch sess.flowState {
		case FlowReading:
			ret, err := d.stepRead(sess, transport, log)
			switch ret {
			case subStateError:
				sess.err = err
				sess.MarkError()
				return d.exit(sess, log, Fatal)
			case subStateSuspend:
				return d.exit(sess, log, WouldBlock)
			case subStatePhaseBoundary:
				sess.flowState = FlowWriting
				sess.writeState = WriteStateTransition
				sess.writeStateWork = WorkMoreA
			}

		case FlowWriting:
			ret, err := d.stepWrite(sess, transport, log)
			switch ret {
			case subStateError:
				sess.err = err
				sess.MarkError()
				return d.exit(sess, log, Fatal)
			case subStateSuspend:
				return d.exit(sess, log, WouldBlock)
			case subStatePhaseBoundary:
				sess.flowState = FlowReading
				sess.readState = ReadStateHeader
				sess.readStateWork = WorkMoreA
			case subStateHandshakeDone:
				sess.flowState = FlowFinished
			}

		case FlowFinished:
			sess.handState = HandOK
			sess.ClearState()
			return d.exit(sess, log, Success)

		default:
			err := herrors.NewInternalError("drive", fmt.Errorf("unexpected flow state %s", sess.flowState))
			sess.err = err
			sess.MarkError()
			return d.exit(sess, log, Fatal)
		}
	}
}

// exit emits the matching ACCEPT_EXIT/CONNECT_EXIT notification and
// returns result, always firing the callback before returning (§6
// ordering contract).
func (d *Driver) exit(sess *Session, log *slog.Logger, result Result) (Result, error) {
	event := EventConnectExit
	if sess.role == RoleServer {
		event = EventAcceptExit
	}
	value := 1
	if result != Success {
		value = -1
	}
	d.callback(sess, event, value)

	switch result {
	case Success:
		log.Info("handshake complete")
		return Success, nil
	case WouldBlock:
		log.Warn("handshake suspended", "flow_state", sess.flowState.String())
		return WouldBlock, sess.err
	default:
		log.Error("handshake failed", "error", sess.err)
		return Fatal, sess.err
	}
}

// initialize implements §4.1 step 8: the branch entered exactly once
// per fresh handshake or renegotiation, before the outer read/write
// loop starts.
func (d *Driver) initialize(sess *Session, role Role, transport Transport, log *slog.Logger) (Result, error) {
	if !sess.roleSet {
		sess.role = role
		sess.roleSet = true
	} else if sess.role != role {
		return Fatal, herrors.NewInternalError("drive.initialize", fmt.Errorf("role changed from %s to %s mid-session", sess.role, role))
	}

	renegotiating := sess.flowState == FlowRenegotiate

	if role == RoleServer {
		if renegotiating {
			d.stats().SessAcceptRenegotiate()
		} else {
			d.stats().SessAccept()
		}
	} else {
		d.stats().SessConnect()
		if renegotiating {
			d.stats().SessConnectRenegotiate()
		}
	}

	if err := transport.ValidateVersion(role); err != nil {
		log.Warn("protocol version validation failed", "error", err)
		_ = transport.SendAlert(sess, AlertFatal, AlertInternalError)
		return Fatal, herrors.NewPolicyError("drive.initialize", err)
	}

	if role == RoleServer && renegotiating && !sess.secureRenegotiation && !sess.legacyRenegotiationAllowed {
		log.Warn("refusing renegotiation without secure renegotiation support")
		_ = transport.SendAlert(sess, AlertFatal, AlertHandshakeFailure)
		return Fatal, herrors.NewPolicyError("drive.initialize", fmt.Errorf("insecure renegotiation rejected"))
	}

	if sess.initBuf == nil {
		sess.initBuf = make([]byte, transport.MaxPlaintextLen())
	}
	if err := transport.InitBuffers(sess); err != nil {
		return Fatal, herrors.NewInternalError("drive.initialize", err)
	}

	sess.clearTransient()

	if sess.transport != TransportStream {
		sess.useTimer = true
	}

	if role == RoleClient && !renegotiating {
		for i := range sess.clientRandom {
			sess.clientRandom[i] = 0
		}
		sess.SetSessionHit(false)
		sess.SetCertRequested(false)
	}

	d.callback(sess, EventHandshakeStart, 1)

	if sess.flowState == FlowUninited {
		sess.handState = HandBefore
	}

	// §4.1 step 8 (final bullet): every fresh handshake or
	// renegotiation enters the write phase first, regardless of role
	// -- a server's first write is its ServerHello (or, on a
	// server-initiated renegotiation, HelloRequest); it is the write
	// sub-machine's own transition hook that decides there is nothing
	// to send yet and lets the outer loop fall through to reading.
	sess.flowState = FlowWriting
	sess.writeState = WriteStateTransition
	sess.writeStateWork = WorkMoreA
	sess.readStateFirstInit = true

	return Success, nil
}

// classifyHookErr turns a collaborator hook's returned error into the
// read/write sub-machine's internal return contract. A SuspendError
// maps to a non-fatal suspend (the caller retries later); any other
// non-nil error that is not already one of the fatal taxonomy types
// is wrapped as a ProtocolError, since hook errors originate from
// processing peer-supplied data. classifyHookErr never distinguishes
// subStateHandshakeDone/subStatePhaseBoundary — callers decide those
// outcomes themselves from the hook's non-error return value.
func classifyHookErr(op string, err error) (subStateReturn, error) {
	if err == nil {
		return subStateSuspend, nil
	}
	if herrors.IsSuspend(err) {
		return subStateSuspend, nil
	}
	if herrors.IsFatal(err) {
		return subStateError, err
	}
	return subStateError, herrors.NewProtocolError(op, err)
}

func incDepth(sess *Session) {
	atomic.AddInt32(&sess.inHandshakeDepth, 1)
}

func decDepth(sess *Session) {
	atomic.AddInt32(&sess.inHandshakeDepth, -1)
}
