package statem

import (
	"fmt"
	"log/slog"

	herrors "github.com/alxayo/go-handshake/internal/errors"
	"github.com/alxayo/go-handshake/internal/logger"
)

// stepRead drives the read sub-machine (§4.2) until it either
// exhausts the available input (subStateSuspend, meaning let Drive
// return WouldBlock), hits a fatal condition (subStateError), or has
// read a message that completes the read phase (subStatePhaseBoundary,
// meaning proceed to the write phase). It never returns
// subStateHandshakeDone — reading alone never concludes a handshake
// (§4.2 contract).
//
// A single call may cycle HEADER -> BODY -> POST_PROCESS -> HEADER
// multiple times, once per fully consumed message, before suspending
// or handing off to the write phase.
func (d *Driver) stepRead(sess *Session, transport Transport, log *slog.Logger) (subStateReturn, error) {
	hooks := d.Hooks.For(sess.role).Read

	// size carries the declared message size from HEADER across the
	// fallthrough into BODY -- a case clause is its own scope in Go, so
	// a fallthrough cannot see a sibling case's := locals.
	var size uint64

	for {
		switch sess.readState {
		case ReadStateHeader:
			event := EventConnectLoop
			if sess.role == RoleServer {
				event = EventAcceptLoop
			}
			d.callback(sess, event, 1)

			mt, hdrSize, ok, err := transport.ReadMessageHeader(sess)
			size = hdrSize
			if err != nil {
				return subStateError, herrors.NewProtocolError("read.header", err)
			}
			if !ok {
				logger.Suspend(log, "read.header")
				return subStateSuspend, nil
			}

			if hooks.Transition == nil || !hooks.Transition(sess, mt) {
				_ = transport.SendAlert(sess, AlertFatal, AlertUnexpectedMessage)
				return subStateError, herrors.NewProtocolError("read.header", fmt.Errorf("unexpected message type %d in hand state %s", mt, sess.handState))
			}

			if hooks.MaxMessageSize != nil {
				if max := hooks.MaxMessageSize(sess); size > max {
					_ = transport.SendAlert(sess, AlertFatal, AlertIllegalParameter)
					return subStateError, herrors.NewProtocolError("read.header", fmt.Errorf("message size %d exceeds max %d", size, max))
				}
			}

			logger.SubStateTransition(log, "read", "HEADER", "BODY")
			sess.readState = ReadStateBody
			sess.readStateWork = WorkMoreA
			// fall through to BODY without re-entering dispatch or
			// invoking any further hook (§9 design note, fall-through
			// point 1).
			fallthrough

		case ReadStateBody:
			var n uint64
			if sess.Transport() == TransportStream {
				bodyLen, ok, err := transport.ReadMessageBody(sess)
				if err != nil {
					return subStateError, herrors.NewProtocolError("read.body", err)
				}
				if !ok {
					logger.Suspend(log, "read.body")
					return subStateSuspend, nil
				}
				n = bodyLen
			} else {
				// Datagram bodies arrive with the header; size is what
				// read_message_header already reported (§4.2 BODY, §6
				// read_message_body contract).
				n = size
			}

			if hooks.ProcessMessage == nil {
				return subStateError, herrors.NewInternalError("read.body", fmt.Errorf("no process_message hook installed"))
			}
			result, err := hooks.ProcessMessage(sess, n)
			if err != nil {
				return classifyHookErr("read.body", err)
			}

			switch result {
			case ProcessError:
				return subStateError, herrors.NewProtocolError("read.body", fmt.Errorf("process_message rejected the message"))
			case ProcessContinueReading:
				logger.SubStateTransition(log, "read", "BODY", "HEADER")
				sess.readState = ReadStateHeader
				continue
			case ProcessContinueProcessing:
				logger.SubStateTransition(log, "read", "BODY", "POST_PROCESS")
				sess.readState = ReadStatePostProcess
				sess.readStateWork = WorkMoreA
			case ProcessFinishedReading:
				// §4.2 BODY: FINISHED_READING returns FINISHED directly,
				// a path disjoint from POST_PROCESS -- post_process_message
				// is never invoked on this branch.
				if sess.useTimer {
					transport.TimerStop(sess)
				}
				return subStatePhaseBoundary, nil
			default:
				return subStateError, herrors.NewInternalError("read.body", fmt.Errorf("process_message returned unknown result %d", result))
			}

		case ReadStatePostProcess:
			if hooks.PostProcessMessage == nil {
				return subStateError, herrors.NewInternalError("read.postprocess", fmt.Errorf("no post_process_message hook installed"))
			}
			work, err := hooks.PostProcessMessage(sess, sess.readStateWork)
			if err != nil {
				return classifyHookErr("read.postprocess", err)
			}

			switch {
			case work.isSuspend():
				sess.readStateWork = work
				logger.Suspend(log, "read.postprocess")
				return subStateSuspend, nil
			case work == WorkFinishedContinue:
				logger.SubStateTransition(log, "read", "POST_PROCESS", "HEADER")
				sess.readState = ReadStateHeader
				continue
			case work == WorkFinishedStop:
				if sess.useTimer {
					transport.TimerStop(sess)
				}
				return subStatePhaseBoundary, nil
			default:
				return subStateError, herrors.NewInternalError("read.postprocess", fmt.Errorf("post_process_message returned unknown work state %d", work))
			}

		default:
			return subStateError, herrors.NewInternalError("read.dispatch", fmt.Errorf("unknown read sub-state %s", sess.readState))
		}
	}
}
