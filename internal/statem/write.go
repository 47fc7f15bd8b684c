package statem

import (
	"fmt"
	"log/slog"

	herrors "github.com/alxayo/go-handshake/internal/errors"
	"github.com/alxayo/go-handshake/internal/logger"
)

// stepWrite drives the write sub-machine (§4.3) until it suspends
// (subStateSuspend), hits a fatal condition (subStateError), reaches
// the end of this write phase with more to read afterward
// (subStatePhaseBoundary), or has been told by pre_work/post_work that
// the handshake itself is complete (subStateHandshakeDone).
//
// A single call may cycle TRANSITION -> PRE_WORK -> SEND -> POST_WORK
// -> TRANSITION multiple times, once per message written, before
// suspending or completing the handshake.
func (d *Driver) stepWrite(sess *Session, transport Transport, log *slog.Logger) (subStateReturn, error) {
	hooks := d.Hooks.For(sess.role).Write

	for {
		switch sess.writeState {
		case WriteStateTransition:
			event := EventConnectLoop
			if sess.role == RoleServer {
				event = EventAcceptLoop
			}
			d.callback(sess, event, 1)

			if hooks.Transition == nil {
				return subStateError, herrors.NewInternalError("write.transition", fmt.Errorf("no transition hook installed"))
			}
			transition, err := hooks.Transition(sess)
			if err != nil {
				return classifyHookErr("write.transition", err)
			}

			switch transition {
			case WriteTransitionError:
				return subStateError, herrors.NewProtocolError("write.transition", fmt.Errorf("transition hook refused to produce a next message"))
			case WriteTransitionFinished:
				// Nothing left to write this round; skip pre_work and
				// construct_message entirely and hand control back to
				// the read phase (§4.1 step 9).
				return subStatePhaseBoundary, nil
			case WriteTransitionContinue:
				logger.SubStateTransition(log, "write", "TRANSITION", "PRE_WORK")
				sess.writeState = WriteStatePreWork
				sess.writeStateWork = WorkMoreA
				continue
			default:
				return subStateError, herrors.NewInternalError("write.transition", fmt.Errorf("transition hook returned unknown result %d", transition))
			}

		case WriteStatePreWork:
			if hooks.PreWork == nil {
				return subStateError, herrors.NewInternalError("write.prework", fmt.Errorf("no pre_work hook installed"))
			}
			work, err := hooks.PreWork(sess, sess.writeStateWork)
			if err != nil {
				return classifyHookErr("write.prework", err)
			}
			switch {
			case work.isSuspend():
				sess.writeStateWork = work
				logger.Suspend(log, "write.prework")
				return subStateSuspend, nil
			case work == WorkFinishedStop:
				return subStateHandshakeDone, nil
			case work != WorkFinishedContinue:
				return subStateError, herrors.NewInternalError("write.prework", fmt.Errorf("pre_work returned unknown work state %d", work))
			}

			if hooks.ConstructMessage == nil {
				return subStateError, herrors.NewInternalError("write.prework", fmt.Errorf("no construct_message hook installed"))
			}
			if err := hooks.ConstructMessage(sess); err != nil {
				return classifyHookErr("write.construct", err)
			}

			logger.SubStateTransition(log, "write", "PRE_WORK", "SEND")
			sess.writeState = WriteStateSend
			// fall through to SEND without re-entering dispatch or
			// invoking any further hook (§9 design note, fall-through
			// point 2).
			fallthrough

		case WriteStateSend:
			if sess.useTimer {
				transport.TimerStart(sess)
			}
			ok, err := transport.WriteRecord(sess, sess.pendingCCS)
			if err != nil {
				return subStateError, herrors.NewProtocolError("write.send", err)
			}
			if !ok {
				logger.Suspend(log, "write.send")
				return subStateSuspend, nil
			}
			sess.pendingCCS = false

			logger.SubStateTransition(log, "write", "SEND", "POST_WORK")
			sess.writeState = WriteStatePostWork
			sess.writeStateWork = WorkMoreA
			// fall through to POST_WORK without re-entering dispatch
			// (§9 design note, fall-through point 3).
			fallthrough

		case WriteStatePostWork:
			if hooks.PostWork == nil {
				return subStateError, herrors.NewInternalError("write.postwork", fmt.Errorf("no post_work hook installed"))
			}
			work, err := hooks.PostWork(sess, sess.writeStateWork)
			if err != nil {
				return classifyHookErr("write.postwork", err)
			}
			switch {
			case work.isSuspend():
				sess.writeStateWork = work
				logger.Suspend(log, "write.postwork")
				return subStateSuspend, nil
			case work == WorkFinishedStop:
				return subStateHandshakeDone, nil
			case work != WorkFinishedContinue:
				return subStateError, herrors.NewInternalError("write.postwork", fmt.Errorf("post_work returned unknown work state %d", work))
			}

			logger.SubStateTransition(log, "write", "POST_WORK", "TRANSITION")
			sess.writeState = WriteStateTransition
			continue

		default:
			return subStateError, herrors.NewInternalError("write.dispatch", fmt.Errorf("unknown write sub-state %s", sess.writeState))
		}
	}
}
