package demo

import (
	"fmt"

	"github.com/alxayo/go-handshake/internal/statem"
)

const (
	// handDemoHelloSent marks that the client has written MsgHello and
	// is waiting on the server's MsgHelloAck.
	handDemoHelloSent statem.HandState = statem.HandStateReservedMax + iota
	// handDemoHelloReceived marks that the server has read MsgHello and
	// has MsgHelloAck queued to send.
	handDemoHelloReceived
)

// Hooks builds the DispatchTable for the two-message demo exchange: a
// client sends MsgHello, a server reads it and replies with
// MsgHelloAck, and both sides land on HandOK. The demo drives exactly
// one connection at a time, so a single closed-over *Transport is
// enough; a real multi-connection caller would key this off the
// Session instead.
//
// Every fresh handshake enters the write phase first regardless of
// role, so the server's Write.Transition must say FINISHED (nothing
// queued yet) until it has read MsgHello -- it is the read phase that
// runs first in practice, by the write phase immediately handing
// control back.
func Hooks(transport *Transport) statem.DispatchTable {
	return statem.DispatchTable{
		Client: statem.RoleHooks{
			Write: statem.WriteHooks{
				// Continue covers both the first write phase (send
				// MsgHello) and the final one, entered after reading the
				// ack, whose only job is to let pre_work signal
				// WORK_FINISHED_STOP without sending anything -- a bare
				// transition_write FINISHED only hands control to the
				// read phase, it never ends the handshake.
				Transition: func(s *statem.Session) (statem.WriteTransition, error) {
					switch s.HandState() {
					case statem.HandBefore, statem.HandOK:
						return statem.WriteTransitionContinue, nil
					default:
						return statem.WriteTransitionFinished, nil
					}
				},
				PreWork: func(s *statem.Session, _ statem.WorkState) (statem.WorkState, error) {
					if s.HandState() == statem.HandOK {
						return statem.WorkFinishedStop, nil
					}
					return statem.WorkFinishedContinue, nil
				},
				ConstructMessage: func(s *statem.Session) error {
					transport.SetOutgoing(MsgHello, []byte("hello"))
					return nil
				},
				PostWork: func(s *statem.Session, _ statem.WorkState) (statem.WorkState, error) {
					s.SetHandState(handDemoHelloSent)
					return statem.WorkFinishedContinue, nil
				},
			},
			Read: statem.ReadHooks{
				Transition: func(s *statem.Session, mt statem.MessageType) bool {
					return s.HandState() == handDemoHelloSent && mt == MsgHelloAck
				},
				MaxMessageSize: func(*statem.Session) uint64 { return 4096 },
				// The client has nothing left to verify once the ack
				// arrives, so it takes the FINISHED_READING path
				// directly (§4.2 BODY) and sets hand_state itself,
				// since post_process_message is never invoked on that
				// branch.
				ProcessMessage: func(s *statem.Session, _ uint64) (statem.ProcessResult, error) {
					s.SetHandState(statem.HandOK)
					return statem.ProcessFinishedReading, nil
				},
			},
		},
		Server: statem.RoleHooks{
			Read: statem.ReadHooks{
				Transition: func(s *statem.Session, mt statem.MessageType) bool {
					return s.HandState() == statem.HandBefore && mt == MsgHello
				},
				MaxMessageSize: func(*statem.Session) uint64 { return 4096 },
				// Unlike the client, the server has a real validation
				// step to run against the buffered message, so it takes
				// the CONTINUE_PROCESSING path into POST_PROCESS rather
				// than finishing the read outright (§4.2 BODY/POST_PROCESS).
				ProcessMessage: func(*statem.Session, uint64) (statem.ProcessResult, error) {
					return statem.ProcessContinueProcessing, nil
				},
				PostProcessMessage: func(s *statem.Session, _ statem.WorkState) (statem.WorkState, error) {
					mt, body := transport.LastMessage()
					if mt != MsgHello {
						return 0, fmt.Errorf("demo hooks: expected hello, got %d", mt)
					}
					_ = body
					s.SetHandState(handDemoHelloReceived)
					return statem.WorkFinishedStop, nil
				},
			},
			Write: statem.WriteHooks{
				Transition: func(s *statem.Session) (statem.WriteTransition, error) {
					switch s.HandState() {
					case handDemoHelloReceived, statem.HandOK:
						return statem.WriteTransitionContinue, nil
					default:
						// Nothing queued until MsgHello has been read
						// (handDemoHelloReceived); fall through to the
						// read phase (§4.1 step 9).
						return statem.WriteTransitionFinished, nil
					}
				},
				PreWork: func(s *statem.Session, _ statem.WorkState) (statem.WorkState, error) {
					if s.HandState() == statem.HandOK {
						return statem.WorkFinishedStop, nil
					}
					return statem.WorkFinishedContinue, nil
				},
				ConstructMessage: func(s *statem.Session) error {
					transport.SetOutgoing(MsgHelloAck, []byte("ack"))
					return nil
				},
				PostWork: func(s *statem.Session, _ statem.WorkState) (statem.WorkState, error) {
					s.SetHandState(statem.HandOK)
					return statem.WorkFinishedContinue, nil
				},
			},
		},
	}
}
