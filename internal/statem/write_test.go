package statem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStepWriteRoutesChangeCipherSpecRecord(t *testing.T) {
	hooks := WriteHooks{
		Transition: func(s *Session) (WriteTransition, error) {
			s.SetPendingChangeCipherSpec(true)
			return WriteTransitionContinue, nil
		},
		PreWork:          func(*Session, WorkState) (WorkState, error) { return WorkFinishedContinue, nil },
		ConstructMessage: func(*Session) error { return nil },
		PostWork:         func(*Session, WorkState) (WorkState, error) { return WorkFinishedStop, nil },
	}
	transport := &fakeTransport{writeOKQueue: []bool{true}}
	d := newTestDriver(DispatchTable{Client: RoleHooks{Write: hooks}}, transport)

	sess := NewSession()
	sess.role = RoleClient
	sess.roleSet = true
	sess.writeState = WriteStateTransition

	ret, err := d.stepWrite(sess, transport, nil)

	require.NoError(t, err)
	require.Equal(t, subStateHandshakeDone, ret)
	require.Equal(t, []bool{true}, transport.ccsSeen)
	require.False(t, sess.pendingCCS)
}

func TestStepWriteSuspendsOnWriteRecordBlocking(t *testing.T) {
	hooks := WriteHooks{
		Transition:       func(*Session) (WriteTransition, error) { return WriteTransitionContinue, nil },
		PreWork:          func(*Session, WorkState) (WorkState, error) { return WorkFinishedContinue, nil },
		ConstructMessage: func(*Session) error { return nil },
	}
	transport := &fakeTransport{writeOKQueue: []bool{false}}
	d := newTestDriver(DispatchTable{Client: RoleHooks{Write: hooks}}, transport)

	sess := NewSession()
	sess.role = RoleClient
	sess.roleSet = true
	sess.writeState = WriteStateTransition

	ret, err := d.stepWrite(sess, transport, nil)

	require.NoError(t, err)
	require.Equal(t, subStateSuspend, ret)
	require.Equal(t, WriteStateSend, sess.writeState)
}

func TestStepWritePreWorkSuspendKeepsMicroState(t *testing.T) {
	hooks := WriteHooks{
		Transition: func(*Session) (WriteTransition, error) { return WriteTransitionContinue, nil },
		PreWork:    func(*Session, WorkState) (WorkState, error) { return WorkMoreB, nil },
	}
	transport := &fakeTransport{}
	d := newTestDriver(DispatchTable{Client: RoleHooks{Write: hooks}}, transport)

	sess := NewSession()
	sess.role = RoleClient
	sess.roleSet = true
	sess.writeState = WriteStateTransition

	ret, err := d.stepWrite(sess, transport, nil)

	require.NoError(t, err)
	require.Equal(t, subStateSuspend, ret)
	require.Equal(t, WriteStatePreWork, sess.writeState)
	require.Equal(t, WorkMoreB, sess.writeStateWork)
}

func TestStepWriteTransitionErrorIsFatal(t *testing.T) {
	hooks := WriteHooks{
		Transition: func(*Session) (WriteTransition, error) { return WriteTransitionError, nil },
	}
	transport := &fakeTransport{}
	d := newTestDriver(DispatchTable{Client: RoleHooks{Write: hooks}}, transport)

	sess := NewSession()
	sess.role = RoleClient
	sess.roleSet = true
	sess.writeState = WriteStateTransition

	ret, err := d.stepWrite(sess, transport, nil)

	require.Error(t, err)
	require.Equal(t, subStateError, ret)
}

func TestStepWriteTransitionFinishedReturnsToReadingWithoutSend(t *testing.T) {
	hooks := WriteHooks{
		Transition: func(*Session) (WriteTransition, error) { return WriteTransitionFinished, nil },
	}
	transport := &fakeTransport{}
	d := newTestDriver(DispatchTable{Client: RoleHooks{Write: hooks}}, transport)

	sess := NewSession()
	sess.role = RoleClient
	sess.roleSet = true
	sess.writeState = WriteStateTransition

	ret, err := d.stepWrite(sess, transport, nil)

	require.NoError(t, err)
	require.Equal(t, subStatePhaseBoundary, ret)
	require.Nil(t, transport.ccsSeen)
}
