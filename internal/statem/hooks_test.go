package statem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatchTableForSelectsRole(t *testing.T) {
	marker := func(*Session) (WriteTransition, error) { return WriteTransitionFinished, nil }
	table := DispatchTable{
		Client: RoleHooks{Write: WriteHooks{Transition: marker}},
		Server: RoleHooks{},
	}

	got := table.For(RoleClient)
	require.NotNil(t, got.Write.Transition)

	got = table.For(RoleServer)
	require.Nil(t, got.Write.Transition)
}

func TestNoopStatsDoesNotPanic(t *testing.T) {
	var s StatsSink = noopStats{}
	require.NotPanics(t, func() {
		s.SessAccept()
		s.SessAcceptRenegotiate()
		s.SessConnect()
		s.SessConnectRenegotiate()
	})
}
