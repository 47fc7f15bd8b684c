package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsFatalClassification(t *testing.T) {
	root := stdErrors.New("root")
	wrapped := fmt.Errorf("adding context: %w", root)

	pe := NewProtocolError("read.transition", wrapped)
	require.True(t, IsFatal(pe))
	require.True(t, stdErrors.Is(pe, root))

	var pErr *ProtocolError
	require.True(t, stdErrors.As(pe, &pErr))
	require.Equal(t, "read.transition", pErr.Op)

	poE := NewPolicyError("init.version", stdErrors.New("version too low"))
	require.True(t, IsFatal(poE))

	ie := NewInternalError("write.dispatch", nil)
	require.True(t, IsFatal(ie))
}

func TestSuspendIsNotFatal(t *testing.T) {
	se := NewSuspendError("read.header", stdErrors.New("would block"))
	require.True(t, IsSuspend(se))
	require.False(t, IsFatal(se))
}

func TestUnwrapChains(t *testing.T) {
	base := stdErrors.New("short read")
	l1 := fmt.Errorf("io: %w", base)
	l2 := NewProtocolError("read.body", l1)
	require.True(t, stdErrors.Is(l2, base))

	var fm fatalMarker
	require.True(t, stdErrors.As(l2, &fm))
}

func TestNilSafety(t *testing.T) {
	require.False(t, IsFatal(nil))
	require.False(t, IsSuspend(nil))
}

func TestConstructorsWithoutCause(t *testing.T) {
	for _, err := range []error{
		NewSuspendError("op", nil),
		NewProtocolError("op", nil),
		NewPolicyError("op", nil),
		NewInternalError("op", nil),
	} {
		require.NotEmpty(t, err.Error())
	}
}

func TestNegativePredicates(t *testing.T) {
	plain := stdErrors.New("plain")
	require.False(t, IsFatal(plain))
	require.False(t, IsSuspend(plain))
}
