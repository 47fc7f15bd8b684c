package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestSinkCountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewSink(reg)

	sink.SessAccept()
	sink.SessAccept()
	sink.SessAcceptRenegotiate()
	sink.SessConnect()
	sink.SessConnectRenegotiate()

	require.Equal(t, float64(2), testutil.ToFloat64(sink.sessAccept))
	require.Equal(t, float64(1), testutil.ToFloat64(sink.sessAcceptRenegotiate))
	require.Equal(t, float64(1), testutil.ToFloat64(sink.sessConnect))
	require.Equal(t, float64(1), testutil.ToFloat64(sink.sessConnectRenegotiate))
}

func TestObserveDriveTracksInFlightGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewSink(reg)

	stop := sink.ObserveDrive()
	require.Equal(t, float64(1), testutil.ToFloat64(sink.inFlight))
	stop()
	require.Equal(t, float64(0), testutil.ToFloat64(sink.inFlight))
}
