package rawsock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	pl "github.com/fabiomolinar/powerlink-rs-sub001"
)

// newLoopbackHal opens a Hal on "lo". AF_PACKET sockets need CAP_NET_RAW,
// which an unprivileged test runner may not have — skip rather than fail
// in that case, the same way a test against a real NIC would be
// environment-dependent.
func newLoopbackHal(t *testing.T, nodeId pl.NodeId) *Hal {
	t.Helper()
	h, err := NewHal("lo", nodeId, nil)
	if err != nil {
		t.Skipf("rawsock: skipping, could not open AF_PACKET socket on lo: %v", err)
	}
	require.NoError(t, h.SetReceiveTimeout(unix.Timeval{Sec: 0, Usec: 200000}))
	return h
}

func TestSendReceiveRoundTripOnLoopback(t *testing.T) {
	h := newLoopbackHal(t, 42)
	defer h.Close()

	frame := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0, 0, 0, 0x88, 0xAB, 1, 2, 3}
	require.NoError(t, h.Send(frame))

	buf := make([]byte, MaxFrameSize)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		n, err := h.Receive(buf)
		require.NoError(t, err)
		if n > 0 {
			assert.GreaterOrEqual(t, n, len(frame))
			return
		}
	}
	t.Skip("rawsock: no loopback echo observed within deadline, environment likely filters AF_PACKET self-receive")
}

func TestReceiveReturnsZeroOnTimeout(t *testing.T) {
	h := newLoopbackHal(t, 42)
	defer h.Close()

	buf := make([]byte, MaxFrameSize)
	n, err := h.Receive(buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLocalIdentity(t *testing.T) {
	h := newLoopbackHal(t, 7)
	defer h.Close()

	// "lo" itself reports an all-zero hardware address on Linux; only the
	// configured node id is meaningful to assert here.
	assert.Equal(t, pl.NodeId(7), h.LocalNodeId())
}
