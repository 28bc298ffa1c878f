// Package rawsock is a reference Linux implementation of the host HAL
// spec.md §6 names (send_frame/receive_frame/local_node_id/
// local_mac_address): a raw AF_PACKET socket bound to one interface,
// filtered to POWERLINK's EtherType at the kernel level. It is not part
// of the core protocol engine and the node façade never imports it —
// a host wires NodeAction{Kind: ActionSendFrame} results into Hal.Send
// and feeds Hal.Receive's output into ControlledNode/ManagingNode's
// ProcessRawFrame.
package rawsock

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	pl "github.com/fabiomolinar/powerlink-rs-sub001"
)

// MaxFrameSize bounds one Ethernet frame read, comfortably above the
// 1518-byte maximum Ethernet II frame.
const MaxFrameSize = 1600

// Hal owns one AF_PACKET socket bound to a single network interface,
// grounded in the teacher's pkg/can/socketcanv2.Bus: the same
// unix.Socket/unix.Bind/unix.SetsockoptTimeval sequence, generalized
// from CAN_RAW/AF_CAN to an AF_PACKET socket bound to POWERLINK's
// EtherType, and from a 16-byte fixed
// CAN frame to a variable-length Ethernet one.
type Hal struct {
	fd           int
	f            *os.File
	ifIndex      int
	localMac     pl.MacAddress
	localNodeId  pl.NodeId
	logger       *logrus.Entry
}

// NewHal opens a raw socket on ifaceName, filtered at the kernel level to
// POWERLINK's EtherType (0x88AB) so every unrelated frame on the wire is
// dropped before it ever reaches user space.
func NewHal(ifaceName string, localNodeId pl.NodeId, logger *logrus.Logger) (*Hal, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	proto := htons(pl.EtherType)
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(proto))
	if err != nil {
		return nil, fmt.Errorf("rawsock: socket: %w", err)
	}

	iface, err := findInterface(ifaceName)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	addr := &unix.SockaddrLinklayer{Protocol: proto, Ifindex: iface.index}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rawsock: bind %s: %w", ifaceName, err)
	}

	h := &Hal{
		fd:          fd,
		f:           os.NewFile(uintptr(fd), ifaceName),
		ifIndex:     iface.index,
		localMac:    iface.mac,
		localNodeId: localNodeId,
		logger:      logger.WithField("iface", ifaceName),
	}
	h.logger.Info("rawsock HAL bound")
	return h, nil
}

// Close releases the underlying socket.
func (h *Hal) Close() error {
	return h.f.Close()
}

// Send writes one already-serialized POWERLINK frame (dest/src MAC,
// EtherType, payload — whatever pkg/wire's Serialize produced) to the
// wire unchanged.
func (h *Hal) Send(frame []byte) error {
	n, err := h.f.Write(frame)
	if err != nil {
		return fmt.Errorf("rawsock: send: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("rawsock: short write: sent %d of %d bytes", n, len(frame))
	}
	return nil
}

// Receive reads one frame into buf, returning its length, or (0, nil) on
// a read timeout (no frame currently pending) — mirroring spec.md §6's
// "receive_frame(&mut buf) -> len, 0 = no frame" contract.
func (h *Hal) Receive(buf []byte) (int, error) {
	n, err := h.f.Read(buf)
	if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("rawsock: receive: %w", err)
	}
	return n, nil
}

// SetReceiveTimeout bounds how long Receive blocks with no frame pending,
// so a host's poll loop stays responsive to its own tick cadence.
func (h *Hal) SetReceiveTimeout(tv unix.Timeval) error {
	return unix.SetsockoptTimeval(h.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv)
}

// LocalNodeId returns this host's configured POWERLINK node id.
func (h *Hal) LocalNodeId() pl.NodeId { return h.localNodeId }

// LocalMacAddress returns the bound interface's hardware address.
func (h *Hal) LocalMacAddress() pl.MacAddress { return h.localMac }

func htons(v uint16) uint16 {
	return (v << 8) | (v >> 8)
}
