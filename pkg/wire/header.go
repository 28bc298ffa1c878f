package wire

import (
	"encoding/binary"

	pl "github.com/fabiomolinar/powerlink-rs-sub001"
)

// EthernetHeaderLength is the length, in bytes, of the Ethernet header that
// precedes every POWERLINK frame (dest MAC + src MAC + EtherType).
const EthernetHeaderLength = 14

// PlHeaderLength is the length of the common POWERLINK header that follows
// the Ethernet header (message type, dest node id, src node id, reserved).
const PlHeaderLength = 4

type ethernetHeader struct {
	Dest pl.MacAddress
	Src  pl.MacAddress
}

func writeEthernetHeader(dst []byte, dest, src pl.MacAddress) {
	copy(dst[0:6], dest[:])
	copy(dst[6:12], src[:])
	binary.BigEndian.PutUint16(dst[12:14], pl.EtherType)
}

func readEthernetHeader(buf []byte) (ethernetHeader, error) {
	if len(buf) < EthernetHeaderLength {
		return ethernetHeader{}, ErrBufferTooShort
	}
	etherType := binary.BigEndian.Uint16(buf[12:14])
	if etherType != pl.EtherType {
		return ethernetHeader{}, ErrInvalidEthernetFrame
	}
	var h ethernetHeader
	copy(h.Dest[:], buf[0:6])
	copy(h.Src[:], buf[6:12])
	return h, nil
}

// writePlHeader writes the 4-byte common POWERLINK header at dst[14:18].
func writePlHeader(dst []byte, msgType pl.MessageType, dest, src pl.NodeId) {
	dst[14] = byte(msgType) & 0x7F
	dst[15] = byte(dest)
	dst[16] = byte(src)
	dst[17] = 0
}

type plHeader struct {
	MsgType pl.MessageType
	Dest    pl.NodeId
	Src     pl.NodeId
}

func readPlHeader(buf []byte) (plHeader, error) {
	if len(buf) < EthernetHeaderLength+PlHeaderLength {
		return plHeader{}, ErrBufferTooShort
	}
	b0 := buf[14]
	if b0&0x80 != 0 {
		return plHeader{}, ErrInvalidPlFrame
	}
	return plHeader{
		MsgType: pl.MessageType(b0 & 0x7F),
		Dest:    pl.NodeId(buf[15]),
		Src:     pl.NodeId(buf[16]),
	}, nil
}

// padToMinimum zero-pads dst (already containing `used` valid bytes) up to
// pl.MinFrameLength and returns the final length.
func padToMinimum(dst []byte, used int) int {
	if used >= pl.MinFrameLength {
		return used
	}
	for i := used; i < pl.MinFrameLength; i++ {
		dst[i] = 0
	}
	return pl.MinFrameLength
}

// requiredLength returns the larger of the frame's natural length and the
// Ethernet minimum, and checks dst is at least that long.
func requiredLength(dst []byte, natural int) (int, error) {
	need := natural
	if need < pl.MinFrameLength {
		need = pl.MinFrameLength
	}
	if len(dst) < need {
		return 0, ErrBufferTooShort
	}
	return need, nil
}
