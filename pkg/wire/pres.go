package wire

import (
	"encoding/binary"

	pl "github.com/fabiomolinar/powerlink-rs-sub001"
)

const presFixedBodyLength = 7 // nmtState + flags1 + flags2 + pdoVersion + reserved + size(2)

// SerializePRes writes a PRes frame (CN to all, multicast; or MN to all in
// chained-PRes mode) into dst.
func SerializePRes(dst []byte, f pl.PResFrame, srcMac pl.MacAddress) (int, error) {
	total := EthernetHeaderLength + PlHeaderLength + presFixedBodyLength + len(f.Payload)
	need, err := requiredLength(dst, total)
	if err != nil {
		return 0, err
	}
	writeEthernetHeader(dst, pl.MulticastPRes, srcMac)
	writePlHeader(dst, pl.MessageTypePRes, uint8(pl.NodeIdBroadcast), uint8(f.Src))

	body := dst[18:total]
	body[0] = f.NmtState
	var flags1 byte
	if f.ExceptionNew {
		flags1 |= 0x01
	}
	if f.ExceptionClear {
		flags1 |= 0x02
	}
	if f.Ready {
		flags1 |= 0x04
	}
	if f.MultiplexedSlot {
		flags1 |= 0x08
	}
	body[1] = flags1
	body[2] = (f.Priority & 0x07) | ((f.RequestToSend & 0x07) << 3)
	body[3] = f.PdoVersion
	body[4] = 0
	binary.LittleEndian.PutUint16(body[5:7], uint16(len(f.Payload)))
	copy(body[7:], f.Payload)

	return padToMinimum(dst, need), nil
}

// DeserializePRes parses a PRes frame; the declared size field governs the
// payload length, not the raw slice length.
func DeserializePRes(buf []byte) (pl.PResFrame, error) {
	minNeed := EthernetHeaderLength + PlHeaderLength + presFixedBodyLength
	if len(buf) < minNeed {
		return pl.PResFrame{}, ErrBufferTooShort
	}
	hdr, err := readPlHeader(buf)
	if err != nil {
		return pl.PResFrame{}, err
	}
	if hdr.MsgType != pl.MessageTypePRes {
		return pl.PResFrame{}, ErrInvalidPlFrame
	}
	body := buf[18:minNeed]
	size := binary.LittleEndian.Uint16(body[5:7])
	need := minNeed + int(size)
	if len(buf) < need {
		return pl.PResFrame{}, ErrBufferTooShort
	}
	payload := make([]byte, size)
	copy(payload, buf[minNeed:need])

	return pl.PResFrame{
		Src:            hdr.Src,
		NmtState:       body[0],
		ExceptionNew:   body[1]&0x01 != 0,
		ExceptionClear: body[1]&0x02 != 0,
		Ready:          body[1]&0x04 != 0,
		MultiplexedSlot: body[1]&0x08 != 0,
		Priority:       body[2] & 0x07,
		RequestToSend:  (body[2] >> 3) & 0x07,
		PdoVersion:     body[3],
		Payload:        payload,
	}, nil
}
