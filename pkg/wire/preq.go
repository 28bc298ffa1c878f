package wire

import (
	"encoding/binary"

	pl "github.com/fabiomolinar/powerlink-rs-sub001"
)

// preqFixedBodyLength is the byte count following the 4-byte common PL
// header: flags(1) + reserved(1) + pdoVersion(1) + reserved(1) + size(2),
// matching EPSG DS 301 Table 18's PReq layout (10-byte PL header total).
const preqFixedBodyLength = 6

// SerializePReq writes a PReq frame (MN to a specific CN, unicast) into dst.
func SerializePReq(dst []byte, f pl.PReqFrame, destMac, srcMac pl.MacAddress) (int, error) {
	total := EthernetHeaderLength + PlHeaderLength + preqFixedBodyLength + len(f.Payload)
	need, err := requiredLength(dst, total)
	if err != nil {
		return 0, err
	}
	writeEthernetHeader(dst, destMac, srcMac)
	writePlHeader(dst, pl.MessageTypePReq, uint8(f.Dest), uint8(f.Src))

	body := dst[18:total]
	var flags byte
	if f.MultiplexedSlot {
		flags |= 0x20 // MS
	}
	if f.ExceptionAck {
		flags |= 0x04 // EA
	}
	if f.Ready {
		flags |= 0x01 // RD
	}
	body[0] = flags
	body[1] = 0
	body[2] = f.PdoVersion
	body[3] = 0
	binary.LittleEndian.PutUint16(body[4:6], uint16(len(f.Payload)))
	copy(body[6:], f.Payload)

	return padToMinimum(dst, need), nil
}

// DeserializePReq parses a PReq frame. The declared payload size, not the
// raw slice length, governs how many payload bytes are read.
func DeserializePReq(buf []byte) (pl.PReqFrame, error) {
	minNeed := EthernetHeaderLength + PlHeaderLength + preqFixedBodyLength
	if len(buf) < minNeed {
		return pl.PReqFrame{}, ErrBufferTooShort
	}
	hdr, err := readPlHeader(buf)
	if err != nil {
		return pl.PReqFrame{}, err
	}
	if hdr.MsgType != pl.MessageTypePReq {
		return pl.PReqFrame{}, ErrInvalidPlFrame
	}
	body := buf[18:minNeed]
	size := binary.LittleEndian.Uint16(body[4:6])
	need := minNeed + int(size)
	if len(buf) < need {
		return pl.PReqFrame{}, ErrBufferTooShort
	}
	payload := make([]byte, size)
	copy(payload, buf[minNeed:need])

	return pl.PReqFrame{
		Src:             hdr.Src,
		Dest:            hdr.Dest,
		MultiplexedSlot: body[0]&0x20 != 0,
		ExceptionAck:    body[0]&0x04 != 0,
		Ready:           body[0]&0x01 != 0,
		PdoVersion:      body[2],
		Payload:         payload,
	}, nil
}
