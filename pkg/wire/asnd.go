package wire

import pl "github.com/fabiomolinar/powerlink-rs-sub001"

const asndFixedBodyLength = 1 // serviceId

// SerializeASnd writes an ASnd frame into dst. ASnd can travel in either
// direction and is unicast unless Dest is the broadcast node id.
func SerializeASnd(dst []byte, f pl.ASndFrame, destMac, srcMac pl.MacAddress) (int, error) {
	total := EthernetHeaderLength + PlHeaderLength + asndFixedBodyLength + len(f.Payload)
	need, err := requiredLength(dst, total)
	if err != nil {
		return 0, err
	}
	writeEthernetHeader(dst, destMac, srcMac)
	writePlHeader(dst, pl.MessageTypeASnd, uint8(f.Dest), uint8(f.Src))

	body := dst[18:total]
	body[0] = byte(f.ServiceId)
	copy(body[1:], f.Payload)

	return padToMinimum(dst, need), nil
}

// DeserializeASnd parses an ASnd frame. Unlike PReq/PRes, ASnd carries no
// declared size field; the payload is whatever remains of the supplied
// slice after the fixed header (service handlers know their own framing,
// e.g. the SDO sequence/command headers carry their own lengths).
func DeserializeASnd(buf []byte) (pl.ASndFrame, error) {
	minNeed := EthernetHeaderLength + PlHeaderLength + asndFixedBodyLength
	if len(buf) < minNeed {
		return pl.ASndFrame{}, ErrBufferTooShort
	}
	hdr, err := readPlHeader(buf)
	if err != nil {
		return pl.ASndFrame{}, err
	}
	if hdr.MsgType != pl.MessageTypeASnd {
		return pl.ASndFrame{}, ErrInvalidPlFrame
	}
	serviceId := pl.ASndServiceId(buf[18])
	payload := make([]byte, len(buf)-minNeed)
	copy(payload, buf[minNeed:])

	return pl.ASndFrame{
		Src:       hdr.Src,
		Dest:      hdr.Dest,
		ServiceId: serviceId,
		Payload:   payload,
	}, nil
}
