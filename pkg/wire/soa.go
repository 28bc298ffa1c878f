package wire

import pl "github.com/fabiomolinar/powerlink-rs-sub001"

const soaBodyLength = 6 // nmtState + flags + requestedService + target + eplVersion + reserved

// SerializeSoA writes an SoA frame (MN to all, multicast) into dst.
func SerializeSoA(dst []byte, f pl.SoAFrame, srcMac pl.MacAddress) (int, error) {
	total := EthernetHeaderLength + PlHeaderLength + soaBodyLength
	need, err := requiredLength(dst, total)
	if err != nil {
		return 0, err
	}
	writeEthernetHeader(dst, pl.MulticastSoA, srcMac)
	writePlHeader(dst, pl.MessageTypeSoA, uint8(pl.NodeIdBroadcast), uint8(f.Src))

	body := dst[18:total]
	body[0] = f.NmtState
	var flags byte
	if f.ExceptionAck {
		flags |= 0x01
	}
	if f.ExceptionReset {
		flags |= 0x02
	}
	body[1] = flags
	body[2] = byte(f.RequestedService)
	body[3] = byte(f.RequestedTarget)
	body[4] = f.EplVersion
	body[5] = 0

	return padToMinimum(dst, need), nil
}

// DeserializeSoA parses an SoA frame.
func DeserializeSoA(buf []byte) (pl.SoAFrame, error) {
	need := EthernetHeaderLength + PlHeaderLength + soaBodyLength
	if len(buf) < need {
		return pl.SoAFrame{}, ErrBufferTooShort
	}
	hdr, err := readPlHeader(buf)
	if err != nil {
		return pl.SoAFrame{}, err
	}
	if hdr.MsgType != pl.MessageTypeSoA {
		return pl.SoAFrame{}, ErrInvalidPlFrame
	}
	body := buf[18:need]
	svc := pl.RequestedService(body[2])
	if svc > pl.RequestedServiceSdo {
		return pl.SoAFrame{}, ErrInvalidEnumValue
	}
	return pl.SoAFrame{
		Src:              hdr.Src,
		NmtState:         body[0],
		ExceptionAck:     body[1]&0x01 != 0,
		ExceptionReset:   body[1]&0x02 != 0,
		RequestedService: svc,
		RequestedTarget:  pl.NodeId(body[3]),
		EplVersion:       body[4],
	}, nil
}
