package wire

import (
	"encoding/binary"

	pl "github.com/fabiomolinar/powerlink-rs-sub001"
)

// socBodyLength is the byte count following the 4-byte common PL header:
// 1 flags + 1 reserved + 8 NetTime (seconds+nanoseconds) + 8 RelativeTime
// (seconds+nanoseconds), matching EPSG DS 301 Table 16's SoC layout.
const socBodyLength = 18

// SerializeSoC writes an SoC frame into dst, padding the Ethernet frame to
// pl.MinFrameLength, and returns the number of bytes written.
func SerializeSoC(dst []byte, f pl.SoCFrame, srcMac pl.MacAddress) (int, error) {
	total := EthernetHeaderLength + PlHeaderLength + socBodyLength
	if _, err := requiredLength(dst, total); err != nil {
		return 0, err
	}
	writeEthernetHeader(dst, pl.MulticastSoC, srcMac)
	writePlHeader(dst, pl.MessageTypeSoC, uint8(pl.NodeIdBroadcast), uint8(f.Src))

	body := dst[18:total]
	var flags byte
	if f.Multiplexed {
		flags |= 0x80 // MC
	}
	if f.Prescaled {
		flags |= 0x40 // PS
	}
	body[0] = flags
	body[1] = 0
	binary.LittleEndian.PutUint32(body[2:6], f.NetTime.Seconds)
	binary.LittleEndian.PutUint32(body[6:10], f.NetTime.Nanoseconds)
	binary.LittleEndian.PutUint32(body[10:14], f.RelativeTime.Seconds)
	binary.LittleEndian.PutUint32(body[14:18], f.RelativeTime.Nanoseconds)

	return padToMinimum(dst, total), nil
}

// DeserializeSoC parses an SoC frame out of buf. buf must already have had
// its Ethernet + POWERLINK header validated by the caller (DeserializeFrame
// does this); it is re-validated here for standalone use.
func DeserializeSoC(buf []byte) (pl.SoCFrame, error) {
	need := EthernetHeaderLength + PlHeaderLength + socBodyLength
	if len(buf) < need {
		return pl.SoCFrame{}, ErrBufferTooShort
	}
	hdr, err := readPlHeader(buf)
	if err != nil {
		return pl.SoCFrame{}, err
	}
	if hdr.MsgType != pl.MessageTypeSoC {
		return pl.SoCFrame{}, ErrInvalidPlFrame
	}
	body := buf[18:need]
	return pl.SoCFrame{
		Src:         hdr.Src,
		Multiplexed: body[0]&0x80 != 0,
		Prescaled:   body[0]&0x40 != 0,
		NetTime: pl.NetTime{
			Seconds:     binary.LittleEndian.Uint32(body[2:6]),
			Nanoseconds: binary.LittleEndian.Uint32(body[6:10]),
		},
		RelativeTime: pl.RelativeTime{
			Seconds:     binary.LittleEndian.Uint32(body[10:14]),
			Nanoseconds: binary.LittleEndian.Uint32(body[14:18]),
		},
	}, nil
}
