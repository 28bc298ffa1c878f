package wire

import pl "github.com/fabiomolinar/powerlink-rs-sub001"

// Addressing carries the Ethernet-level addresses a serializer needs for
// frame types that are unicast or whose destination isn't implied by the
// frame type itself. Resolving a CN's MAC address from its NodeId is a
// host/façade concern (§6); wire only serializes what it is given.
type Addressing struct {
	DestMac pl.MacAddress
	SrcMac  pl.MacAddress
}

// Serialize writes f into dst using the single dispatcher required by
// spec: it switches on the frame's concrete type and calls the matching
// per-type serializer.
func Serialize(dst []byte, f pl.Frame, addr Addressing) (int, error) {
	switch v := f.(type) {
	case pl.SoCFrame:
		return SerializeSoC(dst, v, addr.SrcMac)
	case pl.PReqFrame:
		return SerializePReq(dst, v, addr.DestMac, addr.SrcMac)
	case pl.PResFrame:
		return SerializePRes(dst, v, addr.SrcMac)
	case pl.SoAFrame:
		return SerializeSoA(dst, v, addr.SrcMac)
	case pl.ASndFrame:
		destMac := addr.DestMac
		if v.Dest == pl.NodeIdBroadcast {
			destMac = pl.BroadcastMac
		}
		return SerializeASnd(dst, v, destMac, addr.SrcMac)
	default:
		return 0, ErrInvalidMessageType
	}
}

// DeserializeFrame reads the EtherType, validates it, inspects the
// MessageType byte, and calls the matching frame deserializer. It never
// trusts raw slice length for the payload of size-declaring frame types.
func DeserializeFrame(buf []byte) (pl.Frame, error) {
	if _, err := readEthernetHeader(buf); err != nil {
		return nil, err
	}
	hdr, err := readPlHeader(buf)
	if err != nil {
		return nil, err
	}
	switch hdr.MsgType {
	case pl.MessageTypeSoC:
		return DeserializeSoC(buf)
	case pl.MessageTypePReq:
		return DeserializePReq(buf)
	case pl.MessageTypePRes:
		return DeserializePRes(buf)
	case pl.MessageTypeSoA:
		return DeserializeSoA(buf)
	case pl.MessageTypeASnd:
		return DeserializeASnd(buf)
	default:
		return nil, ErrInvalidMessageType
	}
}
