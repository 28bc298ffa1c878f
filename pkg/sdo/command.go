package sdo

import "encoding/binary"

// CommandHeaderLength is the fixed 8-byte command-layer header (§4.7):
// transaction id, flags+segmentation, command id, reserved, 2-byte
// segment size, 2 bytes reserved/padding.
const CommandHeaderLength = 8

// SizeFieldLength is the optional 4-byte total-size field that follows the
// header when Segmentation is Initiate.
const SizeFieldLength = 4

// CommandId identifies the requested OD operation.
type CommandId uint8

const (
	CommandNil          CommandId = 0x00
	CommandWriteByIndex CommandId = 0x01
	CommandReadByIndex  CommandId = 0x02
	// CommandWriteAllByIndex and CommandFileRead are the vendor/optional
	// extensions reachable via ExtendedHandler (§9); the default handler
	// aborts them with AbortUnsupportedAccess.
	CommandWriteAllByIndex CommandId = 0x03
	CommandFileRead        CommandId = 0x04
)

// Segmentation marks a frame's place in a (possibly multi-frame) transfer.
type Segmentation uint8

const (
	SegmentationExpedited Segmentation = iota
	SegmentationInitiate
	SegmentationSegment
	SegmentationComplete
)

// CommandHeader is the decoded 8-byte command-layer header.
type CommandHeader struct {
	TransactionId uint8
	IsResponse    bool
	IsAborted     bool
	Segmentation  Segmentation
	CommandId     CommandId
	SegmentSize   uint16
}

func EncodeCommandHeader(h CommandHeader) [CommandHeaderLength]byte {
	var b [CommandHeaderLength]byte
	b[0] = h.TransactionId
	var flags byte
	if h.IsResponse {
		flags |= 0x80
	}
	if h.IsAborted {
		flags |= 0x40
	}
	flags |= byte(h.Segmentation&0x03) << 4
	b[1] = flags
	b[2] = byte(h.CommandId)
	b[3] = 0
	binary.LittleEndian.PutUint16(b[4:6], h.SegmentSize)
	return b
}

func DecodeCommandHeader(buf []byte) (CommandHeader, error) {
	if len(buf) < CommandHeaderLength {
		return CommandHeader{}, ErrFrameTooShort
	}
	flags := buf[1]
	return CommandHeader{
		TransactionId: buf[0],
		IsResponse:    flags&0x80 != 0,
		IsAborted:     flags&0x40 != 0,
		Segmentation:  Segmentation((flags >> 4) & 0x03),
		CommandId:     CommandId(buf[2]),
		SegmentSize:   binary.LittleEndian.Uint16(buf[4:6]),
	}, nil
}

// buildFrame assembles a command-layer frame: header, optional size field
// (Initiate segmentation only), then payload.
func buildFrame(h CommandHeader, totalSize uint32, payload []byte) []byte {
	hdr := EncodeCommandHeader(h)
	out := make([]byte, 0, CommandHeaderLength+SizeFieldLength+len(payload))
	out = append(out, hdr[:]...)
	if h.Segmentation == SegmentationInitiate {
		var sz [SizeFieldLength]byte
		binary.LittleEndian.PutUint32(sz[:], totalSize)
		out = append(out, sz[:]...)
	}
	out = append(out, payload...)
	return out
}

// buildAbort assembles a final, is_aborted response frame carrying a
// 32-bit abort code as its payload.
func buildAbort(transactionId uint8, commandId CommandId, code AbortCode) []byte {
	h := CommandHeader{TransactionId: transactionId, IsResponse: true, IsAborted: true, CommandId: commandId}
	var payload [4]byte
	binary.LittleEndian.PutUint32(payload[:], uint32(code))
	return buildFrame(h, 0, payload[:])
}

// splitFrame separates a decoded command frame into its header, the
// optional total-size field (valid only if header.Segmentation is
// Initiate), and the remaining payload.
func splitFrame(buf []byte) (CommandHeader, uint32, []byte, error) {
	h, err := DecodeCommandHeader(buf)
	if err != nil {
		return CommandHeader{}, 0, nil, err
	}
	rest := buf[CommandHeaderLength:]
	var totalSize uint32
	if h.Segmentation == SegmentationInitiate {
		if len(rest) < SizeFieldLength {
			return CommandHeader{}, 0, nil, ErrFrameTooShort
		}
		totalSize = binary.LittleEndian.Uint32(rest[:SizeFieldLength])
		rest = rest[SizeFieldLength:]
	}
	return h, totalSize, rest, nil
}
