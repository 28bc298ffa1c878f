package sdo

import (
	pl "github.com/fabiomolinar/powerlink-rs-sub001"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"
	"github.com/sirupsen/logrus"
)

// ExpeditedMaxBytes is the largest value length carried directly in an
// Expedited frame; anything longer uses Initiate/Segment/Complete.
const ExpeditedMaxBytes = 4

// DefaultSegmentSize is the chunk size the server uses for upload segments
// when the peer's declared SegmentSize is zero.
const DefaultSegmentSize = 64

// DefaultRetries is the number of times an unacked upload segment is
// resent before the transaction aborts.
const DefaultRetries = 3

// ExtendedHandler serves the optional/vendor command ids (§9); the default
// implementation aborts every one of them as unsupported access.
type ExtendedHandler interface {
	HandleWriteAllByIndex(dict *od.ObjectDictionary, index uint16, payload []byte) error
	HandleFileRead(dict *od.ObjectDictionary, payload []byte) ([]byte, error)
}

type unsupportedHandler struct{}

func (unsupportedHandler) HandleWriteAllByIndex(*od.ObjectDictionary, uint16, []byte) error {
	return AbortUnsupportedAccess
}

func (unsupportedHandler) HandleFileRead(*od.ObjectDictionary, []byte) ([]byte, error) {
	return nil, AbortUnsupportedAccess
}

// connection is one peer's sequence-layer state plus whatever segmented
// transfer it has open.
type connection struct {
	seq                sequenceLayer
	transfer           *transferContext
	lastResponse       []byte // full wire bytes (seq header + command frame) of the last sent frame, for duplicate re-ack and retransmission
	retransmitDeadline uint64
	retriesLeft        int
	hasDeadline        bool
}

// PendingRetransmit is a resend (or abort-on-exhaustion) Tick produces for
// an unacked upload segment.
type PendingRetransmit struct {
	Peer    pl.NodeId
	Payload []byte
}

// Server is the SDO server side of the sequence+command layers: it serves
// read/write-by-index requests against an ObjectDictionary, keeping one
// connection per peer NodeId. The node façade feeds it incoming ASnd/UDP
// SDO payloads and relays the returned bytes back to the wire.
type Server struct {
	dict                *od.ObjectDictionary
	logger              *logrus.Entry
	conns               map[pl.NodeId]*connection
	extended            ExtendedHandler
	retransmitTimeoutUs uint64
	maxRetries          int
	segmentSize         int
}

func NewServer(dict *od.ObjectDictionary, extended ExtendedHandler, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if extended == nil {
		extended = unsupportedHandler{}
	}
	return &Server{
		dict:                dict,
		logger:              logger.WithField("component", "sdo-server"),
		conns:               map[pl.NodeId]*connection{},
		extended:            extended,
		retransmitTimeoutUs: 1_000_000,
		maxRetries:          DefaultRetries,
		segmentSize:         DefaultSegmentSize,
	}
}

// SetRetransmitTimeout overrides the upload-segment retransmit deadline
// (default 1s), in microseconds of engine time.
func (s *Server) SetRetransmitTimeout(us uint64) { s.retransmitTimeoutUs = us }

func (s *Server) connFor(peer pl.NodeId) *connection {
	c, ok := s.conns[peer]
	if !ok {
		c = &connection{}
		s.conns[peer] = c
	}
	return c
}

// ConnectionState reports a peer's current sequence-layer state, mainly
// for diagnostics/tests.
func (s *Server) ConnectionState(peer pl.NodeId) ConnectionState {
	c, ok := s.conns[peer]
	if !ok {
		return StateClosed
	}
	return c.seq.state
}

// HandleFrame processes one received SDO payload (sequence header +
// command frame) from peer and returns the bytes to send back. A rejected
// frame returns nil with ErrConnectionClosed; an out-of-order (gap) frame
// returns a bare sequence header with RConErrorResponse, acking the last
// good receive seq, together with ErrSequenceGap.
func (s *Server) HandleFrame(peer pl.NodeId, payload []byte, now uint64) ([]byte, error) {
	h, err := DecodeSequenceHeader(payload)
	if err != nil {
		return nil, err
	}
	c := s.connFor(peer)

	if c.seq.acksLastSend(h) {
		c.hasDeadline = false
		c.retriesLeft = 0
	}

	outcome := c.seq.onReceive(h)
	switch outcome {
	case seqReject:
		return nil, ErrConnectionClosed
	case seqOpenAck:
		resp := s.wrap(c, c.seq.ackHeader(SConInitialization, false), nil)
		c.lastResponse = resp
		return resp, nil
	case seqEstablish:
		resp := s.wrap(c, c.seq.ackHeader(SConConnectionValid, false), nil)
		c.seq.advanceSend()
		c.lastResponse = resp
		return resp, nil
	case seqDuplicate:
		return c.lastResponse, nil
	case seqGap:
		resp := EncodeSequenceHeader(SequenceHeader{
			RecvSeqNumber: c.seq.lastRecv,
			RCon:          RConErrorResponse,
			SendSeqNumber: c.seq.lastSentSeq,
			SCon:          SConConnectionValid,
		})
		return resp[:], ErrSequenceGap
	case seqAccept:
		cmdBytes := payload[SequenceHeaderLength:]
		respCmd, abort := s.executeCommand(c, cmdBytes)
		resp := s.wrap(c, c.seq.ackHeader(SConConnectionValid, false), respCmd)
		c.seq.advanceSend()
		c.lastResponse = resp
		if abort {
			c.seq.reset()
			c.transfer = nil
		} else if c.transfer != nil && c.transfer.kind == transferUpload {
			c.hasDeadline = true
			c.retransmitDeadline = now + s.retransmitTimeoutUs
			c.retriesLeft = s.maxRetries
		}
		return resp, nil
	default:
		return nil, ErrConnectionClosed
	}
}

func (s *Server) wrap(c *connection, h SequenceHeader, cmd []byte) []byte {
	seqBytes := EncodeSequenceHeader(h)
	out := make([]byte, 0, SequenceHeaderLength+len(cmd))
	out = append(out, seqBytes[:]...)
	out = append(out, cmd...)
	return out
}

// Tick checks every connection's upload retransmit deadline; it returns
// one PendingRetransmit per connection whose deadline elapsed, resending
// the last response (or, on retry exhaustion, an abort frame that also
// closes the connection).
func (s *Server) Tick(now uint64) []PendingRetransmit {
	var out []PendingRetransmit
	for peer, c := range s.conns {
		if !c.hasDeadline || now < c.retransmitDeadline {
			continue
		}
		if c.retriesLeft <= 0 {
			transactionId := uint8(0)
			if c.transfer != nil {
				transactionId = c.transfer.transactionId
			}
			abortFrame := s.wrap(c, c.seq.ackHeader(SConConnectionValid, true), buildAbort(transactionId, CommandReadByIndex, AbortTimeout))
			c.seq.reset()
			c.transfer = nil
			c.hasDeadline = false
			out = append(out, PendingRetransmit{Peer: peer, Payload: abortFrame})
			continue
		}
		c.retriesLeft--
		c.retransmitDeadline = now + s.retransmitTimeoutUs
		out = append(out, PendingRetransmit{Peer: peer, Payload: c.lastResponse})
	}
	return out
}

// executeCommand runs one command-layer frame against the OD and returns
// the response command-layer bytes plus whether the transaction aborted.
func (s *Server) executeCommand(c *connection, buf []byte) ([]byte, bool) {
	h, totalSize, rest, err := splitFrame(buf)
	if err != nil {
		return buildAbort(0, CommandNil, AbortCommandInvalid), true
	}
	if h.IsAborted {
		c.transfer = nil
		return nil, true
	}

	if c.transfer != nil {
		return s.continueTransfer(c, h, rest)
	}

	switch h.CommandId {
	case CommandNil:
		return EncodeCommandHeader(CommandHeader{TransactionId: h.TransactionId, IsResponse: true, CommandId: CommandNil})[:], false
	case CommandReadByIndex:
		return s.handleReadByIndex(c, h, rest)
	case CommandWriteByIndex:
		return s.handleWriteByIndex(c, h, totalSize, rest)
	case CommandWriteAllByIndex:
		if err := s.extended.HandleWriteAllByIndex(s.dict, indexFromRequest(rest), rest); err != nil {
			return buildAbort(h.TransactionId, h.CommandId, abortOf(err)), true
		}
		return EncodeCommandHeader(CommandHeader{TransactionId: h.TransactionId, IsResponse: true, CommandId: h.CommandId})[:], false
	case CommandFileRead:
		data, err := s.extended.HandleFileRead(s.dict, rest)
		if err != nil {
			return buildAbort(h.TransactionId, h.CommandId, abortOf(err)), true
		}
		return buildFrame(CommandHeader{TransactionId: h.TransactionId, IsResponse: true, CommandId: h.CommandId}, 0, data), false
	default:
		return buildAbort(h.TransactionId, h.CommandId, AbortUnsupportedAccess), true
	}
}

// checkFixedLength rejects a write whose raw byte count doesn't match the
// stored variant's fixed width; variable-length string/domain/octet types
// are exempt. Catches malformed wire input before it reaches the typed
// accessors in pkg/od, which assume a well-formed buffer.
func checkFixedLength(current od.ObjectValue, data []byte) error {
	switch current.Type {
	case od.DataTypeVisibleString, od.DataTypeOctetString, od.DataTypeUnicodeString, od.DataTypeDomain:
		return nil
	default:
		if len(data) != current.ByteLength() {
			return od.ErrTypeMismatch
		}
		return nil
	}
}

func indexFromRequest(rest []byte) uint16 {
	if len(rest) < 2 {
		return 0
	}
	return uint16(rest[0]) | uint16(rest[1])<<8
}

func abortOf(err error) AbortCode {
	if ac, ok := err.(AbortCode); ok {
		return ac
	}
	return FromOdError(err)
}

// handleReadByIndex serves a ReadByIndex request: request payload is
// index(2)+subindex(1). Values that fit ExpeditedMaxBytes go back in one
// frame; longer values open an upload transferContext.
func (s *Server) handleReadByIndex(c *connection, h CommandHeader, rest []byte) ([]byte, bool) {
	if len(rest) < 3 {
		return buildAbort(h.TransactionId, h.CommandId, AbortCommandInvalid), true
	}
	index := uint16(rest[0]) | uint16(rest[1])<<8
	subIndex := rest[2]
	value, err := s.dict.Read(index, subIndex)
	if err != nil {
		return buildAbort(h.TransactionId, h.CommandId, FromOdError(err)), true
	}
	raw := value.Raw()
	if len(raw) <= ExpeditedMaxBytes {
		resp := CommandHeader{TransactionId: h.TransactionId, IsResponse: true, Segmentation: SegmentationExpedited, CommandId: CommandReadByIndex}
		return buildFrame(resp, 0, raw), false
	}

	segSize := int(h.SegmentSize)
	if segSize <= 0 {
		segSize = s.segmentSize
	}
	chunk := raw
	if len(chunk) > segSize {
		chunk = chunk[:segSize]
	}
	c.transfer = &transferContext{
		kind: transferUpload, transactionId: h.TransactionId,
		index: index, subIndex: subIndex,
		totalSize: uint32(len(raw)), buffer: raw, offset: len(chunk),
	}
	resp := CommandHeader{TransactionId: h.TransactionId, IsResponse: true, Segmentation: SegmentationInitiate, CommandId: CommandReadByIndex}
	return buildFrame(resp, uint32(len(raw)), chunk), false
}

// handleWriteByIndex serves a WriteByIndex request. Expedited carries the
// value inline; Initiate opens a download transferContext that Segment/
// Complete frames (handled by continueTransfer) accumulate into.
func (s *Server) handleWriteByIndex(c *connection, h CommandHeader, totalSize uint32, rest []byte) ([]byte, bool) {
	if len(rest) < 3 {
		return buildAbort(h.TransactionId, h.CommandId, AbortCommandInvalid), true
	}
	index := uint16(rest[0]) | uint16(rest[1])<<8
	subIndex := rest[2]
	data := rest[3:]

	if h.Segmentation == SegmentationInitiate {
		c.transfer = &transferContext{
			kind: transferDownload, transactionId: h.TransactionId,
			index: index, subIndex: subIndex,
			totalSize: totalSize, buffer: make([]byte, 0, totalSize),
		}
		c.transfer.buffer = append(c.transfer.buffer, data...)
		resp := CommandHeader{TransactionId: h.TransactionId, IsResponse: true, Segmentation: SegmentationInitiate, CommandId: CommandWriteByIndex}
		return buildFrame(resp, 0, nil), false
	}

	// Expedited: value arrives whole in this one frame.
	current, err := s.dict.Read(index, subIndex)
	if err != nil {
		return buildAbort(h.TransactionId, h.CommandId, FromOdError(err)), true
	}
	if err := checkFixedLength(current, data); err != nil {
		return buildAbort(h.TransactionId, h.CommandId, FromOdError(err)), true
	}
	value := od.FromRawBytes(current.Type, data)
	if err := s.dict.Write(index, subIndex, value); err != nil {
		return buildAbort(h.TransactionId, h.CommandId, FromOdError(err)), true
	}
	resp := CommandHeader{TransactionId: h.TransactionId, IsResponse: true, Segmentation: SegmentationExpedited, CommandId: CommandWriteByIndex}
	return buildFrame(resp, 0, nil), false
}

// continueTransfer handles a Segment/Complete continuation frame against
// an already-open transferContext.
func (s *Server) continueTransfer(c *connection, h CommandHeader, rest []byte) ([]byte, bool) {
	t := c.transfer
	switch t.kind {
	case transferUpload:
		chunk := t.buffer[t.offset:]
		segSize := int(h.SegmentSize)
		if segSize <= 0 {
			segSize = s.segmentSize
		}
		seg := SegmentationSegment
		if len(chunk) <= segSize {
			seg = SegmentationComplete
		} else {
			chunk = chunk[:segSize]
		}
		t.offset += len(chunk)
		resp := CommandHeader{TransactionId: t.transactionId, IsResponse: true, Segmentation: seg, CommandId: CommandReadByIndex}
		out := buildFrame(resp, 0, chunk)
		if seg == SegmentationComplete {
			c.transfer = nil
		}
		return out, false
	case transferDownload:
		t.buffer = append(t.buffer, rest...)
		seg := h.Segmentation
		if seg != SegmentationComplete {
			resp := CommandHeader{TransactionId: t.transactionId, IsResponse: true, Segmentation: SegmentationSegment, CommandId: CommandWriteByIndex}
			return buildFrame(resp, 0, nil), false
		}
		current, err := s.dict.Read(t.index, t.subIndex)
		if err != nil {
			c.transfer = nil
			return buildAbort(t.transactionId, CommandWriteByIndex, FromOdError(err)), true
		}
		if err := checkFixedLength(current, t.buffer); err != nil {
			c.transfer = nil
			return buildAbort(t.transactionId, CommandWriteByIndex, FromOdError(err)), true
		}
		value := od.FromRawBytes(current.Type, t.buffer)
		if err := s.dict.Write(t.index, t.subIndex, value); err != nil {
			c.transfer = nil
			return buildAbort(t.transactionId, CommandWriteByIndex, FromOdError(err)), true
		}
		c.transfer = nil
		resp := CommandHeader{TransactionId: t.transactionId, IsResponse: true, Segmentation: SegmentationComplete, CommandId: CommandWriteByIndex}
		return buildFrame(resp, 0, nil), false
	default:
		c.transfer = nil
		return buildAbort(h.TransactionId, h.CommandId, AbortCommandInvalid), true
	}
}
