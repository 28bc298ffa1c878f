package sdo

import "encoding/binary"

// Exchange sends one full outgoing wire payload (sequence header + command
// frame) to the server peer and returns its response payload, or an error.
// Supplying this as a function rather than owning a socket keeps Client
// itself free of any I/O or internal goroutine (§5); a host (pkg/config,
// cmd/plnode) wires it to whatever transport actually moves the bytes.
type Exchange func(request []byte) (response []byte, err error)

// Client is a narrow, synchronous SDO client: the sequence-number
// bookkeeping Server performs for inbound requests, mirrored for outbound
// ones. It serves the same role as the teacher's sdo.SDOClient consumed by
// pkg/config, generalized from a channel-and-goroutine wait to a direct
// blocking call on the supplied Exchange.
type Client struct {
	exchange      Exchange
	sendSeq       uint8
	serverAck     uint8
	transactionId uint8
}

// NewClient builds a Client that round-trips requests through exchange.
func NewClient(exchange Exchange) *Client {
	return &Client{exchange: exchange}
}

// Open performs the 3-frame sequence-layer handshake.
func (c *Client) Open() error {
	resp, err := c.exchange(NewOpenFrame())
	if err != nil {
		return err
	}
	openAck, err := DecodeSequenceHeader(resp)
	if err != nil {
		return err
	}

	resp, err = c.exchange(NewConnectionValidAck(openAck.SendSeqNumber))
	if err != nil {
		return err
	}
	establishAck, err := DecodeSequenceHeader(resp)
	if err != nil {
		return err
	}

	c.serverAck = establishAck.SendSeqNumber
	c.sendSeq = 0
	c.transactionId = 0
	return nil
}

func (c *Client) roundTrip(cmdId CommandId, payload []byte) (CommandHeader, uint32, []byte, error) {
	c.sendSeq++
	c.transactionId++
	req := NewRequestFrame(c.sendSeq, c.serverAck, c.transactionId, cmdId, payload)
	resp, err := c.exchange(req)
	if err != nil {
		return CommandHeader{}, 0, nil, err
	}
	seqHdr, err := DecodeSequenceHeader(resp)
	if err != nil {
		return CommandHeader{}, 0, nil, err
	}
	c.serverAck = seqHdr.SendSeqNumber
	return splitFrame(resp[SequenceHeaderLength:])
}

func abortCodeFromPayload(payload []byte) error {
	if len(payload) < 4 {
		return ErrFrameTooShort
	}
	return AbortCode(binary.LittleEndian.Uint32(payload))
}

// ReadByIndex reads one sub-entry's canonical little-endian bytes,
// transparently pulling additional Segment/Complete frames if the server
// opened an upload transfer.
func (c *Client) ReadByIndex(index uint16, subIndex uint8) ([]byte, error) {
	h, totalSize, payload, err := c.roundTrip(CommandReadByIndex, NewReadByIndexPayload(index, subIndex))
	if err != nil {
		return nil, err
	}
	if h.IsAborted {
		return nil, abortCodeFromPayload(payload)
	}
	if h.Segmentation != SegmentationInitiate {
		return payload, nil
	}

	buf := make([]byte, 0, totalSize)
	buf = append(buf, payload...)
	for {
		h, _, payload, err := c.roundTrip(CommandReadByIndex, nil)
		if err != nil {
			return nil, err
		}
		if h.IsAborted {
			return nil, abortCodeFromPayload(payload)
		}
		buf = append(buf, payload...)
		if h.Segmentation == SegmentationComplete {
			break
		}
	}
	return buf, nil
}

// WriteByIndex writes data to one sub-entry, using a single Expedited
// frame when it fits (ExpeditedMaxBytes) and an Initiate/Segment/Complete
// transfer otherwise.
func (c *Client) WriteByIndex(index uint16, subIndex uint8, data []byte) error {
	if len(data) <= ExpeditedMaxBytes {
		h, _, payload, err := c.roundTrip(CommandWriteByIndex, NewWriteByIndexPayload(index, subIndex, data))
		if err != nil {
			return err
		}
		if h.IsAborted {
			return abortCodeFromPayload(payload)
		}
		return nil
	}

	head := NewWriteByIndexPayload(index, subIndex, nil)
	c.sendSeq++
	c.transactionId++
	segSize := DefaultSegmentSize
	first := data
	if len(first) > segSize {
		first = first[:segSize]
	}
	req := buildInitiateWriteFrame(c.sendSeq, c.serverAck, c.transactionId, head, uint32(len(data)), first)
	resp, err := c.exchange(req)
	if err != nil {
		return err
	}
	seqHdr, err := DecodeSequenceHeader(resp)
	if err != nil {
		return err
	}
	c.serverAck = seqHdr.SendSeqNumber
	h, _, payload, err := splitFrame(resp[SequenceHeaderLength:])
	if err != nil {
		return err
	}
	if h.IsAborted {
		return abortCodeFromPayload(payload)
	}

	rest := data[len(first):]
	for len(rest) > 0 {
		chunk := rest
		if len(chunk) > segSize {
			chunk = chunk[:segSize]
		}
		rest = rest[len(chunk):]
		seg := SegmentationSegment
		if len(rest) == 0 {
			seg = SegmentationComplete
		}
		h, _, payload, err := c.roundTripSegment(seg, chunk)
		if err != nil {
			return err
		}
		if h.IsAborted {
			return abortCodeFromPayload(payload)
		}
	}
	return nil
}

func (c *Client) roundTripSegment(seg Segmentation, chunk []byte) (CommandHeader, uint32, []byte, error) {
	c.sendSeq++
	c.transactionId++
	cmdHdr := CommandHeader{TransactionId: c.transactionId, Segmentation: seg, CommandId: CommandWriteByIndex}
	cmd := buildFrame(cmdHdr, 0, chunk)
	seqHdr := EncodeSequenceHeader(SequenceHeader{RecvSeqNumber: c.serverAck, RCon: RConConnectionValid, SendSeqNumber: c.sendSeq, SCon: SConConnectionValid})
	req := append(append([]byte{}, seqHdr[:]...), cmd...)
	resp, err := c.exchange(req)
	if err != nil {
		return CommandHeader{}, 0, nil, err
	}
	respSeqHdr, err := DecodeSequenceHeader(resp)
	if err != nil {
		return CommandHeader{}, 0, nil, err
	}
	c.serverAck = respSeqHdr.SendSeqNumber
	return splitFrame(resp[SequenceHeaderLength:])
}

// buildInitiateWriteFrame assembles the sequence + Initiate command frame
// that opens a segmented download: head is the index+subIndex payload
// prefix NewWriteByIndexPayload produces (with a nil value), chunk is the
// first value segment.
func buildInitiateWriteFrame(clientSendSeq, serverRecvAck, transactionId uint8, head []byte, totalSize uint32, chunk []byte) []byte {
	seqHdr := EncodeSequenceHeader(SequenceHeader{RecvSeqNumber: serverRecvAck, RCon: RConConnectionValid, SendSeqNumber: clientSendSeq, SCon: SConConnectionValid})
	cmdHdr := CommandHeader{TransactionId: transactionId, Segmentation: SegmentationInitiate, CommandId: CommandWriteByIndex}
	payload := append(append([]byte{}, head...), chunk...)
	cmd := buildFrame(cmdHdr, totalSize, payload)
	out := make([]byte, 0, len(seqHdr)+len(cmd))
	out = append(out, seqHdr[:]...)
	return append(out, cmd...)
}
