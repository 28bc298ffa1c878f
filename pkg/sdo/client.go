package sdo

// The functions below build the client-side request frames a host (the MN,
// or a diagnostic tool) sends to an SDO server. They are stateless wire
// helpers rather than a full client state machine: a caller tracks its own
// sequence numbers (mirroring Server's bookkeeping) and feeds responses
// back through DecodeSequenceHeader/DecodeCommandHeader.

// NewOpenFrame builds the first handshake frame: Initialization+Initialization.
func NewOpenFrame() []byte {
	h := EncodeSequenceHeader(SequenceHeader{RCon: RConInitialization, SCon: SConInitialization})
	return h[:]
}

// NewConnectionValidAck builds the client's echo of the server's seq-0
// Opening ack, completing the handshake (Opening -> Established).
func NewConnectionValidAck(serverSendSeq uint8) []byte {
	h := EncodeSequenceHeader(SequenceHeader{
		RecvSeqNumber: serverSendSeq,
		RCon:          RConConnectionValid,
		SendSeqNumber: 0,
		SCon:          SConConnectionValid,
	})
	return h[:]
}

// NewReadByIndexPayload builds an expedited ReadByIndex request body
// (index + sub-index; no value, the server fills one in).
func NewReadByIndexPayload(index uint16, subIndex uint8) []byte {
	return []byte{byte(index), byte(index >> 8), subIndex}
}

// NewWriteByIndexPayload builds an expedited WriteByIndex request body
// (index + sub-index + the value's canonical little-endian bytes).
func NewWriteByIndexPayload(index uint16, subIndex uint8, value []byte) []byte {
	out := make([]byte, 0, 3+len(value))
	out = append(out, byte(index), byte(index>>8), subIndex)
	return append(out, value...)
}

// NewRequestFrame assembles a full client request: sequence header
// (Established, acking serverRecvAck) + an Expedited command frame of the
// given command id and payload.
func NewRequestFrame(clientSendSeq, serverRecvAck uint8, transactionId uint8, cmdId CommandId, payload []byte) []byte {
	seq := EncodeSequenceHeader(SequenceHeader{
		RecvSeqNumber: serverRecvAck,
		RCon:          RConConnectionValid,
		SendSeqNumber: clientSendSeq,
		SCon:          SConConnectionValid,
	})
	cmd := buildFrame(CommandHeader{TransactionId: transactionId, Segmentation: SegmentationExpedited, CommandId: cmdId}, 0, payload)
	out := make([]byte, 0, len(seq)+len(cmd))
	out = append(out, seq[:]...)
	return append(out, cmd...)
}
