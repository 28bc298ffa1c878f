package sdo

// transferKind distinguishes which direction a segmented context serves.
type transferKind uint8

const (
	transferDownload transferKind = iota // client is writing to us (WriteByIndex)
	transferUpload                       // client is reading from us (ReadByIndex)
)

// transferContext accumulates a segmented transfer across several command
// frames (§3 Data Model: "the context carries transaction id, total size,
// accumulating buffer, offset, index/sub-index, ...").
type transferContext struct {
	kind          transferKind
	transactionId uint8
	index         uint16
	subIndex      uint8
	totalSize     uint32
	buffer        []byte
	offset        int
}
