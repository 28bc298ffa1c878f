package pdo

import "github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"

// Pack builds an outgoing PDO payload for the mapping table at
// mappingIndex (TPDO direction), sized to limit (already capped by the
// caller against the channel's configured actual payload, itself capped at
// MaxIsochronousPayload). It returns the buffer and the PDO version read
// from the paired communication parameter's sub-index 2.
//
// A type/length mismatch between a mapping entry and its OD value aborts
// the build with ErrTypeMismatch. A mapping entry referencing a missing OD
// object leaves that slot zero-filled and continues, per §4.3.
func Pack(dict *od.ObjectDictionary, mappingIndex uint16, limit int) ([]byte, uint8, error) {
	if limit > MaxIsochronousPayload {
		limit = MaxIsochronousPayload
	}
	entries, err := decodeMapping(dict, mappingIndex)
	if err != nil {
		return nil, 0, err
	}
	buf := make([]byte, limit)
	for _, m := range entries {
		byteOffset := int(m.BitOffset / 8)
		byteLen := int(m.BitLength / 8)
		if byteOffset+byteLen > limit {
			return nil, 0, od.ErrPdoMapOverrun
		}
		v, err := dict.Read(m.Index, m.SubIndex)
		if err != nil {
			continue // missing OD entry: slot stays zero-filled
		}
		if v.ByteLength() != byteLen {
			return nil, 0, ErrTypeMismatch
		}
		copy(buf[byteOffset:byteOffset+byteLen], v.Raw())
	}
	version, err := dict.ReadU8(commParameterIndex(mappingIndex), 2)
	if err != nil {
		version = 0
	}
	return buf, version, nil
}
