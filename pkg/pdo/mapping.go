package pdo

import "github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"

// MaxIsochronousPayload is C_DLL_ISOCHR_MAX_PAYL: the hard ceiling on any
// single PReq/PRes payload, independent of configured channel limits.
const MaxIsochronousPayload = od.CDllIsochrMaxPayl

// commParameterIndex returns the communication-parameter object that owns a
// mapping table: 0x1600-series (RPDO mapping) pairs with 0x1400-series, and
// 0x1A00-series (TPDO mapping) pairs with 0x1800-series, both offset by
// -0x200 from the mapping index.
func commParameterIndex(mappingIndex uint16) uint16 {
	return mappingIndex - 0x200
}

// requiredBytes computes ceil(max(offset+length)/8) across a decoded
// mapping set: the payload length Unpack requires before it writes
// anything. Activation-time validation is done by the od package.
func requiredBytes(entries []od.MappingEntry) int {
	var maxBit uint32
	for _, e := range entries {
		end := uint32(e.BitOffset) + uint32(e.BitLength)
		if end > maxBit {
			maxBit = end
		}
	}
	return int((maxBit + 7) / 8)
}

// decodeMapping reads the active mapping entries (sub-index 1..N) of the
// mapping table at mappingIndex.
func decodeMapping(dict *od.ObjectDictionary, mappingIndex uint16) ([]od.MappingEntry, error) {
	table := dict.Find(mappingIndex)
	if table == nil {
		return nil, od.ErrObjectNotFound
	}
	n := table.NumberOfEntries()
	entries := make([]od.MappingEntry, 0, n)
	for i := uint8(1); i <= n; i++ {
		v, err := dict.Read(mappingIndex, i)
		if err != nil {
			return nil, err
		}
		raw, err := v.U64()
		if err != nil {
			return nil, err
		}
		entries = append(entries, od.DecodeMappingEntry(raw))
	}
	return entries, nil
}
