package od

import "encoding/binary"

// MappingEntry decodes one 64-bit PDO mapping entry (0x16xx/0x1Axx
// sub-indices 1..N): the referenced index/sub-index and its bit offset and
// bit length within the process image.
type MappingEntry struct {
	Index      uint16
	SubIndex   uint8
	BitOffset  uint16
	BitLength  uint16
}

// DecodeMappingEntry unpacks the little-endian UNSIGNED64 mapping word used
// by 0x16xx (RPDO) / 0x1Axx (TPDO) mapping tables: bits 0-15 index, bits
// 16-23 sub-index, bits 24-31 reserved, bits 32-47 offset, bits 48-63 length.
func DecodeMappingEntry(raw uint64) MappingEntry {
	return MappingEntry{
		Index:     uint16(raw & 0xFFFF),
		SubIndex:  uint8((raw >> 16) & 0xFF),
		BitOffset: uint16((raw >> 32) & 0xFFFF),
		BitLength: uint16((raw >> 48) & 0xFFFF),
	}
}

// EncodeMappingEntry packs a MappingEntry back into its wire UNSIGNED64 form.
func EncodeMappingEntry(m MappingEntry) uint64 {
	return uint64(m.Index) | uint64(m.SubIndex)<<16 | uint64(m.BitOffset)<<32 | uint64(m.BitLength)<<48
}

func isMappingEntryIndex(index uint16) bool {
	return (index >= 0x1600 && index <= 0x17FF) || (index >= 0x1A00 && index <= 0x1BFF)
}

// ActualPayloadSubIndex returns the 0x1F98 sub-index holding the configured
// actual payload length for a mapping table's direction: sub-index 4 for an
// RPDO mapping table (0x16xx), sub-index 5 for a TPDO mapping table (0x1Axx).
func ActualPayloadSubIndex(mappingIndex uint16) uint8 {
	if mappingIndex >= 0x1A00 && mappingIndex <= 0x1BFF {
		return 5
	}
	return 4
}

// dispatchSpecialWrite runs the additional, index-specific behavior that a
// successful application write to certain objects must trigger: 0x1010
// (store parameters) and 0x1011 (restore default parameters). PDO mapping
// activation is validated by Write before the count is stored (see od.go)
// so a rejected mapping write never reaches here with a stale count.
func (od *ObjectDictionary) dispatchSpecialWrite(entry *Entry, subIndex uint8, v ObjectValue) error {
	switch {
	case entry.Index == 0x1010:
		return od.storeParameters(subIndex)
	case entry.Index == 0x1011:
		return od.hook.RequestRestoreDefaults()
	}
	return nil
}

// storeParameters implements the 0x1010 command: gather every *Store
// access sub-entry in the selected OD range and hand them to the
// persistence hook as one save batch. Sub-index 1 means "all parameters";
// sub-index 2 scopes to the communication profile range (0x1000-0x1FFF);
// sub-index 3 scopes to the application object range (0x6000-0x9FFF), per
// spec.md §4.2.
func (od *ObjectDictionary) storeParameters(subIndex uint8) error {
	inScope := func(idx uint16) bool {
		switch subIndex {
		case 2:
			return idx >= 0x1000 && idx <= 0x1FFF
		case 3:
			return idx >= 0x6000 && idx <= 0x9FFF
		default:
			return true
		}
	}
	batch := map[ObjectKey]ObjectValue{}
	for idx, entry := range od.entries {
		if idx == 0x1010 || idx == 0x1011 {
			continue
		}
		if !inScope(idx) {
			continue
		}
		for si, s := range entry.subs {
			if s.access.IsStorable() {
				batch[ObjectKey{Index: idx, SubIndex: si}] = s.value
			}
		}
	}
	if len(batch) == 0 {
		return nil
	}
	return od.hook.Save(batch)
}

// validateMapping checks a just-activated PDO mapping table (NrOfEntries set
// to n > 0) against the mappability and aggregate-size rules: every
// referenced object must permit PDO mapping, sub-entries must be
// byte-aligned (bit-granular mapping is unsupported), and the total byte
// length must not exceed maxPayload.
func (od *ObjectDictionary) validateMapping(table *Entry, n uint8) error {
	if n == 0 {
		return nil
	}
	var totalBits uint32
	for i := uint8(1); i <= n; i++ {
		s, ok := table.subs[i]
		if !ok {
			return ErrObjectNotFound
		}
		raw, err := s.value.U64()
		if err != nil {
			return err
		}
		m := DecodeMappingEntry(raw)
		if m.BitLength%8 != 0 || m.BitOffset%8 != 0 {
			return ErrUnsupportedBitMap
		}
		target, err := od.find(m.Index)
		if err != nil {
			return err
		}
		ts, err := target.sub(m.SubIndex)
		if err != nil {
			return err
		}
		if ts.pdoMapping == PdoMappingNo {
			return ErrValidation
		}
		totalBits += uint32(m.BitLength)
	}
	maxPayload := uint32(CDllIsochrMaxPayl)
	if v, err := od.Read(0x1F98, ActualPayloadSubIndex(table.Index)); err == nil {
		if configured, err := v.U16(); err == nil && configured != 0 && uint32(configured) < maxPayload {
			maxPayload = uint32(configured)
		}
	}
	if totalBits/8 > maxPayload {
		return ErrPdoMapOverrun
	}
	return nil
}
