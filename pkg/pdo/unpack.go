package pdo

import "github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"

// Unpack distributes an incoming PDO payload into the OD per the mapping
// table at mappingIndex (RPDO direction), using an internal, access-
// bypassing write for every mapped slot. If payload is shorter than the
// highest mapped offset+length, it returns ErrPayloadShort without writing
// anything; the caller (DLL error accounting) treats this as PdoPayloadShort
// for the originating node.
func Unpack(dict *od.ObjectDictionary, mappingIndex uint16, payload []byte) error {
	entries, err := decodeMapping(dict, mappingIndex)
	if err != nil {
		return err
	}
	if requiredBytes(entries) > len(payload) {
		return ErrPayloadShort
	}
	for _, m := range entries {
		byteOffset := int(m.BitOffset / 8)
		byteLen := int(m.BitLength / 8)
		target := dict.Find(m.Index)
		if target == nil {
			continue
		}
		current, err := dict.Read(m.Index, m.SubIndex)
		if err != nil {
			continue
		}
		slice := payload[byteOffset : byteOffset+byteLen]
		value := od.FromRawBytes(current.Type, slice)
		if err := dict.WriteInternal(m.Index, m.SubIndex, value, true); err != nil {
			return err
		}
	}
	return nil
}
