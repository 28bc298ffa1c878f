package od

import (
	"encoding/binary"
	"fmt"
	"math"

	pl "github.com/fabiomolinar/powerlink-rs-sub001"
)

// ObjectValue is a tagged union over the CiA/EPSG basic data types. The
// tag (Type) and the canonical little-endian encoding (raw) are kept
// together so PDO packing and SDO read/write-by-index can move a value
// between the OD and the wire without re-deriving its shape.
type ObjectValue struct {
	Type DataType
	raw  []byte
}

// Raw returns the canonical little-endian encoding of v.
func (v ObjectValue) Raw() []byte {
	return v.raw
}

// ByteLength returns the number of bytes v occupies on the wire.
func (v ObjectValue) ByteLength() int {
	return len(v.raw)
}

func fromRaw(t DataType, raw []byte) ObjectValue {
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return ObjectValue{Type: t, raw: cp}
}

// --- Typed constructors ---

func NewBool(b bool) ObjectValue {
	v := byte(0)
	if b {
		v = 1
	}
	return fromRaw(DataTypeBoolean, []byte{v})
}

func NewI8(x int8) ObjectValue  { return fromRaw(DataTypeInteger8, []byte{byte(x)}) }
func NewU8(x uint8) ObjectValue { return fromRaw(DataTypeUnsigned8, []byte{x}) }

func NewI16(x int16) ObjectValue {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(x))
	return fromRaw(DataTypeInteger16, b)
}

func NewU16(x uint16) ObjectValue {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, x)
	return fromRaw(DataTypeUnsigned16, b)
}

func NewI32(x int32) ObjectValue {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(x))
	return fromRaw(DataTypeInteger32, b)
}

func NewU32(x uint32) ObjectValue {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, x)
	return fromRaw(DataTypeUnsigned32, b)
}

func NewI64(x int64) ObjectValue {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(x))
	return fromRaw(DataTypeInteger64, b)
}

func NewU64(x uint64) ObjectValue {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, x)
	return fromRaw(DataTypeUnsigned64, b)
}

func NewReal32(x float32) ObjectValue {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(x))
	return fromRaw(DataTypeReal32, b)
}

func NewReal64(x float64) ObjectValue {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(x))
	return fromRaw(DataTypeReal64, b)
}

func NewVisibleString(s string) ObjectValue { return fromRaw(DataTypeVisibleString, []byte(s)) }
func NewOctetString(b []byte) ObjectValue   { return fromRaw(DataTypeOctetString, b) }
func NewUnicodeString(s string) ObjectValue { return fromRaw(DataTypeUnicodeString, []byte(s)) }
func NewDomain(b []byte) ObjectValue        { return fromRaw(DataTypeDomain, b) }

func NewTimeOfDay(t pl.TimeOfDay) ObjectValue {
	b := make([]byte, 6)
	binary.LittleEndian.PutUint32(b[0:4], t.MillisecondsAfterMidnight)
	binary.LittleEndian.PutUint16(b[4:6], t.Days)
	return fromRaw(DataTypeTimeOfDay, b)
}

func NewTimeDifference(t pl.TimeDifference) ObjectValue {
	b := make([]byte, 6)
	binary.LittleEndian.PutUint32(b[0:4], t.Milliseconds)
	binary.LittleEndian.PutUint16(b[4:6], t.Days)
	return fromRaw(DataTypeTimeDifference, b)
}

func NewNetTime(t pl.NetTime) ObjectValue {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], t.Seconds)
	binary.LittleEndian.PutUint32(b[4:8], t.Nanoseconds)
	return fromRaw(DataTypeNetTime, b)
}

func NewMacAddress(m pl.MacAddress) ObjectValue { return fromRaw(DataTypeMacAddress, m[:]) }
func NewIpAddress(ip pl.IpAddress) ObjectValue   { return fromRaw(DataTypeIpAddress, ip[:]) }

// --- Typed accessors ---

func (v ObjectValue) checkType(t DataType) error {
	if v.Type != t {
		return fmt.Errorf("%w: expected %d got %d", ErrTypeMismatch, t, v.Type)
	}
	return nil
}

func (v ObjectValue) Bool() (bool, error) {
	if err := v.checkType(DataTypeBoolean); err != nil {
		return false, err
	}
	return v.raw[0] != 0, nil
}

func (v ObjectValue) U8() (uint8, error) {
	if err := v.checkType(DataTypeUnsigned8); err != nil {
		return 0, err
	}
	return v.raw[0], nil
}

func (v ObjectValue) I8() (int8, error) {
	if err := v.checkType(DataTypeInteger8); err != nil {
		return 0, err
	}
	return int8(v.raw[0]), nil
}

func (v ObjectValue) U16() (uint16, error) {
	if err := v.checkType(DataTypeUnsigned16); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v.raw), nil
}

func (v ObjectValue) I16() (int16, error) {
	if err := v.checkType(DataTypeInteger16); err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(v.raw)), nil
}

func (v ObjectValue) U32() (uint32, error) {
	if err := v.checkType(DataTypeUnsigned32); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v.raw), nil
}

func (v ObjectValue) I32() (int32, error) {
	if err := v.checkType(DataTypeInteger32); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(v.raw)), nil
}

func (v ObjectValue) U64() (uint64, error) {
	if err := v.checkType(DataTypeUnsigned64); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(v.raw), nil
}

func (v ObjectValue) I64() (int64, error) {
	if err := v.checkType(DataTypeInteger64); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(v.raw)), nil
}

func (v ObjectValue) Real32() (float32, error) {
	if err := v.checkType(DataTypeReal32); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(v.raw)), nil
}

func (v ObjectValue) Real64() (float64, error) {
	if err := v.checkType(DataTypeReal64); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(v.raw)), nil
}

func (v ObjectValue) String() string {
	switch v.Type {
	case DataTypeVisibleString, DataTypeUnicodeString:
		return string(v.raw)
	default:
		return fmt.Sprintf("%v", v.raw)
	}
}

func (v ObjectValue) Bytes() ([]byte, error) {
	switch v.Type {
	case DataTypeOctetString, DataTypeDomain:
		return v.raw, nil
	default:
		return nil, ErrTypeMismatch
	}
}

// compareNumeric compares two numeric ObjectValues of the same type,
// returning -1/0/1, used by value-range checking.
func compareNumeric(a, b ObjectValue) (int, error) {
	if a.Type != b.Type {
		return 0, ErrTypeMismatch
	}
	switch a.Type {
	case DataTypeUnsigned8, DataTypeUnsigned16, DataTypeUnsigned32, DataTypeUnsigned64, DataTypeBoolean:
		av, bv := toU64(a), toU64(b)
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case DataTypeInteger8, DataTypeInteger16, DataTypeInteger32, DataTypeInteger64:
		av, bv := toI64(a), toI64(b)
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case DataTypeReal32, DataTypeReal64:
		av, bv := toF64(a), toF64(b)
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, ErrTypeMismatch
	}
}

func toU64(v ObjectValue) uint64 {
	switch len(v.raw) {
	case 1:
		return uint64(v.raw[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(v.raw))
	case 4:
		return uint64(binary.LittleEndian.Uint32(v.raw))
	default:
		return binary.LittleEndian.Uint64(v.raw)
	}
}

func toI64(v ObjectValue) int64 {
	switch len(v.raw) {
	case 1:
		return int64(int8(v.raw[0]))
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(v.raw)))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(v.raw)))
	default:
		return int64(binary.LittleEndian.Uint64(v.raw))
	}
}

func toF64(v ObjectValue) float64 {
	if len(v.raw) == 4 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(v.raw)))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(v.raw))
}

// FromRawBytes reconstructs an ObjectValue of the given type from its
// canonical little-endian encoding, as used when writing PDO-unpacked
// bytes back into the OD.
func FromRawBytes(t DataType, raw []byte) ObjectValue {
	return fromRaw(t, raw)
}
