// Package od implements the POWERLINK Object Dictionary: a typed,
// indexed/sub-indexed store with access rules, persistence hooks, and
// PDO-mapping validation.
package od

// DataType identifies the wire representation of an ObjectValue. Its values
// are this package's own numbering, not the CiA/EPSG data type codes;
// parser.go maps those codes onto it.
type DataType uint8

const (
	DataTypeBoolean DataType = iota + 1
	DataTypeInteger8
	DataTypeInteger16
	DataTypeInteger32
	DataTypeInteger64
	DataTypeUnsigned8
	DataTypeUnsigned16
	DataTypeUnsigned32
	DataTypeUnsigned64
	DataTypeReal32
	DataTypeReal64
	DataTypeVisibleString
	DataTypeOctetString
	DataTypeUnicodeString
	DataTypeDomain
	DataTypeTimeOfDay
	DataTypeTimeDifference
	DataTypeNetTime
	DataTypeMacAddress
	DataTypeIpAddress
)

// ObjectType distinguishes the three CiA-301 object shapes.
type ObjectType uint8

const (
	ObjectTypeVariable ObjectType = iota
	ObjectTypeArray
	ObjectTypeRecord
)

// Category classifies whether an entry must be present.
type Category uint8

const (
	CategoryMandatory Category = iota
	CategoryOptional
	CategoryConditional
)

// Access controls who may read/write an entry and whether writes persist.
type Access uint8

const (
	AccessReadOnly Access = iota
	AccessWriteOnly
	AccessWriteOnlyStore
	AccessReadWrite
	AccessReadWriteStore
	AccessConstant
	AccessConditional
)

// IsStorable reports whether writes to this access type must be mirrored to
// the persistence hook.
func (a Access) IsStorable() bool {
	return a == AccessWriteOnlyStore || a == AccessReadWriteStore
}

// IsWritable reports whether an application-origin write is ever permitted.
func (a Access) IsWritable() bool {
	switch a {
	case AccessWriteOnly, AccessWriteOnlyStore, AccessReadWrite, AccessReadWriteStore, AccessConditional:
		return true
	default:
		return false
	}
}

// IsReadable reports whether an application-origin read is ever permitted.
func (a Access) IsReadable() bool {
	switch a {
	case AccessReadOnly, AccessReadWrite, AccessReadWriteStore, AccessConstant, AccessConditional:
		return true
	default:
		return false
	}
}

// PdoMapping describes whether/how an entry may be referenced from a PDO
// mapping table.
type PdoMapping uint8

const (
	PdoMappingNo PdoMapping = iota
	PdoMappingOptional
	PdoMappingDefault
)

// CDllIsochrMaxPayl is C_DLL_ISOCHR_MAX_PAYL: the hard ceiling on any single
// isochronous (PReq/PRes) payload, regardless of configured limits.
const CDllIsochrMaxPayl = 1490
