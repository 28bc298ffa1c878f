package od

// ValueRange bounds a numeric sub-entry; writes outside [Min,Max] fail.
type ValueRange struct {
	Min ObjectValue
	Max ObjectValue
}

// subEntry is a single addressable slot: sub-index 0 for a Variable, or any
// sub-index of an Array/Record.
type subEntry struct {
	name       string
	access     Access
	pdoMapping PdoMapping
	defaultVal ObjectValue
	valueRange *ValueRange
	value      ObjectValue
}

// Entry is the main building block of an ObjectDictionary: an object at a
// specific index, which may be a Variable (single value at sub-index 0) or
// an Array/Record (sub-index 0 holds the number-of-entries count,
// sub-indices 1..N hold data).
type Entry struct {
	Index      uint16
	Name       string
	Category   Category
	ObjectType ObjectType
	subs       map[uint8]*subEntry
	maxSub     uint8
}

// NewVariableEntry creates a VAR object; it is only ever addressed at
// sub-index 0.
func NewVariableEntry(index uint16, name string, category Category, access Access, pdoMapping PdoMapping, value ObjectValue, valueRange *ValueRange) *Entry {
	e := &Entry{Index: index, Name: name, Category: category, ObjectType: ObjectTypeVariable, subs: map[uint8]*subEntry{}}
	e.subs[0] = &subEntry{name: name, access: access, pdoMapping: pdoMapping, defaultVal: value, valueRange: valueRange, value: value}
	return e
}

// SubEntrySpec describes one data sub-index to add to an Array/Record via
// NewArrayEntry/NewRecordEntry.
type SubEntrySpec struct {
	SubIndex   uint8
	Name       string
	Access     Access
	PdoMapping PdoMapping
	Value      ObjectValue
	ValueRange *ValueRange
}

func newIndexedEntry(index uint16, name string, category Category, objType ObjectType, countAccess Access, subs []SubEntrySpec) *Entry {
	e := &Entry{Index: index, Name: name, Category: category, ObjectType: objType, subs: map[uint8]*subEntry{}}
	var maxSub uint8
	for _, s := range subs {
		e.subs[s.SubIndex] = &subEntry{
			name:       s.Name,
			access:     s.Access,
			pdoMapping: s.PdoMapping,
			defaultVal: s.Value,
			valueRange: s.ValueRange,
			value:      s.Value,
		}
		if s.SubIndex > maxSub {
			maxSub = s.SubIndex
		}
	}
	e.maxSub = maxSub
	// Sub-index 0 holds "number of entries" (spec-preferred semantics, see
	// DESIGN.md Open Question resolution): the count of data sub-indices,
	// not the highest sub-index number.
	e.subs[0] = &subEntry{name: "NrOfEntries", access: countAccess, pdoMapping: PdoMappingNo, defaultVal: NewU8(uint8(len(subs))), value: NewU8(uint8(len(subs)))}
	return e
}

// NewArrayEntry creates an ARRAY object: homogeneous data sub-indices sharing
// a data type, addressed 1..N, with a count at sub-index 0.
func NewArrayEntry(index uint16, name string, category Category, countAccess Access, subs []SubEntrySpec) *Entry {
	return newIndexedEntry(index, name, category, ObjectTypeArray, countAccess, subs)
}

// NewRecordEntry creates a RECORD object: heterogeneous named sub-indices,
// with a count at sub-index 0.
func NewRecordEntry(index uint16, name string, category Category, countAccess Access, subs []SubEntrySpec) *Entry {
	return newIndexedEntry(index, name, category, ObjectTypeRecord, countAccess, subs)
}

// newEmptyIndexedEntry creates an Array/Record shell with NrOfEntries at
// zero, for an INI parser that discovers data sub-indices in a later pass.
func newEmptyIndexedEntry(index uint16, name string, category Category, objType ObjectType) *Entry {
	e := &Entry{Index: index, Name: name, Category: category, ObjectType: objType, subs: map[uint8]*subEntry{}}
	e.subs[0] = &subEntry{name: "NrOfEntries", access: AccessReadOnly, pdoMapping: PdoMappingNo, defaultVal: NewU8(0), value: NewU8(0)}
	return e
}

func (e *Entry) sub(subIndex uint8) (*subEntry, error) {
	if e.ObjectType == ObjectTypeVariable && subIndex != 0 {
		return nil, ErrSubObjectNotFound
	}
	s, ok := e.subs[subIndex]
	if !ok {
		return nil, ErrSubObjectNotFound
	}
	return s, nil
}

// NumberOfEntries returns the data sub-index count for Array/Record
// objects, i.e. the live value of sub-index 0.
func (e *Entry) NumberOfEntries() uint8 {
	if e.ObjectType == ObjectTypeVariable {
		return 0
	}
	s := e.subs[0]
	n, _ := s.value.U8()
	return n
}

// setNumberOfEntries updates the live value of sub-index 0 for Array/Record
// objects (used by PDO mapping activation).
func (e *Entry) setNumberOfEntries(n uint8) {
	e.subs[0].value = NewU8(n)
}
