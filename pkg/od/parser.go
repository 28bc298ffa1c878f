package od

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

var (
	matchIdxRegExp    = regexp.MustCompile(`^[0-9A-Fa-f]{4}$`)
	matchSubidxRegExp = regexp.MustCompile(`^([0-9A-Fa-f]{4})[Ss]ub([0-9A-Fa-f]+)$`)
)

// ParseINI builds an ObjectDictionary from an EDS/XDD-style INI document:
// sections named by 4-hex-digit index ("1018") define an object, and
// sections named "<index>sub<subindex>" ("1018sub1") define its data
// sub-entries. source is anything ini.Load accepts (path, []byte, io.Reader).
func ParseINI(source any, hook PersistenceHook) (*ObjectDictionary, error) {
	cfg, err := ini.Load(source)
	if err != nil {
		return nil, fmt.Errorf("od: parse ini: %w", err)
	}
	dict := New(hook, nil)

	for _, section := range cfg.Sections() {
		name := section.Name()
		if !matchIdxRegExp.MatchString(name) {
			continue
		}
		idx, err := strconv.ParseUint(name, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("od: parse index %q: %w", name, err)
		}
		entry, err := entryFromSection(uint16(idx), section)
		if err != nil {
			return nil, fmt.Errorf("od: parse object x%x: %w", idx, err)
		}
		dict.AddEntry(entry)
	}

	for _, section := range cfg.Sections() {
		name := section.Name()
		m := matchSubidxRegExp.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		idx, err := strconv.ParseUint(m[1], 16, 16)
		if err != nil {
			return nil, fmt.Errorf("od: parse sub-object index %q: %w", name, err)
		}
		subIdx, err := strconv.ParseUint(m[2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("od: parse sub-object subindex %q: %w", name, err)
		}
		entry := dict.Find(uint16(idx))
		if entry == nil {
			return nil, fmt.Errorf("od: sub-object x%x/%d references unknown index", idx, subIdx)
		}
		spec, err := subEntrySpecFromSection(section)
		if err != nil {
			return nil, fmt.Errorf("od: parse sub-object x%x/%d: %w", idx, subIdx, err)
		}
		spec.SubIndex = uint8(subIdx)
		entry.subs[spec.SubIndex] = &subEntry{
			name:       spec.Name,
			access:     spec.Access,
			pdoMapping: spec.PdoMapping,
			defaultVal: spec.Value,
			valueRange: spec.ValueRange,
			value:      spec.Value,
		}
		if spec.SubIndex > entry.maxSub {
			entry.maxSub = spec.SubIndex
		}
	}

	for _, entry := range dict.entries {
		if entry.ObjectType == ObjectTypeVariable {
			continue
		}
		var count uint8
		for si := range entry.subs {
			if si != 0 {
				count++
			}
		}
		entry.setNumberOfEntries(count)
		entry.subs[0].defaultVal = entry.subs[0].value
	}

	return dict, nil
}

func entryFromSection(index uint16, section *ini.Section) (*Entry, error) {
	name := section.Key("ParameterName").String()
	category := parseCategory(section.Key("ObjFlags").String())
	objectTypeRaw := section.Key("ObjectType").MustInt(7)

	switch objectTypeRaw {
	case 7: // VAR
		access, err := parseAccess(section.Key("AccessType").String())
		if err != nil {
			return nil, err
		}
		dt, err := parseDataType(section.Key("DataType").String())
		if err != nil {
			return nil, err
		}
		value, err := parseDefaultValue(dt, section.Key("DefaultValue").String())
		if err != nil {
			return nil, err
		}
		return NewVariableEntry(index, name, category, access, parsePdoMapping(section.Key("PDOMapping").String()), value, nil), nil
	case 8: // ARRAY
		return newEmptyIndexedEntry(index, name, category, ObjectTypeArray), nil
	case 9: // RECORD
		return newEmptyIndexedEntry(index, name, category, ObjectTypeRecord), nil
	default:
		return nil, fmt.Errorf("%w: unsupported ObjectType %d", ErrValidation, objectTypeRaw)
	}
}

func subEntrySpecFromSection(section *ini.Section) (SubEntrySpec, error) {
	name := section.Key("ParameterName").String()
	access, err := parseAccess(section.Key("AccessType").String())
	if err != nil {
		return SubEntrySpec{}, err
	}
	dt, err := parseDataType(section.Key("DataType").String())
	if err != nil {
		return SubEntrySpec{}, err
	}
	value, err := parseDefaultValue(dt, section.Key("DefaultValue").String())
	if err != nil {
		return SubEntrySpec{}, err
	}
	return SubEntrySpec{
		Name:       name,
		Access:     access,
		PdoMapping: parsePdoMapping(section.Key("PDOMapping").String()),
		Value:      value,
	}, nil
}

func parseCategory(objFlags string) Category {
	switch strings.TrimSpace(objFlags) {
	case "1":
		return CategoryConditional
	default:
		return CategoryOptional
	}
}

func parseAccess(raw string) (Access, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ro":
		return AccessReadOnly, nil
	case "wo":
		return AccessWriteOnly, nil
	case "wos":
		return AccessWriteOnlyStore, nil
	case "rw":
		return AccessReadWrite, nil
	case "rws":
		return AccessReadWriteStore, nil
	case "const":
		return AccessConstant, nil
	case "cond":
		return AccessConditional, nil
	default:
		return 0, fmt.Errorf("%w: unknown AccessType %q", ErrValidation, raw)
	}
}

func parsePdoMapping(raw string) PdoMapping {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "optional":
		return PdoMappingOptional
	case "default":
		return PdoMappingDefault
	default:
		return PdoMappingNo
	}
}

var dataTypeByName = map[string]DataType{
	"0001": DataTypeBoolean,
	"0002": DataTypeInteger8,
	"0003": DataTypeInteger16,
	"0004": DataTypeInteger32,
	"0005": DataTypeUnsigned8,
	"0006": DataTypeUnsigned16,
	"0007": DataTypeUnsigned32,
	"0008": DataTypeReal32,
	"0009": DataTypeVisibleString,
	"000A": DataTypeOctetString,
	"000B": DataTypeUnicodeString,
	"000F": DataTypeDomain,
	"0011": DataTypeReal64,
	"0015": DataTypeInteger64,
	"001B": DataTypeUnsigned64,
}

func parseDataType(raw string) (DataType, error) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if len(key) < 4 {
		key = strings.Repeat("0", 4-len(key)) + key
	}
	dt, ok := dataTypeByName[key]
	if !ok {
		return 0, fmt.Errorf("%w: unknown DataType %q", ErrValidation, raw)
	}
	return dt, nil
}

func parseDefaultValue(dt DataType, raw string) (ObjectValue, error) {
	raw = strings.TrimSpace(raw)
	switch dt {
	case DataTypeBoolean:
		return NewBool(raw == "1" || strings.EqualFold(raw, "true")), nil
	case DataTypeVisibleString, DataTypeUnicodeString:
		return NewVisibleString(raw), nil
	case DataTypeOctetString, DataTypeDomain:
		return NewOctetString([]byte(raw)), nil
	}
	n, err := parseIntLiteral(raw)
	if err != nil {
		return ObjectValue{}, err
	}
	switch dt {
	case DataTypeInteger8:
		return NewI8(int8(n)), nil
	case DataTypeUnsigned8:
		return NewU8(uint8(n)), nil
	case DataTypeInteger16:
		return NewI16(int16(n)), nil
	case DataTypeUnsigned16:
		return NewU16(uint16(n)), nil
	case DataTypeInteger32:
		return NewI32(int32(n)), nil
	case DataTypeUnsigned32:
		return NewU32(uint32(n)), nil
	case DataTypeInteger64:
		return NewI64(n), nil
	case DataTypeUnsigned64:
		return NewU64(uint64(n)), nil
	default:
		return ObjectValue{}, fmt.Errorf("%w: DataType %d has no literal parser", ErrValidation, dt)
	}
}

func parseIntLiteral(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		v, err := strconv.ParseUint(raw[2:], 16, 64)
		return int64(v), err
	}
	return strconv.ParseInt(raw, 10, 64)
}
