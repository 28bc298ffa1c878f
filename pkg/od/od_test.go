package od

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDict() *ObjectDictionary {
	dict := New(nil, nil)
	dict.AddEntry(NewVariableEntry(0x1000, "NMT_DeviceType_U32", CategoryMandatory, AccessReadOnly, PdoMappingNo, NewU32(0xF0191), nil))
	dict.AddEntry(NewVariableEntry(0x1006, "NMT_CycleLen_U32", CategoryMandatory, AccessReadWriteStore, PdoMappingNo, NewU32(5000),
		&ValueRange{Min: NewU32(100), Max: NewU32(1_000_000)}))
	dict.AddEntry(NewVariableEntry(0x1018, "Identity", CategoryMandatory, AccessConstant, PdoMappingNo, NewU32(0), nil))
	dict.AddEntry(NewVariableEntry(0x1F82, "NMT_FeatureFlags_U32", CategoryMandatory, AccessReadOnly, PdoMappingNo, NewU32(0), nil))
	dict.AddEntry(NewVariableEntry(0x2000, "App_TargetPosition_I32", CategoryOptional, AccessReadWrite, PdoMappingOptional, NewI32(0), nil))
	return dict
}

func TestReadWriteRoundTrip(t *testing.T) {
	dict := newTestDict()
	require.NoError(t, dict.Write(0x2000, 0, NewI32(42)))
	v, err := dict.Read(0x2000, 0)
	require.NoError(t, err)
	n, err := v.I32()
	require.NoError(t, err)
	assert.EqualValues(t, 42, n)
}

func TestWriteRejectsConstant(t *testing.T) {
	dict := newTestDict()
	err := dict.Write(0x1018, 0, NewU32(1))
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestWriteRejectsReadOnly(t *testing.T) {
	dict := newTestDict()
	err := dict.Write(0x1000, 0, NewU32(1))
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestWriteTypeMismatch(t *testing.T) {
	dict := newTestDict()
	err := dict.Write(0x2000, 0, NewU32(1))
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestWriteOutOfRange(t *testing.T) {
	dict := newTestDict()
	err := dict.Write(0x1006, 0, NewU32(10))
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestWriteUnknownObject(t *testing.T) {
	dict := newTestDict()
	err := dict.Write(0x3FFF, 0, NewU32(1))
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestWriteUnknownSubIndex(t *testing.T) {
	dict := newTestDict()
	err := dict.Write(0x2000, 3, NewI32(1))
	assert.ErrorIs(t, err, ErrSubObjectNotFound)
}

func TestValidateMandatoryObjectsCn(t *testing.T) {
	dict := newTestDict()
	dict.AddEntry(NewVariableEntry(0x1F93, "a", CategoryMandatory, AccessReadOnly, PdoMappingNo, NewU8(0), nil))
	dict.AddEntry(NewVariableEntry(0x1F99, "b", CategoryMandatory, AccessReadOnly, PdoMappingNo, NewU32(0), nil))
	dict.AddEntry(NewVariableEntry(0x1C0F, "c", CategoryMandatory, AccessReadOnly, PdoMappingNo, NewU32(0), nil))
	assert.NoError(t, dict.ValidateMandatoryObjects(false))
}

func TestValidateMandatoryObjectsMissing(t *testing.T) {
	dict := newTestDict()
	err := dict.ValidateMandatoryObjects(false)
	assert.ErrorIs(t, err, ErrValidation)
}

type memoryHook struct {
	saved            map[ObjectKey]ObjectValue
	restoreRequested bool
}

func newMemoryHook() *memoryHook { return &memoryHook{saved: map[ObjectKey]ObjectValue{}} }

func (h *memoryHook) Load() (map[ObjectKey]ObjectValue, error) { return h.saved, nil }
func (h *memoryHook) Save(batch map[ObjectKey]ObjectValue) error {
	for k, v := range batch {
		h.saved[k] = v
	}
	return nil
}
func (h *memoryHook) Clear() error                    { h.saved = map[ObjectKey]ObjectValue{}; return nil }
func (h *memoryHook) RestoreDefaultsRequested() bool  { return h.restoreRequested }
func (h *memoryHook) RequestRestoreDefaults() error   { h.restoreRequested = true; return nil }
func (h *memoryHook) ClearRestoreDefaultsFlag() error { h.restoreRequested = false; return nil }

func TestStoreAccessTriggersPersistenceHook(t *testing.T) {
	hook := newMemoryHook()
	dict := New(hook, nil)
	dict.AddEntry(NewVariableEntry(0x1006, "NMT_CycleLen_U32", CategoryMandatory, AccessReadWriteStore, PdoMappingNo, NewU32(5000), nil))
	require.NoError(t, dict.Write(0x1006, 0, NewU32(6000)))
	v, ok := hook.saved[ObjectKey{Index: 0x1006, SubIndex: 0}]
	require.True(t, ok)
	n, _ := v.U32()
	assert.EqualValues(t, 6000, n)
}

func TestInitLoadsPersistedValuesOverDefaults(t *testing.T) {
	hook := newMemoryHook()
	hook.saved[ObjectKey{Index: 0x1006, SubIndex: 0}] = NewU32(9999)
	dict := New(hook, nil)
	dict.AddEntry(NewVariableEntry(0x1006, "NMT_CycleLen_U32", CategoryMandatory, AccessReadWriteStore, PdoMappingNo, NewU32(5000), nil))
	require.NoError(t, dict.Init())
	v, err := dict.Read(0x1006, 0)
	require.NoError(t, err)
	n, _ := v.U32()
	assert.EqualValues(t, 9999, n)
}

func TestInitRestoresDefaultsWhenRequested(t *testing.T) {
	hook := newMemoryHook()
	hook.saved[ObjectKey{Index: 0x1006, SubIndex: 0}] = NewU32(9999)
	hook.restoreRequested = true
	dict := New(hook, nil)
	dict.AddEntry(NewVariableEntry(0x1006, "NMT_CycleLen_U32", CategoryMandatory, AccessReadWriteStore, PdoMappingNo, NewU32(5000), nil))
	require.NoError(t, dict.Init())
	v, err := dict.Read(0x1006, 0)
	require.NoError(t, err)
	n, _ := v.U32()
	assert.EqualValues(t, 5000, n)
	assert.False(t, hook.restoreRequested)
	assert.Empty(t, hook.saved)
}

func TestArrayRecordNumberOfEntries(t *testing.T) {
	dict := newTestDict()
	arr := NewArrayEntry(0x2010, "App_Samples_AU16", CategoryOptional, AccessReadOnly, []SubEntrySpec{
		{SubIndex: 1, Name: "Sample1", Access: AccessReadWrite, Value: NewU16(0)},
		{SubIndex: 2, Name: "Sample2", Access: AccessReadWrite, Value: NewU16(0)},
	})
	dict.AddEntry(arr)
	v, err := dict.Read(0x2010, 0)
	require.NoError(t, err)
	n, err := v.U8()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n, "sub-index 0 holds the number of data entries, not the max sub-index")
}

func TestStoreParametersCommandBatchesAllStorableEntries(t *testing.T) {
	hook := newMemoryHook()
	dict := New(hook, nil)
	dict.AddEntry(NewVariableEntry(0x1010, "NMT_StoreParam_REC", CategoryMandatory, AccessReadWrite, PdoMappingNo, NewU8(0), nil))
	dict.AddEntry(NewVariableEntry(0x1006, "NMT_CycleLen_U32", CategoryMandatory, AccessReadWriteStore, PdoMappingNo, NewU32(5000), nil))
	dict.AddEntry(NewVariableEntry(0x1020, "App_Gain_U16", CategoryOptional, AccessReadWriteStore, PdoMappingNo, NewU16(10), nil))
	require.NoError(t, dict.Write(0x1010, 0, NewU8(1)))
	assert.Len(t, hook.saved, 2)
}

func TestStoreParametersCommandScopesByRange(t *testing.T) {
	hook := newMemoryHook()
	dict := New(hook, nil)
	dict.AddEntry(NewArrayEntry(0x1010, "NMT_StoreParam_REC", CategoryMandatory, AccessReadWrite, []SubEntrySpec{
		{SubIndex: 1, Name: "SaveAll", Access: AccessReadWrite, Value: NewU32(0)},
		{SubIndex: 2, Name: "SaveComm", Access: AccessReadWrite, Value: NewU32(0)},
		{SubIndex: 3, Name: "SaveApp", Access: AccessReadWrite, Value: NewU32(0)},
	}))
	dict.AddEntry(NewVariableEntry(0x1006, "NMT_CycleLen_U32", CategoryMandatory, AccessReadWriteStore, PdoMappingNo, NewU32(5000), nil))
	dict.AddEntry(NewVariableEntry(0x6010, "App_Gain_U16", CategoryOptional, AccessReadWriteStore, PdoMappingNo, NewU16(10), nil))

	require.NoError(t, dict.Write(0x1010, 2, NewU32(1)))
	_, ok := hook.saved[ObjectKey{Index: 0x1006, SubIndex: 0}]
	assert.True(t, ok, "sub-index 2 must store the communication-range entry")
	_, ok = hook.saved[ObjectKey{Index: 0x6010, SubIndex: 0}]
	assert.False(t, ok, "sub-index 2 must not store the application-range entry")

	hook2 := newMemoryHook()
	dict2 := New(hook2, nil)
	dict2.AddEntry(NewArrayEntry(0x1010, "NMT_StoreParam_REC", CategoryMandatory, AccessReadWrite, []SubEntrySpec{
		{SubIndex: 1, Name: "SaveAll", Access: AccessReadWrite, Value: NewU32(0)},
		{SubIndex: 3, Name: "SaveApp", Access: AccessReadWrite, Value: NewU32(0)},
	}))
	dict2.AddEntry(NewVariableEntry(0x1006, "NMT_CycleLen_U32", CategoryMandatory, AccessReadWriteStore, PdoMappingNo, NewU32(5000), nil))
	dict2.AddEntry(NewVariableEntry(0x6010, "App_Gain_U16", CategoryOptional, AccessReadWriteStore, PdoMappingNo, NewU16(10), nil))
	require.NoError(t, dict2.Write(0x1010, 3, NewU32(1)))
	_, ok = hook2.saved[ObjectKey{Index: 0x6010, SubIndex: 0}]
	assert.True(t, ok, "sub-index 3 must store the application-range entry")
	_, ok = hook2.saved[ObjectKey{Index: 0x1006, SubIndex: 0}]
	assert.False(t, ok, "sub-index 3 must not store the communication-range entry")
}

func TestMappingValidationRejectsUnmappableObject(t *testing.T) {
	dict := newTestDict()
	table := NewArrayEntry(0x1A00, "TPDO_Mapping", CategoryMandatory, AccessReadWrite, []SubEntrySpec{
		{SubIndex: 1, Name: "m1", Access: AccessReadWrite, Value: NewU64(EncodeMappingEntry(MappingEntry{Index: 0x1000, SubIndex: 0, BitOffset: 0, BitLength: 32}))},
	})
	dict.AddEntry(table)
	err := dict.Write(0x1A00, 0, NewU8(1))
	assert.ErrorIs(t, err, ErrValidation, "0x1000 has PdoMappingNo so activation must fail")
}

func TestMappingValidationRejectsBitGranularOffsets(t *testing.T) {
	dict := newTestDict()
	table := NewArrayEntry(0x1A00, "TPDO_Mapping", CategoryMandatory, AccessReadWrite, []SubEntrySpec{
		{SubIndex: 1, Name: "m1", Access: AccessReadWrite, Value: NewU64(EncodeMappingEntry(MappingEntry{Index: 0x2000, SubIndex: 0, BitOffset: 3, BitLength: 32}))},
	})
	dict.AddEntry(table)
	err := dict.Write(0x1A00, 0, NewU8(1))
	assert.ErrorIs(t, err, ErrUnsupportedBitMap)
}

func TestMappingValidationAcceptsMappableObject(t *testing.T) {
	dict := newTestDict()
	table := NewArrayEntry(0x1A00, "TPDO_Mapping", CategoryMandatory, AccessReadWrite, []SubEntrySpec{
		{SubIndex: 1, Name: "m1", Access: AccessReadWrite, Value: NewU64(EncodeMappingEntry(MappingEntry{Index: 0x2000, SubIndex: 0, BitOffset: 0, BitLength: 32}))},
	})
	dict.AddEntry(table)
	assert.NoError(t, dict.Write(0x1A00, 0, NewU8(1)))
}

func TestMappingValidationRejectsOverrunConfiguredTpdoPayload(t *testing.T) {
	dict := newTestDict()
	dict.AddEntry(NewRecordEntry(0x1F98, "NMT_CycleTiming_REC", CategoryOptional, AccessReadWrite, []SubEntrySpec{
		{SubIndex: 4, Name: "PReqActPayload", Access: AccessReadWrite, Value: NewU16(200)},
		{SubIndex: 5, Name: "PResActPayload", Access: AccessReadWrite, Value: NewU16(2)},
	}))
	table := NewArrayEntry(0x1A00, "TPDO_Mapping", CategoryMandatory, AccessReadWrite, []SubEntrySpec{
		{SubIndex: 1, Name: "m1", Access: AccessReadWrite, Value: NewU64(EncodeMappingEntry(MappingEntry{Index: 0x2000, SubIndex: 0, BitOffset: 0, BitLength: 32}))},
	})
	dict.AddEntry(table)
	err := dict.Write(0x1A00, 0, NewU8(1))
	assert.ErrorIs(t, err, ErrPdoMapOverrun, "4 mapped bytes exceeds the configured 2-byte PResActPayload limit (0x1F98/5)")
}

func TestMappingValidationUsesRpdoActualPayloadSubIndex(t *testing.T) {
	dict := newTestDict()
	dict.AddEntry(NewRecordEntry(0x1F98, "NMT_CycleTiming_REC", CategoryOptional, AccessReadWrite, []SubEntrySpec{
		{SubIndex: 4, Name: "PReqActPayload", Access: AccessReadWrite, Value: NewU16(2)},
		{SubIndex: 5, Name: "PResActPayload", Access: AccessReadWrite, Value: NewU16(200)},
	}))
	table := NewArrayEntry(0x1600, "RPDO_Mapping", CategoryMandatory, AccessReadWrite, []SubEntrySpec{
		{SubIndex: 1, Name: "m1", Access: AccessReadWrite, Value: NewU64(EncodeMappingEntry(MappingEntry{Index: 0x2000, SubIndex: 0, BitOffset: 0, BitLength: 32}))},
	})
	dict.AddEntry(table)
	err := dict.Write(0x1600, 0, NewU8(1))
	assert.ErrorIs(t, err, ErrPdoMapOverrun, "an RPDO mapping table must be checked against 0x1F98/4 (PReqActPayload), not /5")
}
