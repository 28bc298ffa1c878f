package pdo

import (
	"testing"

	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMappedDict(t *testing.T) *od.ObjectDictionary {
	t.Helper()
	dict := od.New(nil, nil)
	dict.AddEntry(od.NewRecordEntry(0x1800, "TPDO_Comm", od.CategoryMandatory, od.AccessReadOnly, []od.SubEntrySpec{
		{SubIndex: 1, Name: "NodeID", Access: od.AccessReadOnly, Value: od.NewU8(0)},
		{SubIndex: 2, Name: "PdoVersion", Access: od.AccessReadWrite, Value: od.NewU8(7)},
	}))

	dict.AddEntry(od.NewVariableEntry(0x2000, "App_Position_I32", od.CategoryOptional, od.AccessReadWrite, od.PdoMappingOptional, od.NewI32(0), nil))
	dict.AddEntry(od.NewVariableEntry(0x2001, "App_Status_U16", od.CategoryOptional, od.AccessReadWrite, od.PdoMappingOptional, od.NewU16(0), nil))

	table := od.NewArrayEntry(0x1A00, "TPDO_Mapping", od.CategoryMandatory, od.AccessReadWrite, []od.SubEntrySpec{
		{SubIndex: 1, Name: "m1", Access: od.AccessReadWrite, Value: od.NewU64(od.EncodeMappingEntry(od.MappingEntry{Index: 0x2000, SubIndex: 0, BitOffset: 0, BitLength: 32}))},
		{SubIndex: 2, Name: "m2", Access: od.AccessReadWrite, Value: od.NewU64(od.EncodeMappingEntry(od.MappingEntry{Index: 0x2001, SubIndex: 0, BitOffset: 32, BitLength: 16}))},
	})
	dict.AddEntry(table)
	require.NoError(t, dict.Write(0x1A00, 0, od.NewU8(2)))
	return dict
}

func TestPackAndUnpackRoundTrip(t *testing.T) {
	dict := newMappedDict(t)
	require.NoError(t, dict.Write(0x2000, 0, od.NewI32(-7)))
	require.NoError(t, dict.Write(0x2001, 0, od.NewU16(99)))

	buf, version, err := Pack(dict, 0x1A00, 6)
	require.NoError(t, err)
	assert.EqualValues(t, 7, version)
	assert.Len(t, buf, 6)

	dict2 := newMappedDict(t)
	require.NoError(t, Unpack(dict2, 0x1A00, buf))
	v, err := dict2.Read(0x2000, 0)
	require.NoError(t, err)
	n, _ := v.I32()
	assert.EqualValues(t, -7, n)
	v2, err := dict2.Read(0x2001, 0)
	require.NoError(t, err)
	n2, _ := v2.U16()
	assert.EqualValues(t, 99, n2)
}

func TestUnpackRejectsShortPayload(t *testing.T) {
	dict := newMappedDict(t)
	err := Unpack(dict, 0x1A00, make([]byte, 4))
	assert.ErrorIs(t, err, ErrPayloadShort)
}

func TestPackLeavesMissingEntryZeroed(t *testing.T) {
	dict := od.New(nil, nil)
	table := od.NewArrayEntry(0x1A00, "TPDO_Mapping", od.CategoryMandatory, od.AccessReadWrite, []od.SubEntrySpec{
		{SubIndex: 1, Name: "m1", Access: od.AccessReadWrite, Value: od.NewU64(od.EncodeMappingEntry(od.MappingEntry{Index: 0x9999, SubIndex: 0, BitOffset: 0, BitLength: 32}))},
	})
	dict.AddEntry(table)
	buf, _, err := Pack(dict, 0x1A00, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf)
}
