package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pl "github.com/fabiomolinar/powerlink-rs-sub001"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/sdo"
)

func newConfigDict(t *testing.T) *od.ObjectDictionary {
	dict := od.New(nil, nil)
	dict.AddEntry(od.NewVariableEntry(0x1000, "DeviceType", od.CategoryMandatory, od.AccessReadOnly, od.PdoMappingNo, od.NewU32(0x000F0191), nil))
	dict.AddEntry(od.NewVariableEntry(0x1006, "CycleLen", od.CategoryOptional, od.AccessReadWrite, od.PdoMappingNo, od.NewU32(1000), nil))
	dict.AddEntry(od.NewVariableEntry(0x1008, "ManufacturerDeviceName", od.CategoryOptional, od.AccessReadWrite, od.PdoMappingNo, od.NewVisibleString("default"), nil))
	dict.AddEntry(od.NewArrayEntry(0x1010, "StoreParameters", od.CategoryOptional, od.AccessReadWrite, []od.SubEntrySpec{
		{SubIndex: 1, Name: "SaveAll", Access: od.AccessReadWrite, Value: od.NewU32(0)},
		{SubIndex: 2, Name: "SaveCommunication", Access: od.AccessReadWrite, Value: od.NewU32(0)},
		{SubIndex: 3, Name: "SaveApplication", Access: od.AccessReadWrite, Value: od.NewU32(0)},
	}))
	dict.AddEntry(od.NewArrayEntry(0x1011, "RestoreDefaults", od.CategoryOptional, od.AccessReadWrite, []od.SubEntrySpec{
		{SubIndex: 1, Name: "RestoreAll", Access: od.AccessReadWrite, Value: od.NewU32(0)},
	}))
	dict.AddEntry(od.NewRecordEntry(0x1018, "Identity", od.CategoryMandatory, od.AccessReadOnly, []od.SubEntrySpec{
		{SubIndex: 1, Name: "VendorId", Access: od.AccessReadOnly, Value: od.NewU32(0xCAFE)},
		{SubIndex: 2, Name: "ProductCode", Access: od.AccessReadOnly, Value: od.NewU32(1)},
		{SubIndex: 3, Name: "RevisionNo", Access: od.AccessReadOnly, Value: od.NewU32(2)},
		{SubIndex: 4, Name: "SerialNumber", Access: od.AccessReadOnly, Value: od.NewU32(0xBEEF)},
	}))
	dict.AddEntry(od.NewVariableEntry(0x1020, "VerifyConfiguration", od.CategoryOptional, od.AccessReadWrite, od.PdoMappingNo, od.NewU32(0), nil))
	dict.AddEntry(od.NewRecordEntry(0x6000, "AppData", od.CategoryOptional, od.AccessReadOnly, []od.SubEntrySpec{
		{SubIndex: 1, Name: "b1", Access: od.AccessReadWrite, PdoMapping: od.PdoMappingOptional, Value: od.NewU8(0)},
		{SubIndex: 2, Name: "b2", Access: od.AccessReadWrite, PdoMapping: od.PdoMappingOptional, Value: od.NewU16(0)},
	}))
	dict.AddEntry(od.NewRecordEntry(0x1600, "RpdoMapping", od.CategoryOptional, od.AccessReadWrite, []od.SubEntrySpec{
		{SubIndex: 1, Name: "m1", Access: od.AccessReadWrite, Value: od.NewU64(od.EncodeMappingEntry(od.MappingEntry{Index: 0x6000, SubIndex: 1, BitOffset: 0, BitLength: 8}))},
		{SubIndex: 2, Name: "m2", Access: od.AccessReadWrite, Value: od.NewU64(0)},
	}))
	dict.AddEntry(od.NewVariableEntry(0x1F80, "NMTStartUp", od.CategoryOptional, od.AccessReadWrite, od.PdoMappingNo, od.NewU32(0), nil))
	dict.AddEntry(od.NewArrayEntry(0x1F81, "NodeAssignment", od.CategoryOptional, od.AccessReadWrite, []od.SubEntrySpec{
		{SubIndex: 1, Name: "node1", Access: od.AccessReadWrite, Value: od.NewU32(0)},
		{SubIndex: 7, Name: "node7", Access: od.AccessReadWrite, Value: od.NewU32(0)},
	}))
	dict.AddEntry(od.NewArrayEntry(0x1F9B, "MultiplexAssign", od.CategoryOptional, od.AccessReadWrite, []od.SubEntrySpec{
		{SubIndex: 1, Name: "slot1", Access: od.AccessReadWrite, Value: od.NewU8(0)},
	}))
	require.NoError(t, dict.Init())
	return dict
}

func newConfiguratorAgainstServer(t *testing.T) *NodeConfigurator {
	dict := newConfigDict(t)
	s := sdo.NewServer(dict, nil, nil)
	c := sdo.NewClient(func(req []byte) ([]byte, error) {
		return s.HandleFrame(pl.NodeId(1), req, 0)
	})
	require.NoError(t, c.Open())
	return NewNodeConfigurator(c, pl.NodeId(1), nil)
}

func TestReadIdentity(t *testing.T) {
	cfg := newConfiguratorAgainstServer(t)
	id, err := cfg.ReadIdentity()
	require.NoError(t, err)
	assert.Equal(t, Identity{VendorId: 0xCAFE, ProductCode: 1, RevisionNo: 2, SerialNumber: 0xBEEF}, id)
}

func TestReadWriteManufacturerDeviceName(t *testing.T) {
	cfg := newConfiguratorAgainstServer(t)
	name, err := cfg.ReadManufacturerDeviceName()
	require.NoError(t, err)
	assert.Equal(t, "default", name)

	require.NoError(t, cfg.WriteManufacturerDeviceName("my-node"))
	name, err = cfg.ReadManufacturerDeviceName()
	require.NoError(t, err)
	assert.Equal(t, "my-node", name)
}

func TestStoreConfiguratorWritesTriggerValue(t *testing.T) {
	cfg := newConfiguratorAgainstServer(t)
	require.NoError(t, cfg.Store().SaveAll())
	v, err := cfg.readU32(0x1010, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), v)

	require.NoError(t, cfg.Store().RestoreDefaults())
	v, err = cfg.readU32(0x1011, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), v)
}

func TestPdoConfiguratorReadWriteMapping(t *testing.T) {
	cfg := newConfiguratorAgainstServer(t)
	mappings, err := cfg.Pdo().ReadRpdoMapping()
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	assert.Equal(t, od.MappingEntry{Index: 0x6000, SubIndex: 1, BitOffset: 0, BitLength: 8}, mappings[0])

	newMapping := []od.MappingEntry{
		{Index: 0x6000, SubIndex: 1, BitOffset: 0, BitLength: 8},
		{Index: 0x6000, SubIndex: 2, BitOffset: 8, BitLength: 16},
	}
	require.NoError(t, cfg.Pdo().WriteRpdoMapping(newMapping))

	mappings, err = cfg.Pdo().ReadRpdoMapping()
	require.NoError(t, err)
	assert.Equal(t, newMapping, mappings)
}

func TestNmtConfiguratorCycleLenAndNodeAssignment(t *testing.T) {
	cfg := newConfiguratorAgainstServer(t)
	cycle, err := cfg.Nmt().ReadCycleLen()
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), cycle)

	require.NoError(t, cfg.Nmt().WriteCycleLen(2000))
	cycle, err = cfg.Nmt().ReadCycleLen()
	require.NoError(t, err)
	assert.Equal(t, uint32(2000), cycle)

	require.NoError(t, cfg.Nmt().WriteNodeAssignment(7, 0b11))
	bits, err := cfg.Nmt().ReadNodeAssignment(7)
	require.NoError(t, err)
	assert.Equal(t, uint32(0b11), bits)
}

func TestMcastConfiguratorSlotAssignment(t *testing.T) {
	cfg := newConfiguratorAgainstServer(t)
	require.NoError(t, cfg.Mcast().WriteSlotAssignment(1, 7))
	nodeId, err := cfg.Mcast().ReadSlotAssignment(1)
	require.NoError(t, err)
	assert.Equal(t, uint8(7), nodeId)
}
