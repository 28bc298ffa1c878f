package persist

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"
)

func TestFileHookSaveThenLoadRoundTrips(t *testing.T) {
	dataPath := filepath.Join(t.TempDir(), "od.json")
	hook := NewFileHook(dataPath)

	batch := map[od.ObjectKey]od.ObjectValue{
		{Index: 0x1008, SubIndex: 0}: od.NewVisibleString("my-device"),
		{Index: 0x1018, SubIndex: 1}: od.NewU32(0xCAFE),
	}
	require.NoError(t, hook.Save(batch))

	loaded, err := hook.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "my-device", loaded[od.ObjectKey{Index: 0x1008, SubIndex: 0}].String())
	v, err := loaded[od.ObjectKey{Index: 0x1018, SubIndex: 1}].U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCAFE), v)
}

func TestFileHookLoadMissingFileIsNotAnError(t *testing.T) {
	hook := NewFileHook(filepath.Join(t.TempDir(), "missing.json"))
	loaded, err := hook.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileHookRestoreDefaultsFlagLifecycle(t *testing.T) {
	hook := NewFileHook(filepath.Join(t.TempDir(), "od.json"))
	assert.False(t, hook.RestoreDefaultsRequested())

	require.NoError(t, hook.RequestRestoreDefaults())
	assert.True(t, hook.RestoreDefaultsRequested())

	require.NoError(t, hook.ClearRestoreDefaultsFlag())
	assert.False(t, hook.RestoreDefaultsRequested())
}

func TestFileHookClearRemovesData(t *testing.T) {
	dataPath := filepath.Join(t.TempDir(), "od.json")
	hook := NewFileHook(dataPath)
	require.NoError(t, hook.Save(map[od.ObjectKey]od.ObjectValue{{Index: 0x1008, SubIndex: 0}: od.NewU8(1)}))

	require.NoError(t, hook.Clear())
	loaded, err := hook.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
