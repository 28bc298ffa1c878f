package nmt

import (
	"testing"

	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDict() *od.ObjectDictionary {
	dict := od.New(nil, nil)
	dict.AddEntry(od.NewVariableEntry(uint16(NmtCurrentStateIndex), "NMT_CurrNMTState_U8", od.CategoryMandatory, od.AccessReadOnly, od.PdoMappingNo, od.NewU8(0), nil))
	dict.AddEntry(od.NewVariableEntry(0x1F80, "NMT_StartUp_U32", od.CategoryMandatory, od.AccessReadWrite, od.PdoMappingNo, od.NewU32(0), nil))
	return dict
}

func readMirroredState(t *testing.T, dict *od.ObjectDictionary) uint8 {
	t.Helper()
	v, err := dict.Read(uint16(NmtCurrentStateIndex), 0)
	require.NoError(t, err)
	n, err := v.U8()
	require.NoError(t, err)
	return n
}

func TestCnBootCascadeReachesNotActive(t *testing.T) {
	dict := newTestDict()
	m := NewCnMachine(nil)
	require.NoError(t, m.RunInternalInitialisation(dict))
	assert.Equal(t, CsNotActive, m.CurrentState())
	assert.Equal(t, CsNotActive.WireCode(), readMirroredState(t, dict))
}

func TestCnGraphNotActiveToOperational(t *testing.T) {
	dict := newTestDict()
	m := NewCnMachine(nil)
	require.NoError(t, m.RunInternalInitialisation(dict))

	require.NoError(t, m.ProcessEvent(EventEnterEplMode, dict))
	assert.Equal(t, CsPreOperational1, m.CurrentState())

	require.NoError(t, m.ProcessEvent(EventSocReceived, dict))
	assert.Equal(t, CsPreOperational2, m.CurrentState())

	require.NoError(t, m.ProcessEvent(EventEnableReadyToOperate, dict))
	assert.Equal(t, CsReadyToOperate, m.CurrentState())

	require.NoError(t, m.ProcessEvent(EventStartNode, dict))
	assert.Equal(t, CsOperational, m.CurrentState())
	assert.Equal(t, CsOperational.WireCode(), readMirroredState(t, dict))
}

func TestCnNotActiveTimeoutGoesBasicEthernet(t *testing.T) {
	dict := newTestDict()
	m := NewCnMachine(nil)
	require.NoError(t, m.RunInternalInitialisation(dict))
	require.NoError(t, m.ProcessEvent(EventTimeout, dict))
	assert.Equal(t, CsBasicEthernet, m.CurrentState())
}

func TestCnOperationalStopAndError(t *testing.T) {
	dict := newTestDict()
	m := NewCnMachine(nil)
	require.NoError(t, m.RunInternalInitialisation(dict))
	m.state = CsOperational

	require.NoError(t, m.ProcessEvent(EventStopNode, dict))
	assert.Equal(t, CsStopped, m.CurrentState())

	require.NoError(t, m.ProcessEvent(EventError, dict))
	assert.Equal(t, CsPreOperational1, m.CurrentState())
}

func TestCnResetCommunicationEntersAtCorrectDepth(t *testing.T) {
	dict := newTestDict()
	m := NewCnMachine(nil)
	require.NoError(t, m.RunInternalInitialisation(dict))
	m.state = CsOperational

	require.NoError(t, m.ProcessEvent(EventResetCommunication, dict))
	assert.Equal(t, CsNotActive, m.CurrentState())
}

func TestMnGraphNotActiveToOperational(t *testing.T) {
	dict := newTestDict()
	m := NewMnMachine(nil)
	require.NoError(t, m.RunInternalInitialisation(dict))
	assert.Equal(t, MsNotActive, m.CurrentState())

	require.NoError(t, m.ProcessEvent(EventTimeout, dict))
	assert.Equal(t, MsPreOperational1, m.CurrentState())

	require.NoError(t, m.ProcessEvent(EventAllCnsIdentified, dict))
	assert.Equal(t, MsPreOperational2, m.CurrentState())

	require.NoError(t, m.ProcessEvent(EventConfigurationCompleteCnsReady, dict))
	assert.Equal(t, MsReadyToOperate, m.CurrentState())

	require.NoError(t, m.ProcessEvent(EventAllMandatoryCnsOperational, dict))
	assert.Equal(t, MsOperational, m.CurrentState())
}

func TestMnNotActiveTimeoutHonorsStartupBit13(t *testing.T) {
	dict := newTestDict()
	require.NoError(t, dict.Write(0x1F80, 0, od.NewU32(1<<13)))
	m := NewMnMachine(nil)
	require.NoError(t, m.RunInternalInitialisation(dict))
	require.NoError(t, m.ProcessEvent(EventTimeout, dict))
	assert.Equal(t, MsBasicEthernet, m.CurrentState())
}

func TestDecodeWireStateResolvesRoleAmbiguity(t *testing.T) {
	cn, err := DecodeWireState(0x1C, false)
	require.NoError(t, err)
	assert.Equal(t, CsNotActive, cn)

	mn, err := DecodeWireState(0x1C, true)
	require.NoError(t, err)
	assert.Equal(t, MsNotActive, mn)
}

func TestDecodeWireStateRejectsInvalidCode(t *testing.T) {
	_, err := DecodeWireState(0x42, false)
	assert.ErrorIs(t, err, ErrInvalidWireState)
}
