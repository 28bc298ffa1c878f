package config

// McastConfigurator reads and writes 0x1F9B MultiplexAssign, the MN-owned
// array mapping a multiplexed-cycle slot (sub-index) to the node id
// assigned to transmit in it.
type McastConfigurator struct {
	*NodeConfigurator
}

func (c *NodeConfigurator) Mcast() *McastConfigurator {
	return &McastConfigurator{c}
}

// ReadSlotCount returns the live NrOfEntries of 0x1F9B.
func (m *McastConfigurator) ReadSlotCount() (uint8, error) {
	return m.readU8(0x1F9B, 0)
}

// ReadSlotAssignment returns the node id assigned to multiplexed slot.
func (m *McastConfigurator) ReadSlotAssignment(slot uint8) (uint8, error) {
	return m.readU8(0x1F9B, slot)
}

// WriteSlotAssignment assigns nodeId to multiplexed slot.
func (m *McastConfigurator) WriteSlotAssignment(slot uint8, nodeId uint8) error {
	return m.writeU8(0x1F9B, slot, nodeId)
}
