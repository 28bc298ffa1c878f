package config

// NmtConfigurator reads and writes the cycle-timing and boot-assignment
// objects an MN configures on itself and on every CN before start-up,
// mirroring the teacher's nmt.go NMTConfig idiom (there scoped to the
// heartbeat producer/consumer period, here to POWERLINK's cycle and
// node-assignment objects).
type NmtConfigurator struct {
	*NodeConfigurator
}

func (c *NodeConfigurator) Nmt() *NmtConfigurator {
	return &NmtConfigurator{c}
}

// ReadCycleLen/WriteCycleLen address 0x1006, the isochronous cycle time in
// microseconds (MN-owned).
func (n *NmtConfigurator) ReadCycleLen() (uint32, error) {
	return n.readU32(0x1006, 0)
}

func (n *NmtConfigurator) WriteCycleLen(cycleTimeUs uint32) error {
	return n.writeU32(0x1006, 0, cycleTimeUs)
}

// ReadStartUp/WriteStartUp address 0x1F80, the MN's NMT_StartUp bitfield
// (bit 13 selects BasicEthernet vs PreOperational1 on a NotActive timeout,
// spec.md §4.2).
func (n *NmtConfigurator) ReadStartUp() (uint32, error) {
	return n.readU32(0x1F80, 0)
}

func (n *NmtConfigurator) WriteStartUp(bits uint32) error {
	return n.writeU32(0x1F80, 0, bits)
}

// ReadNodeAssignment/WriteNodeAssignment address one sub-index of 0x1F81,
// the MN's per-node assignment bitfield (isochronous/multiplexed/mandatory
// membership).
func (n *NmtConfigurator) ReadNodeAssignment(nodeId uint8) (uint32, error) {
	return n.readU32(0x1F81, nodeId)
}

func (n *NmtConfigurator) WriteNodeAssignment(nodeId uint8, bits uint32) error {
	return n.writeU32(0x1F81, nodeId, bits)
}
