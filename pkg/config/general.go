package config

// Identity mirrors 0x1018's four mandatory sub-entries.
type Identity struct {
	VendorId     uint32
	ProductCode  uint32
	RevisionNo   uint32
	SerialNumber uint32
}

// ReadIdentity reads the mandatory 0x1018 Identity record.
func (c *NodeConfigurator) ReadIdentity() (Identity, error) {
	var id Identity
	var err error
	if id.VendorId, err = c.readU32(0x1018, 1); err != nil {
		return Identity{}, err
	}
	if id.ProductCode, err = c.readU32(0x1018, 2); err != nil {
		return Identity{}, err
	}
	if id.RevisionNo, err = c.readU32(0x1018, 3); err != nil {
		return Identity{}, err
	}
	if id.SerialNumber, err = c.readU32(0x1018, 4); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// ReadDeviceType reads 0x1000, the mandatory device-type code.
func (c *NodeConfigurator) ReadDeviceType() (uint32, error) {
	return c.readU32(0x1000, 0)
}

// ReadManufacturerDeviceName reads the optional 0x1008 string.
func (c *NodeConfigurator) ReadManufacturerDeviceName() (string, error) {
	return c.readString(0x1008, 0)
}

// WriteManufacturerDeviceName writes 0x1008, where the remote OD permits it.
func (c *NodeConfigurator) WriteManufacturerDeviceName(name string) error {
	return c.writeString(0x1008, 0, name)
}

// VerifyConfiguration mirrors 0x1020's date/time pair, used by an MN to
// stamp the configuration a CN is running.
type VerifyConfiguration struct {
	Date uint32
	Time uint32
}

func (c *NodeConfigurator) ReadVerifyConfiguration() (VerifyConfiguration, error) {
	date, err := c.readU32(0x1020, 1)
	if err != nil {
		return VerifyConfiguration{}, err
	}
	t, err := c.readU32(0x1020, 2)
	if err != nil {
		return VerifyConfiguration{}, err
	}
	return VerifyConfiguration{Date: date, Time: t}, nil
}

func (c *NodeConfigurator) WriteVerifyConfiguration(v VerifyConfiguration) error {
	if err := c.writeU32(0x1020, 1, v.Date); err != nil {
		return err
	}
	return c.writeU32(0x1020, 2, v.Time)
}

// ReadCurrNmtState reads 0x1F8C, the engine-written mirror of the live NMT
// state (spec.md §3/§4.2).
func (c *NodeConfigurator) ReadCurrNmtState() (uint8, error) {
	return c.readU8(0x1F8C, 0)
}
