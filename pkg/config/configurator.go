// Package config provides small, typed read/write-by-index helpers over an
// sdo.Client, for host-side commissioning tools (not used by the engine
// itself), mirroring the teacher's pkg/config.NodeConfigurator idiom.
package config

import (
	"encoding/binary"

	"github.com/sirupsen/logrus"

	pl "github.com/fabiomolinar/powerlink-rs-sub001"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/sdo"
)

// NodeConfigurator wraps one remote node's sdo.Client with typed accessors.
// Unlike the teacher's NodeConfigurator, which carries a nodeId per call
// because one SDOClient multiplexes a shared CAN bus, our sdo.Client's
// Exchange closure is already bound to a single peer; nodeId is kept here
// only for logging and identification.
type NodeConfigurator struct {
	client *sdo.Client
	nodeId pl.NodeId
	logger *logrus.Entry
}

// NewNodeConfigurator builds a NodeConfigurator over an already-opened
// client (client.Open must have succeeded before any helper here is used).
func NewNodeConfigurator(client *sdo.Client, nodeId pl.NodeId, logger *logrus.Logger) *NodeConfigurator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &NodeConfigurator{client: client, nodeId: nodeId, logger: logger.WithField("nodeId", nodeId)}
}

func (c *NodeConfigurator) NodeId() pl.NodeId { return c.nodeId }

func (c *NodeConfigurator) readU8(index uint16, sub uint8) (uint8, error) {
	raw, err := c.client.ReadByIndex(index, sub)
	if err != nil {
		return 0, err
	}
	if len(raw) < 1 {
		return 0, sdo.ErrFrameTooShort
	}
	return raw[0], nil
}

func (c *NodeConfigurator) readU16(index uint16, sub uint8) (uint16, error) {
	raw, err := c.client.ReadByIndex(index, sub)
	if err != nil {
		return 0, err
	}
	if len(raw) < 2 {
		return 0, sdo.ErrFrameTooShort
	}
	return binary.LittleEndian.Uint16(raw), nil
}

func (c *NodeConfigurator) readU32(index uint16, sub uint8) (uint32, error) {
	raw, err := c.client.ReadByIndex(index, sub)
	if err != nil {
		return 0, err
	}
	if len(raw) < 4 {
		return 0, sdo.ErrFrameTooShort
	}
	return binary.LittleEndian.Uint32(raw), nil
}

func (c *NodeConfigurator) readU64(index uint16, sub uint8) (uint64, error) {
	raw, err := c.client.ReadByIndex(index, sub)
	if err != nil {
		return 0, err
	}
	if len(raw) < 8 {
		return 0, sdo.ErrFrameTooShort
	}
	return binary.LittleEndian.Uint64(raw), nil
}

func (c *NodeConfigurator) readString(index uint16, sub uint8) (string, error) {
	raw, err := c.client.ReadByIndex(index, sub)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (c *NodeConfigurator) writeU8(index uint16, sub uint8, v uint8) error {
	return c.client.WriteByIndex(index, sub, []byte{v})
}

func (c *NodeConfigurator) writeU16(index uint16, sub uint8, v uint16) error {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	return c.client.WriteByIndex(index, sub, buf)
}

func (c *NodeConfigurator) writeU32(index uint16, sub uint8, v uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return c.client.WriteByIndex(index, sub, buf)
}

func (c *NodeConfigurator) writeU64(index uint16, sub uint8, v uint64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return c.client.WriteByIndex(index, sub, buf)
}

func (c *NodeConfigurator) writeString(index uint16, sub uint8, s string) error {
	return c.client.WriteByIndex(index, sub, []byte(s))
}
