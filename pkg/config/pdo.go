package config

import (
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"
)

// RpdoMappingIndex/TpdoMappingIndex mirror pkg/node's single configured PDO
// channel (spec.md §3's mandatory-object set, 0x1600/0x1A00); this engine
// has no multiplexed multi-channel configuration, per spec.md's non-goals.
const (
	RpdoMappingIndex uint16 = 0x1600
	TpdoMappingIndex uint16 = 0x1A00
	RpdoCommIndex    uint16 = 0x1400
	TpdoCommIndex    uint16 = 0x1800
)

// PdoConfigurator reads and writes the RPDO/TPDO mapping tables over SDO;
// the communication tables (0x1400/0x1800) are not read or written. It
// mirrors the teacher's pdo.go ReadMappings/
// ReadConfigurationPDO idiom, narrowed to this engine's single channel.
type PdoConfigurator struct {
	*NodeConfigurator
}

func (c *NodeConfigurator) Pdo() *PdoConfigurator {
	return &PdoConfigurator{c}
}

// ReadNbMappings returns the live NrOfEntries (sub-index 0) of a mapping
// table.
func (p *PdoConfigurator) ReadNbMappings(mappingIndex uint16) (uint8, error) {
	return p.readU8(mappingIndex, 0)
}

// ReadMappings decodes every active mapping entry of mappingIndex.
func (p *PdoConfigurator) ReadMappings(mappingIndex uint16) ([]od.MappingEntry, error) {
	n, err := p.ReadNbMappings(mappingIndex)
	if err != nil {
		return nil, err
	}
	entries := make([]od.MappingEntry, 0, n)
	for i := uint8(1); i <= n; i++ {
		raw, err := p.readU64(mappingIndex, i)
		if err != nil {
			return nil, err
		}
		entries = append(entries, od.DecodeMappingEntry(raw))
	}
	return entries, nil
}

// WriteMappings deactivates the table (NrOfEntries=0), writes the new
// entries at sub-indices 1..N, then re-activates it (NrOfEntries=N) —
// mirroring the teacher's reconfiguration sequence for a mapping table
// that must be zero-length while being edited.
func (p *PdoConfigurator) WriteMappings(mappingIndex uint16, entries []od.MappingEntry) error {
	if err := p.writeU8(mappingIndex, 0, 0); err != nil {
		return err
	}
	for i, e := range entries {
		if err := p.writeU64(mappingIndex, uint8(i+1), od.EncodeMappingEntry(e)); err != nil {
			return err
		}
	}
	return p.writeU8(mappingIndex, 0, uint8(len(entries)))
}

// ReadRpdoMapping/ReadTpdoMapping/WriteRpdoMapping/WriteTpdoMapping address
// this engine's single configured channel directly.
func (p *PdoConfigurator) ReadRpdoMapping() ([]od.MappingEntry, error) {
	return p.ReadMappings(RpdoMappingIndex)
}

func (p *PdoConfigurator) ReadTpdoMapping() ([]od.MappingEntry, error) {
	return p.ReadMappings(TpdoMappingIndex)
}

func (p *PdoConfigurator) WriteRpdoMapping(entries []od.MappingEntry) error {
	return p.WriteMappings(RpdoMappingIndex, entries)
}

func (p *PdoConfigurator) WriteTpdoMapping(entries []od.MappingEntry) error {
	return p.WriteMappings(TpdoMappingIndex, entries)
}
