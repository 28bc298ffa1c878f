package od

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ObjectDictionary is the typed, indexed store that parameterizes engine
// behavior and carries process data via PDO mapping.
type ObjectDictionary struct {
	entries map[uint16]*Entry
	hook    PersistenceHook
	logger  *logrus.Entry
}

// New creates an empty ObjectDictionary. hook may be nil, in which case a
// NoopHook is used.
func New(hook PersistenceHook, logger *logrus.Logger) *ObjectDictionary {
	if hook == nil {
		hook = NoopHook{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ObjectDictionary{
		entries: map[uint16]*Entry{},
		hook:    hook,
		logger:  logger.WithField("component", "od"),
	}
}

// AddEntry populates the dictionary; typically called once by the
// application (or an INI bootstrap parser) before Init.
func (od *ObjectDictionary) AddEntry(e *Entry) {
	od.entries[e.Index] = e
}

// Find returns the Entry at index, or nil if absent.
func (od *ObjectDictionary) Find(index uint16) *Entry {
	return od.entries[index]
}

func (od *ObjectDictionary) find(index uint16) (*Entry, error) {
	e, ok := od.entries[index]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return e, nil
}

// Read returns the current value at index/subIndex.
func (od *ObjectDictionary) Read(index uint16, subIndex uint8) (ObjectValue, error) {
	entry, err := od.find(index)
	if err != nil {
		return ObjectValue{}, err
	}
	s, err := entry.sub(subIndex)
	if err != nil {
		return ObjectValue{}, err
	}
	return s.value, nil
}

func (od *ObjectDictionary) ReadU8(index uint16, subIndex uint8) (uint8, error) {
	v, err := od.Read(index, subIndex)
	if err != nil {
		return 0, err
	}
	return v.U8()
}

func (od *ObjectDictionary) ReadU16(index uint16, subIndex uint8) (uint16, error) {
	v, err := od.Read(index, subIndex)
	if err != nil {
		return 0, err
	}
	return v.U16()
}

func (od *ObjectDictionary) ReadU32(index uint16, subIndex uint8) (uint32, error) {
	v, err := od.Read(index, subIndex)
	if err != nil {
		return 0, err
	}
	return v.U32()
}

func (od *ObjectDictionary) checkRange(s *subEntry, v ObjectValue) error {
	if s.valueRange == nil {
		return nil
	}
	if lo, err := compareNumeric(v, s.valueRange.Min); err == nil && lo < 0 {
		return ErrOutOfRange
	}
	if hi, err := compareNumeric(v, s.valueRange.Max); err == nil && hi > 0 {
		return ErrOutOfRange
	}
	return nil
}

// Write is an application-origin write: it enforces access rules, a type
// check against the stored variant, and a range check. Writes to storable
// access types invoke the persistence hook after the in-memory update
// succeeds. A write to any sub-index of 0x1010/0x1011, or to sub-index 0 of
// a 0x16xx-0x1Axx mapping table, additionally dispatches the matching
// special OD command (§4.2).
func (od *ObjectDictionary) Write(index uint16, subIndex uint8, v ObjectValue) error {
	entry, err := od.find(index)
	if err != nil {
		return err
	}
	s, err := entry.sub(subIndex)
	if err != nil {
		return err
	}
	if !s.access.IsWritable() {
		return ErrAccessDenied
	}
	// PDO mapping activation must validate before the count changes: a
	// rejected mapping write must leave the prior NrOfEntries intact.
	if isMappingEntryIndex(index) && subIndex == 0 {
		n, err := v.U8()
		if err != nil {
			return err
		}
		if err := od.validateMapping(entry, n); err != nil {
			return err
		}
	}
	if err := od.validateAndStore(entry, s, index, subIndex, v); err != nil {
		return err
	}
	return od.dispatchSpecialWrite(entry, subIndex, v)
}

// WriteInternal is an engine-origin write (NMT updating 0x1F8C, error
// accounting updating counters, PDO unpack writing RPDO data). It may
// bypass access checks entirely.
func (od *ObjectDictionary) WriteInternal(index uint16, subIndex uint8, v ObjectValue, bypassAccess bool) error {
	entry, err := od.find(index)
	if err != nil {
		return err
	}
	s, err := entry.sub(subIndex)
	if err != nil {
		return err
	}
	if !bypassAccess && !s.access.IsWritable() {
		return ErrAccessDenied
	}
	return od.validateAndStore(entry, s, index, subIndex, v)
}

func (od *ObjectDictionary) validateAndStore(entry *Entry, s *subEntry, index uint16, subIndex uint8, v ObjectValue) error {
	if v.Type != s.value.Type {
		return ErrTypeMismatch
	}
	if err := od.checkRange(s, v); err != nil {
		return err
	}
	s.value = v
	if s.access.IsStorable() {
		err := od.hook.Save(map[ObjectKey]ObjectValue{{Index: index, SubIndex: subIndex}: v})
		if err != nil {
			od.logger.WithError(err).WithFields(logrus.Fields{
				"index": fmt.Sprintf("x%x", index), "subindex": subIndex,
			}).Warn("persistence hook save failed")
			return ErrStorageError
		}
	}
	return nil
}

// ValidateMandatoryObjects checks presence of the role-specific mandatory
// object set after application population. isMn selects the MN-specific
// extras (0x1F81, 0x1F89, ...) in addition to the common set.
func (od *ObjectDictionary) ValidateMandatoryObjects(isMn bool) error {
	required := []uint16{0x1000, 0x1018, 0x1F82}
	if isMn {
		required = append(required, 0x1006, 0x1F80, 0x1F81, 0x1F89, 0x1F92, 0x1C0E)
	} else {
		required = append(required, 0x1F93, 0x1F99, 0x1C0F)
	}
	for _, idx := range required {
		if _, err := od.find(idx); err != nil {
			return fmt.Errorf("%w: mandatory object x%x missing", ErrValidation, idx)
		}
	}
	return nil
}

// Init merges defaults versus persistence: if the persistence hook reports
// "restore defaults requested", storage is cleared and in-memory defaults
// are kept; otherwise persisted key/value pairs are loaded, overwriting
// current (default) values where keys match.
func (od *ObjectDictionary) Init() error {
	if od.hook.RestoreDefaultsRequested() {
		if err := od.hook.Clear(); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageError, err)
		}
		od.resetToDefaults()
		return od.hook.ClearRestoreDefaultsFlag()
	}
	loaded, err := od.hook.Load()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageError, err)
	}
	for key, v := range loaded {
		entry, ok := od.entries[key.Index]
		if !ok {
			continue
		}
		s, err := entry.sub(key.SubIndex)
		if err != nil {
			continue
		}
		if v.Type == s.value.Type {
			s.value = v
		}
	}
	return nil
}

func (od *ObjectDictionary) resetToDefaults() {
	for _, entry := range od.entries {
		for _, s := range entry.subs {
			s.value = s.defaultVal
		}
	}
}
