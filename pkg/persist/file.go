// Package persist provides a reference od.PersistenceHook: a JSON file on
// disk holding the last-saved value of every persisted sub-entry, plus a
// one-byte sibling flag file for the restore-defaults request (0x1011).
package persist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"
)

// record is the on-disk shape of one stored sub-entry; od.ObjectValue's
// fields are unexported, so Raw()/FromRawBytes round-trip it through this.
type record struct {
	Index    uint16      `json:"index"`
	SubIndex uint8       `json:"subIndex"`
	Type     od.DataType `json:"type"`
	Raw      []byte      `json:"raw"`
}

// FileHook persists the OD to a JSON file. All methods are safe for
// concurrent use (a single mutex guards file access) but none of them may
// be called from the RT path itself — 0x1010/0x1011 writes are host-driven
// configuration operations, not per-cycle ones, per spec.md §5/§6.
type FileHook struct {
	mu            sync.Mutex
	dataPath      string
	restoreFlagPath string
}

// NewFileHook builds a FileHook storing data at dataPath and the
// restore-defaults flag alongside it (dataPath + ".restore").
func NewFileHook(dataPath string) *FileHook {
	return &FileHook{dataPath: dataPath, restoreFlagPath: dataPath + ".restore"}
}

// Load reads the persisted file, if any. A missing file is not an error:
// the OD simply starts from its compiled-in defaults (§6).
func (h *FileHook) Load() (map[od.ObjectKey]od.ObjectValue, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	raw, err := os.ReadFile(h.dataPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}

	out := make(map[od.ObjectKey]od.ObjectValue, len(records))
	for _, r := range records {
		out[od.ObjectKey{Index: r.Index, SubIndex: r.SubIndex}] = od.FromRawBytes(r.Type, r.Raw)
	}
	return out, nil
}

// Save atomically merges batch into the persisted file: each batch entry
// replaces the stored value for its key and every other stored entry is
// kept (write to a temp file, then rename, so a crash mid-write never
// corrupts the previous snapshot).
func (h *FileHook) Save(batch map[od.ObjectKey]od.ObjectValue) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	merged := map[od.ObjectKey]record{}
	if existing, err := os.ReadFile(h.dataPath); err == nil {
		var stored []record
		if err := json.Unmarshal(existing, &stored); err != nil {
			return err
		}
		for _, r := range stored {
			merged[od.ObjectKey{Index: r.Index, SubIndex: r.SubIndex}] = r
		}
	} else if !os.IsNotExist(err) {
		return err
	}
	for key, v := range batch {
		merged[key] = record{Index: key.Index, SubIndex: key.SubIndex, Type: v.Type, Raw: v.Raw()}
	}
	records := make([]record, 0, len(merged))
	for _, r := range merged {
		records = append(records, r)
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}

	tmp := h.dataPath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, h.dataPath)
}

// Clear removes the persisted file, reverting to compiled-in defaults on
// the next Load.
func (h *FileHook) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	err := os.Remove(h.dataPath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// RestoreDefaultsRequested reports whether the flag file (set by
// RequestRestoreDefaults, cleared by ClearRestoreDefaultsFlag) is present.
func (h *FileHook) RestoreDefaultsRequested() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := os.Stat(h.restoreFlagPath)
	return err == nil
}

// RequestRestoreDefaults sets the flag file; 0x1011's write handler calls
// this instead of mutating the OD directly, so the restore only takes
// effect on the next boot (per the signature-word convention, §3).
func (h *FileHook) RequestRestoreDefaults() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if dir := filepath.Dir(h.restoreFlagPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(h.restoreFlagPath, []byte{1}, 0o644)
}

// ClearRestoreDefaultsFlag removes the flag file after a restore has been
// applied.
func (h *FileHook) ClearRestoreDefaultsFlag() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	err := os.Remove(h.restoreFlagPath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
